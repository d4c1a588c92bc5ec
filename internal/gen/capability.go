package gen

import (
	"go/types"
)

// Capabilities records what a wrapper's inner type supports. Each field
// gates one or more generated units: the wrapper ends up with exactly
// the forwarding capabilities its inner type has, never more.
type Capabilities struct {
	Comparable bool // == works; gates Equal and IsZero
	Ordered    bool // underlying basic kind is ordered; gates Compare
	Basic      bool // underlying type is a basic kind; gates String
	StringKind bool // underlying type is a string kind

	Stringer      bool // fmt.Stringer; preferred String forwarding
	EqualMethod   bool // Equal(I) bool; preferred over ==
	CompareMethod bool // Compare(I) int; preferred over cmp.Compare
	CloneMethod   bool // Clone() I
	Slice         bool // underlying slice; cloned with slices.Clone
	HashMethod    bool // Hash() uint64

	TextMarshaler bool // MarshalText + *I UnmarshalText round-trip

	Valuer     bool   // driver.Valuer
	Scanner    bool   // *I is a sql.Scanner
	DriverKind string // native driver.Value kind: string, int64, float64, bool, bytes, time

	UUID bool // inner type is github.com/google/uuid.UUID
}

// Probe inspects the resolved inner type and reports its capabilities.
// Pure: same type, same answer.
func Probe(t types.Type) Capabilities {
	caps := Capabilities{
		Comparable: types.Comparable(t),
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		info := u.Info()
		caps.Basic = info&(types.IsBoolean|types.IsNumeric|types.IsString) != 0
		caps.Ordered = info&types.IsOrdered != 0
		caps.StringKind = info&types.IsString != 0
		switch {
		case info&types.IsString != 0:
			caps.DriverKind = "string"
		case info&types.IsInteger != 0 && u.Kind() != types.Uintptr:
			caps.DriverKind = "int64"
		case info&types.IsFloat != 0:
			caps.DriverKind = "float64"
		case info&types.IsBoolean != 0:
			caps.DriverKind = "bool"
		}
	case *types.Slice:
		caps.Slice = true
		if elem, ok := u.Elem().(*types.Basic); ok && elem.Kind() == types.Byte {
			caps.DriverKind = "bytes"
		}
	}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if pkg := obj.Pkg(); pkg != nil {
			switch {
			case pkg.Path() == "github.com/google/uuid" && obj.Name() == "UUID":
				caps.UUID = true
			case pkg.Path() == "time" && obj.Name() == "Time":
				caps.DriverKind = "time"
			}
		}
	}

	caps.Stringer = hasMethod(t, "String", func(sig *types.Signature) bool {
		return sig.Params().Len() == 0 && sig.Results().Len() == 1 && isBasic(sig.Results().At(0).Type(), types.String)
	})
	caps.EqualMethod = hasMethod(t, "Equal", func(sig *types.Signature) bool {
		return sig.Params().Len() == 1 && types.Identical(sig.Params().At(0).Type(), t) &&
			sig.Results().Len() == 1 && isBasic(sig.Results().At(0).Type(), types.Bool)
	})
	caps.CompareMethod = hasMethod(t, "Compare", func(sig *types.Signature) bool {
		return sig.Params().Len() == 1 && types.Identical(sig.Params().At(0).Type(), t) &&
			sig.Results().Len() == 1 && isBasic(sig.Results().At(0).Type(), types.Int)
	})
	caps.CloneMethod = hasMethod(t, "Clone", func(sig *types.Signature) bool {
		return sig.Params().Len() == 0 && sig.Results().Len() == 1 && types.Identical(sig.Results().At(0).Type(), t)
	})
	caps.HashMethod = hasMethod(t, "Hash", func(sig *types.Signature) bool {
		return sig.Params().Len() == 0 && sig.Results().Len() == 1 && isBasic(sig.Results().At(0).Type(), types.Uint64)
	})

	marshals := hasMethod(t, "MarshalText", func(sig *types.Signature) bool {
		return sig.Params().Len() == 0 && sig.Results().Len() == 2 &&
			isByteSlice(sig.Results().At(0).Type()) && isError(sig.Results().At(1).Type())
	})
	unmarshals := hasMethod(t, "UnmarshalText", func(sig *types.Signature) bool {
		return sig.Params().Len() == 1 && isByteSlice(sig.Params().At(0).Type()) &&
			sig.Results().Len() == 1 && isError(sig.Results().At(0).Type())
	})
	caps.TextMarshaler = marshals && unmarshals

	caps.Valuer = hasMethod(t, "Value", func(sig *types.Signature) bool {
		return sig.Params().Len() == 0 && sig.Results().Len() == 2 && isError(sig.Results().At(1).Type())
	})
	caps.Scanner = hasMethod(t, "Scan", func(sig *types.Signature) bool {
		return sig.Params().Len() == 1 && isEmptyInterface(sig.Params().At(0).Type()) &&
			sig.Results().Len() == 1 && isError(sig.Results().At(0).Type())
	})

	return caps
}

// hasMethod reports whether t (or *t; the generated receivers make the
// field addressable) has a method with the given name and shape.
func hasMethod(t types.Type, name string, shape func(*types.Signature) bool) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	return shape(fn.Type().(*types.Signature))
}

func isBasic(t types.Type, kind types.BasicKind) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind() == kind
}

func isByteSlice(t types.Type) bool {
	s, ok := t.Underlying().(*types.Slice)
	if !ok {
		return false
	}
	return isBasic(s.Elem(), types.Byte)
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func isEmptyInterface(t types.Type) bool {
	i, ok := t.Underlying().(*types.Interface)
	return ok && i.Empty()
}
