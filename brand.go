// Package brand provides the contract shared by branded wrapper types.
//
// A branded type wraps exactly one inner value (a string, an integer, a
// UUID) in a struct of its own, so that the type system keeps identifiers
// from different domains apart even when they share a representation. The
// brandgen tool (cmd/brandgen) generates the boilerplate for such
// wrappers: a constructor, an accessor, and forwarding implementations of
// the capabilities the inner type supports, selected per wrapper at
// generation time.
//
// Declare a wrapper and opt it in with a directive comment:
//
//	//go:generate brandgen $GOFILE
//
//	//brandgen:wrapper json,sql
//	type UserID struct {
//		inner string
//	}
//
// brandgen writes a sibling <file>_brand.go with the generated methods
// and a compile-time assertion that the wrapper satisfies Interface.
package brand

// Interface is the contract every branded wrapper satisfies: access to
// the wrapped inner value. Generated code asserts against it; use it
// yourself to write generic code over all wrappers of a given inner type.
type Interface[I any] interface {
	// Inner returns the wrapped inner value.
	Inner() I
}
