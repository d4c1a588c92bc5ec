package gen

import (
	"fmt"
	"go/token"
	"go/types"
)

// Option is a capability requested on top of the always-generated core.
type Option string

// Recognized options, in the order they are documented.
const (
	OptionJSON Option = "json"
	OptionSQL  Option = "sql"
	OptionUUID Option = "uuid"
)

// knownOptions is the full recognized option set.
var knownOptions = []Option{OptionJSON, OptionSQL, OptionUUID}

// Declaration is a resolved wrapper declaration: one struct with exactly
// one field, opted in via a //brandgen:wrapper directive.
type Declaration struct {
	Name         string     // wrapper type name, e.g. "UserID"
	Field        string     // inner field name, e.g. "inner"
	Inner        string     // inner type as it appears in the package, e.g. "uuid.UUID"
	InnerType    types.Type // resolved inner type
	InnerImports []string   // import paths the rendered inner type references
	Options      []Option   // requested options, deduplicated, request order
	SourceFile   string     // file the declaration lives in
	Pos          token.Position
}

// HasOption reports whether the declaration requested opt.
func (d *Declaration) HasOption(opt Option) bool {
	for _, o := range d.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Unit is one self-contained generated fragment (a forwarding
// implementation, the constructor, a factory pair). Units are
// independent; the assembler concatenates them in order.
type Unit struct {
	Capability string   // what the unit implements, e.g. "equal"
	Code       string   // rendered Go source
	Imports    []string // import paths the code references
}

// ShapeError reports a declaration that is not a valid single-field
// wrapper. Generation for the declaration aborts with no output.
type ShapeError struct {
	Location string
	Message  string
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// UnknownOptionError reports an unrecognized option in a
// //brandgen:wrapper directive.
type UnknownOptionError struct {
	Location string
	Option   string
}

func (e UnknownOptionError) Error() string {
	return fmt.Sprintf("%s: unknown option %q (known options: json, sql, uuid)", e.Location, e.Option)
}
