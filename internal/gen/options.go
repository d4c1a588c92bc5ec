package gen

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

// directive is the marker that opts a type declaration in to generation.
// It goes on the declaration's doc comment, optionally followed by a
// comma-separated option list:
//
//	//brandgen:wrapper
//	//brandgen:wrapper json,sql,uuid
const directive = "brandgen:wrapper"

// parseDirective extracts the option list from a directive comment line.
// The second return value reports whether the line is a directive at all.
func parseDirective(comment string) ([]string, bool) {
	text := strings.TrimPrefix(comment, "//")
	if !strings.HasPrefix(text, directive) {
		return nil, false
	}
	rest := text[len(directive):]
	if rest == "" {
		return nil, true
	}
	// Anything after the marker must be separated by whitespace,
	// otherwise the comment is some other word (e.g. brandgen:wrapperx).
	if rest[0] != ' ' && rest[0] != '\t' {
		return nil, false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}
	var opts []string
	for _, part := range strings.Split(rest, ",") {
		if part = strings.TrimSpace(part); part != "" {
			opts = append(opts, part)
		}
	}
	return opts, true
}

// resolveOptions validates raw option names against the recognized set
// and collapses duplicates, preserving request order.
func resolveOptions(raw []string, loc string) ([]Option, error) {
	var opts []Option
	seen := make(map[Option]bool)
	for _, name := range raw {
		opt := Option(name)
		known := false
		for _, k := range knownOptions {
			if opt == k {
				known = true
				break
			}
		}
		if !known {
			return nil, UnknownOptionError{Location: loc, Option: name}
		}
		if !seen[opt] {
			seen[opt] = true
			opts = append(opts, opt)
		}
	}
	return opts, nil
}

// ResolveFile finds every opted-in declaration in file and resolves each
// against the type-checked package. Errors are aggregated per file; a
// declaration that fails resolution yields no Declaration at all.
func ResolveFile(pkg *types.Package, fset *token.FileSet, file *ast.File, filename string) ([]*Declaration, []error) {
	var (
		decls  []*Declaration
		errs   []error
		placed = make(map[token.Pos]bool) // directive comments attached to a type spec
	)

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			if doc == nil {
				continue
			}
			for _, c := range doc.List {
				raw, ok := parseDirective(c.Text)
				if !ok {
					continue
				}
				placed[c.Pos()] = true
				d, err := resolveSpec(pkg, ts, raw, fset.Position(ts.Pos()), filename)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				decls = append(decls, d)
			}
		}
	}

	// A directive anywhere else in the file marks nothing and is
	// almost certainly a mistake; reject it like a shape violation.
	for _, group := range file.Comments {
		for _, c := range group.List {
			if _, ok := parseDirective(c.Text); ok && !placed[c.Pos()] {
				errs = append(errs, ShapeError{
					Location: fset.Position(c.Pos()).String(),
					Message:  "brandgen:wrapper directive is not attached to a type declaration",
				})
			}
		}
	}

	return decls, errs
}

// resolveSpec turns one directive-carrying type spec into a Declaration,
// enforcing the newtype shape.
func resolveSpec(pkg *types.Package, ts *ast.TypeSpec, rawOpts []string, pos token.Position, filename string) (*Declaration, error) {
	loc := pos.String()

	obj := pkg.Scope().Lookup(ts.Name.Name)
	if obj == nil {
		return nil, ShapeError{Location: loc, Message: "type " + ts.Name.Name + " not found in package scope"}
	}

	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, ShapeError{Location: loc, Message: "brandgen:wrapper can only be used on structs"}
	}
	if st.NumFields() != 1 {
		return nil, ShapeError{Location: loc, Message: "struct must have exactly one field (newtype pattern)"}
	}

	opts, err := resolveOptions(rawOpts, loc)
	if err != nil {
		return nil, err
	}

	field := st.Field(0)
	inner := field.Type()
	return &Declaration{
		Name:         ts.Name.Name,
		Field:        field.Name(),
		Inner:        types.TypeString(inner, relativeTo(pkg)),
		InnerType:    inner,
		InnerImports: typeImports(inner, pkg),
		Options:      opts,
		SourceFile:   filename,
		Pos:          pos,
	}, nil
}

// relativeTo qualifies type names with their package name, leaving types
// from pkg itself bare, so rendered types read as they do in source.
func relativeTo(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}

// typeImports collects the import paths a rendered type references.
func typeImports(t types.Type, pkg *types.Package) []string {
	var paths []string
	seen := make(map[string]bool)
	var walk func(types.Type)
	walk = func(t types.Type) {
		switch t := t.(type) {
		case *types.Named:
			if p := t.Obj().Pkg(); p != nil && p != pkg && !seen[p.Path()] {
				seen[p.Path()] = true
				paths = append(paths, p.Path())
			}
			if args := t.TypeArgs(); args != nil {
				for i := 0; i < args.Len(); i++ {
					walk(args.At(i))
				}
			}
		case *types.Pointer:
			walk(t.Elem())
		case *types.Slice:
			walk(t.Elem())
		case *types.Array:
			walk(t.Elem())
		case *types.Map:
			walk(t.Key())
			walk(t.Elem())
		}
	}
	walk(t)
	return paths
}
