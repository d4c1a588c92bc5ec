package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// typecheck parses and type-checks a single-file package. Snippets must
// not import anything; everything else they need comes from the
// universe scope.
func typecheck(t *testing.T, src string) (*types.Package, *ast.File, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "wrap.go", src, parser.ParseComments)
	require.NoError(t, err)
	pkg, err := new(types.Config).Check("example.com/wrap", fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg, file, fset
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		opts    []string
		ok      bool
	}{
		{"bare directive", "//brandgen:wrapper", nil, true},
		{"single option", "//brandgen:wrapper json", []string{"json"}, true},
		{"option list", "//brandgen:wrapper json,sql,uuid", []string{"json", "sql", "uuid"}, true},
		{"spaces in list", "//brandgen:wrapper json, sql", []string{"json", "sql"}, true},
		{"trailing space", "//brandgen:wrapper ", nil, true},
		{"space before marker", "// brandgen:wrapper", nil, false},
		{"different word", "//brandgen:wrapperlike", nil, false},
		{"other directive", "//go:generate brandgen", nil, false},
		{"plain comment", "// UserID identifies a user.", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, ok := parseDirective(tt.comment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.opts, opts)
		})
	}
}

func TestResolveOptions(t *testing.T) {
	t.Run("dedupes preserving request order", func(t *testing.T) {
		opts, err := resolveOptions([]string{"sql", "json", "sql"}, "wrap.go:1:1")
		require.NoError(t, err)
		assert.Equal(t, []Option{OptionSQL, OptionJSON}, opts)
	})

	t.Run("unknown option is a hard error", func(t *testing.T) {
		_, err := resolveOptions([]string{"json", "yaml"}, "wrap.go:1:1")
		require.Error(t, err)
		var unknown UnknownOptionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "yaml", unknown.Option)
		assert.Contains(t, err.Error(), `unknown option "yaml"`)
	})
}

func TestResolveFileWrapper(t *testing.T) {
	pkg, file, fset := typecheck(t, `package wrap

//brandgen:wrapper json,sql
type UserID struct {
	inner string
}
`)

	decls, errs := ResolveFile(pkg, fset, file, "wrap.go")
	require.Empty(t, errs)
	require.Len(t, decls, 1)

	d := decls[0]
	assert.Equal(t, "UserID", d.Name)
	assert.Equal(t, "inner", d.Field)
	assert.Equal(t, "string", d.Inner)
	assert.Equal(t, []Option{OptionJSON, OptionSQL}, d.Options)
	assert.True(t, d.HasOption(OptionSQL))
	assert.False(t, d.HasOption(OptionUUID))
	assert.Empty(t, d.InnerImports)
}

func TestResolveFileUndecoratedTypesIgnored(t *testing.T) {
	pkg, file, fset := typecheck(t, `package wrap

// Plain struct, not opted in.
type Config struct {
	A, B string
}
`)

	decls, errs := ResolveFile(pkg, fset, file, "wrap.go")
	assert.Empty(t, errs)
	assert.Empty(t, decls)
}

func TestResolveFileShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "two fields",
			src: `package wrap

//brandgen:wrapper
type Pair struct {
	a string
	b string
}
`,
			want: "struct must have exactly one field (newtype pattern)",
		},
		{
			name: "two names one field list",
			src: `package wrap

//brandgen:wrapper
type Pair struct {
	a, b string
}
`,
			want: "struct must have exactly one field (newtype pattern)",
		},
		{
			name: "zero fields",
			src: `package wrap

//brandgen:wrapper
type Empty struct{}
`,
			want: "struct must have exactly one field (newtype pattern)",
		},
		{
			name: "not a struct",
			src: `package wrap

//brandgen:wrapper
type Count int
`,
			want: "brandgen:wrapper can only be used on structs",
		},
		{
			name: "floating directive",
			src: `package wrap

//brandgen:wrapper

var x = 1
`,
			want: "not attached to a type declaration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, file, fset := typecheck(t, tt.src)
			decls, errs := ResolveFile(pkg, fset, file, "wrap.go")
			assert.Empty(t, decls, "shape errors must suppress output entirely")
			require.Len(t, errs, 1)
			var shape ShapeError
			require.ErrorAs(t, errs[0], &shape)
			assert.Contains(t, errs[0].Error(), tt.want)
			assert.Contains(t, errs[0].Error(), "wrap.go:", "errors carry the declaration position")
		})
	}
}

func TestResolveFileUnknownOption(t *testing.T) {
	pkg, file, fset := typecheck(t, `package wrap

//brandgen:wrapper msgpack
type UserID struct {
	inner string
}
`)

	decls, errs := ResolveFile(pkg, fset, file, "wrap.go")
	assert.Empty(t, decls)
	require.Len(t, errs, 1)
	var unknown UnknownOptionError
	require.ErrorAs(t, errs[0], &unknown)
	assert.Equal(t, "msgpack", unknown.Option)
}

func TestTypeImportsGenericArgs(t *testing.T) {
	// Built by hand: an inner type list.List[other.T] from two foreign
	// packages. Both imports must be collected, not just the generic's.
	wrapPkg := types.NewPackage("example.com/wrap", "wrap")
	otherPkg := types.NewPackage("example.com/other", "other")
	listPkg := types.NewPackage("example.com/list", "list")

	elem := types.NewNamed(
		types.NewTypeName(token.NoPos, otherPkg, "T", nil),
		types.Typ[types.Int], nil)

	generic := types.NewNamed(
		types.NewTypeName(token.NoPos, listPkg, "List", nil),
		types.NewStruct(nil, nil), nil)
	generic.SetTypeParams([]*types.TypeParam{
		types.NewTypeParam(
			types.NewTypeName(token.NoPos, listPkg, "E", nil),
			types.NewInterfaceType(nil, nil).Complete()),
	})

	inst, err := types.Instantiate(nil, generic, []types.Type{elem}, false)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"example.com/list", "example.com/other"},
		typeImports(inst, wrapPkg))
}

func TestResolveFileAggregatesErrors(t *testing.T) {
	pkg, file, fset := typecheck(t, `package wrap

//brandgen:wrapper
type Pair struct {
	a string
	b string
}

//brandgen:wrapper bogus
type UserID struct {
	inner string
}
`)

	decls, errs := ResolveFile(pkg, fset, file, "wrap.go")
	assert.Empty(t, decls)
	assert.Len(t, errs, 2)
}
