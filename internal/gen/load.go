package gen

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Package is a loaded, type-checked package with its syntax trees.
// Generation needs full type information to probe inner-type
// capabilities, so the containing package must compile on its own.
//
// TODO: skip stale *_brand.go files during loading; regenerating after
// an incompatible wrapper edit currently requires deleting them first.
type Package struct {
	Name   string
	Fset   *token.FileSet
	Types  *types.Package
	Syntax []*ast.File
}

// Load type-checks the package rooted at dir.
func Load(dir string) (*Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:   dir,
		Tests: true,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	// Tests are loaded too so brandgen works on _test.go inputs. Of the
	// variants reported, the in-package test variant carries the regular
	// files plus the package's own test files; prefer it over the plain
	// package, and skip the external test package and the test binary.
	var pkg *packages.Package
	for _, p := range pkgs {
		if strings.HasSuffix(p.ID, ".test") || strings.HasSuffix(p.Name, "_test") {
			continue
		}
		if pkg == nil || len(p.Syntax) > len(pkg.Syntax) {
			pkg = p
		}
	}
	if pkg == nil {
		return nil, fmt.Errorf("no Go package found in %s", dir)
	}
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("load %s: %v", dir, pkg.Errors[0])
	}
	return &Package{
		Name:   pkg.Name,
		Fset:   pkg.Fset,
		Types:  pkg.Types,
		Syntax: pkg.Syntax,
	}, nil
}

// File returns the syntax tree for the given source path.
func (p *Package) File(path string) (*ast.File, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, f := range p.Syntax {
		name := p.Fset.Position(f.Pos()).Filename
		if name == path || name == abs {
			return f, true
		}
	}
	return nil, false
}

// GenerateFile resolves and expands every opted-in declaration in the
// given source file. All resolver errors for the file are reported
// together and suppress output entirely; a file with no declarations
// yields (nil, nil).
func (p *Package) GenerateFile(path string) (*GeneratedFile, []error) {
	file, ok := p.File(path)
	if !ok {
		return nil, []error{fmt.Errorf("%s is not part of package %s", path, p.Name)}
	}

	decls, errs := ResolveFile(p.Types, p.Fset, file, path)
	if len(errs) > 0 {
		return nil, errs
	}
	if len(decls) == 0 {
		return nil, nil
	}

	out, err := Assemble(p.Name, path, decls)
	if err != nil {
		return nil, []error{err}
	}
	return out, nil
}
