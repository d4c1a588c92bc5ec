package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/imports"
)

// GeneratedFile is the assembled output for one input file.
type GeneratedFile struct {
	Path    string // output path, <input>_brand.go
	Content []byte // unformatted source; WriteFile formats it
}

// OutputPath derives the generated-file name for an input file. Test
// files stay test files.
func OutputPath(inputFile string) string {
	if strings.HasSuffix(inputFile, "_test.go") {
		return strings.TrimSuffix(inputFile, "_test.go") + "_brand_test.go"
	}
	return strings.TrimSuffix(inputFile, ".go") + "_brand.go"
}

// Assemble concatenates the units of all declarations from one input
// file, in declaration order, under the generated-file header. Assembly
// itself cannot fail on rendered units; only rendering can.
func Assemble(pkgName, sourceFile string, decls []*Declaration) (*GeneratedFile, error) {
	var units []Unit
	for _, decl := range decls {
		u, err := Expand(decl)
		if err != nil {
			return nil, err
		}
		units = append(units, u...)
	}

	// The header names only the base file so generated output is stable
	// across checkouts.
	header, err := templateManager.ExecuteTemplate("file_header", headerData{
		SourceFile:  filepath.Base(sourceFile),
		PackageName: pkgName,
		Imports:     unitImports(units),
	})
	if err != nil {
		return nil, fmt.Errorf("render file header: %w", err)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, u := range units {
		b.WriteString("\n")
		b.WriteString(u.Code)
	}

	return &GeneratedFile{
		Path:    OutputPath(sourceFile),
		Content: []byte(b.String()),
	}, nil
}

// unitImports merges the import sets of all units, deduplicated and
// sorted. The goimports pass in WriteFile settles final grouping.
func unitImports(units []Unit) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, u := range units {
		for _, p := range u.Imports {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

// WriteFile formats a generated file with goimports and writes it.
// On a formatting failure the unformatted output is preserved next to
// the target for inspection.
func WriteFile(f *GeneratedFile) error {
	formatted, err := imports.Process(f.Path, f.Content, nil)
	if err != nil {
		debugPath := f.Path + ".error"
		_ = os.WriteFile(debugPath, f.Content, 0o644)
		return fmt.Errorf("format %s: %w (unformatted written to %s)", f.Path, err, debugPath)
	}
	return os.WriteFile(f.Path, formatted, 0o644)
}
