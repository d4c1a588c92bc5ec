// brandgen generates forwarding boilerplate for branded wrapper types.
//
// A branded wrapper is a struct with exactly one field, opted in with a
// directive comment and an optional capability list:
//
//	//brandgen:wrapper json,sql
//	type UserID struct {
//		inner string
//	}
//
// For every opted-in wrapper the generator emits a constructor, an
// accessor, and forwarding implementations of whichever capabilities the
// inner type supports (duplication, rendering, default, equality,
// ordering, hashing), plus the requested optional bundles:
//
//	json    JSON (and, when available, text) marshaling that erases the
//	        brand on the wire
//	sql     database/sql driver.Valuer and sql.Scanner
//	uuid    Nil and NewRandom factories (inner type must be uuid.UUID)
//
// Usage:
//
//	brandgen [flags] <file.go>      process one file
//	brandgen [flags] <package-dir>  process all opted-in files in a package
//
// Typically invoked through go generate:
//
//	//go:generate brandgen $GOFILE
//
// Output is written to <input>_brand.go next to the input file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/branded-go/brand/internal/gen"
)

var silent bool
var debug = false

func init() {
	if os.Getenv("BRANDGEN_DEBUG") != "" {
		debug = true
	}
}

// logf logs a message unless in silent mode
func logf(format string, args ...any) {
	if !silent {
		log.Printf(format, args...)
	}
}

// debugf logs a message only in debug mode
func debugf(format string, args ...any) {
	if debug {
		log.Printf("DEBUG: "+format, args...)
	}
}

func main() {
	log.SetFlags(0)

	flag.BoolVar(&silent, "silent", false, "suppress all output except errors")
	flag.BoolVar(&silent, "s", false, "suppress all output except errors (shorthand)")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "brandgen - branded wrapper type generator\n\n")
		fmt.Fprintf(os.Stderr, "Generates forwarding methods for single-field wrapper structs marked\n")
		fmt.Fprintf(os.Stderr, "with //brandgen:wrapper directives.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  brandgen [flags] <file.go>         # process single file\n")
		fmt.Fprintf(os.Stderr, "  brandgen [flags] <package-dir>     # process files with directives\n\n")
		fmt.Fprintf(os.Stderr, "Directive:\n")
		fmt.Fprintf(os.Stderr, "  //brandgen:wrapper                 # core capabilities only\n")
		fmt.Fprintf(os.Stderr, "  //brandgen:wrapper json,sql,uuid   # plus optional bundles\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  json   transparent JSON/text marshaling (brand erased on the wire)\n")
		fmt.Fprintf(os.Stderr, "  sql    database/sql driver.Valuer + sql.Scanner\n")
		fmt.Fprintf(os.Stderr, "  uuid   Nil/NewRandom factories (inner type must be uuid.UUID)\n\n")
		fmt.Fprintf(os.Stderr, "Output:\n")
		fmt.Fprintf(os.Stderr, "  Creates <input>_brand.go with generated methods and compile-time\n")
		fmt.Fprintf(os.Stderr, "  assertions against brand.Interface.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  brandgen ids.go          # generate for one file\n")
		fmt.Fprintf(os.Stderr, "  brandgen ./ids/          # generate for all opted-in files\n")
		fmt.Fprintf(os.Stderr, "  go generate ./...        # via //go:generate brandgen $GOFILE\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	inputPath, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		log.Fatal("Error getting absolute path:", err)
	}

	var dir string
	var filesToProcess []string

	if isDirectory(inputPath) {
		dir = inputPath
		files, err := discoverGoFiles(inputPath)
		if err != nil {
			log.Fatal("Error discovering Go files:", err)
		}
		if len(files) == 0 {
			logf("No files with //brandgen:wrapper found in %s", inputPath)
			return
		}
		filesToProcess = files
		logf("Found %d files with //brandgen:wrapper in %s", len(files), inputPath)
	} else {
		dir = filepath.Dir(inputPath)
		filesToProcess = []string{inputPath}
	}

	// One load per invocation; every file shares the package's type
	// information.
	pkg, err := gen.Load(dir)
	if err != nil {
		log.Fatal("Error loading package:", err)
	}
	debugf("Loaded package %s with %d files", pkg.Name, len(pkg.Syntax))

	failed := false
	for _, inputFile := range filesToProcess {
		out, errs := pkg.GenerateFile(inputFile)
		if len(errs) > 0 {
			for _, err := range errs {
				log.Printf("Error: %v", err)
			}
			failed = true
			continue
		}
		if out == nil {
			debugf("No wrapper declarations in %s", inputFile)
			continue
		}
		if err := gen.WriteFile(out); err != nil {
			log.Printf("Error: %v", err)
			failed = true
			continue
		}
		logf("Generated %s", out.Path)
	}
	if failed {
		os.Exit(1)
	}
}

// discoverGoFiles finds the .go files in dir that contain a
// //brandgen:wrapper directive.
func discoverGoFiles(dir string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_brand.go") {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(filePath)
		if err != nil {
			continue // skip files we can't read
		}
		if strings.Contains(string(content), "//brandgen:wrapper") {
			files = append(files, filePath)
		}
	}

	return files, nil
}

// isDirectory checks if the given path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
