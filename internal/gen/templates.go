package gen

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// brandImport is the module's contract package, asserted against by
// every generated wrapper.
const brandImport = "github.com/branded-go/brand"

// unitData is the data every unit template renders from. The *Expr
// fields are filled in by the emitter for the unit that needs them.
type unitData struct {
	Name  string
	Field string
	Inner string

	StringExpr  string
	EqualExpr   string
	CompareExpr string
	CloneExpr   string
	ValueExpr   string
	ScanCases   []scanCase
}

// scanCase is one branch of a converting Scan implementation.
type scanCase struct {
	SrcType string // source type switched on
	Expr    string // conversion applied to src
}

// headerData renders the generated-file header.
type headerData struct {
	SourceFile  string
	PackageName string
	Imports     []string
}

// TemplateManager loads and executes the embedded unit templates.
type TemplateManager struct {
	templates map[string]*template.Template
}

// NewTemplateManager parses all embedded templates.
func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		content, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, err
		}
		tm.templates[name] = tmpl
	}

	return tm, nil
}

// GetTemplate returns a template by name.
func (tm *TemplateManager) GetTemplate(name string) (*template.Template, bool) {
	tmpl, exists := tm.templates[name]
	return tmpl, exists
}

// ExecuteTemplate executes a template with the given data.
func (tm *TemplateManager) ExecuteTemplate(name string, data any) (string, error) {
	tmpl, exists := tm.GetTemplate(name)
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

var templateManager *TemplateManager

func init() {
	var err error
	templateManager, err = NewTemplateManager()
	if err != nil {
		panic(err)
	}
}

// Expand turns one resolved declaration into its ordered unit sequence:
// the always-emitted contract first, then the conditional core
// capabilities, then the requested optional capabilities in request
// order. Each conditional unit gates itself on the specific inner-type
// capability it forwards; a capability the inner type lacks is silently
// omitted, never an error.
func Expand(decl *Declaration) ([]Unit, error) {
	caps := Probe(decl.InnerType)
	e := &emitter{decl: decl, caps: caps}

	if err := e.core(); err != nil {
		return nil, err
	}
	for _, opt := range decl.Options {
		if err := e.optional(opt); err != nil {
			return nil, err
		}
	}
	return e.units, nil
}

// emitter accumulates units for a single declaration.
type emitter struct {
	decl  *Declaration
	caps  Capabilities
	units []Unit
}

// data returns a fresh template data record for the declaration.
func (e *emitter) data() unitData {
	return unitData{Name: e.decl.Name, Field: e.decl.Field, Inner: e.decl.Inner}
}

// emit renders one template into a unit.
func (e *emitter) emit(capability, tmpl string, data unitData, imports ...string) error {
	code, err := templateManager.ExecuteTemplate(tmpl, data)
	if err != nil {
		return fmt.Errorf("render %s for %s: %w", tmpl, e.decl.Name, err)
	}
	e.units = append(e.units, Unit{Capability: capability, Code: code, Imports: imports})
	return nil
}

// core emits the constructor/accessor contract and every conditional
// core capability the inner type supports.
func (e *emitter) core() error {
	d := e.decl
	caps := e.caps

	imports := append([]string{brandImport}, d.InnerImports...)
	if err := e.emit("contract", "contract", e.data(), imports...); err != nil {
		return err
	}

	switch {
	case caps.CloneMethod:
		data := e.data()
		data.CloneExpr = fmt.Sprintf("v.%s.Clone()", d.Field)
		if err := e.emit("clone", "clone", data); err != nil {
			return err
		}
	case caps.Slice:
		data := e.data()
		data.CloneExpr = fmt.Sprintf("slices.Clone(v.%s)", d.Field)
		if err := e.emit("clone", "clone", data, "slices"); err != nil {
			return err
		}
	}
	// Trivially copyable inner types need no Clone: assignment is the
	// bitwise copy.

	if caps.Stringer || caps.Basic {
		data := e.data()
		switch {
		case caps.Stringer:
			data.StringExpr = fmt.Sprintf("v.%s.String()", d.Field)
		case caps.StringKind:
			data.StringExpr = fmt.Sprintf("string(v.%s)", d.Field)
		default:
			data.StringExpr = fmt.Sprintf("fmt.Sprint(v.%s)", d.Field)
		}
		if err := e.emit("string", "string", data, "fmt"); err != nil {
			return err
		}
	}

	// Debug rendering is always applicable in Go and deliberately
	// tagged, unlike the pure String forward.
	if err := e.emit("gostring", "gostring", e.data(), "fmt"); err != nil {
		return err
	}

	if err := e.emit("default", "zero", e.data()); err != nil {
		return err
	}
	if caps.Comparable {
		if err := e.emit("default", "iszero", e.data()); err != nil {
			return err
		}
	}

	if caps.EqualMethod || caps.Comparable {
		data := e.data()
		if caps.EqualMethod {
			data.EqualExpr = fmt.Sprintf("v.%s.Equal(other.%s)", d.Field, d.Field)
		} else {
			data.EqualExpr = fmt.Sprintf("v.%s == other.%s", d.Field, d.Field)
		}
		if err := e.emit("equal", "equal", data); err != nil {
			return err
		}
	}

	if caps.CompareMethod || caps.Ordered {
		data := e.data()
		var imports []string
		if caps.CompareMethod {
			data.CompareExpr = fmt.Sprintf("v.%s.Compare(other.%s)", d.Field, d.Field)
		} else {
			data.CompareExpr = fmt.Sprintf("cmp.Compare(v.%s, other.%s)", d.Field, d.Field)
			imports = []string{"cmp"}
		}
		if err := e.emit("compare", "compare", data, imports...); err != nil {
			return err
		}
	}

	if caps.HashMethod {
		if err := e.emit("hash", "hash", e.data()); err != nil {
			return err
		}
	}

	return nil
}

// optional emits the unit bundle for one requested option. A requested
// option whose prerequisite capability is absent is dropped silently:
// the request was well-formed, the inner type just cannot satisfy it,
// and call sites of the missing methods surface that at compile time.
func (e *emitter) optional(opt Option) error {
	switch opt {
	case OptionJSON:
		if err := e.emit("json", "json", e.data(), "encoding/json"); err != nil {
			return err
		}
		if e.caps.TextMarshaler {
			return e.emit("json", "text", e.data(), "encoding")
		}
		return nil
	case OptionSQL:
		return e.sql()
	case OptionUUID:
		if !e.caps.UUID {
			return nil
		}
		return e.emit("uuid", "uuid", e.data(), "github.com/google/uuid")
	default:
		// Unknown options are rejected by the resolver; reaching here
		// means the two fell out of sync.
		return fmt.Errorf("unhandled option %q for %s", opt, e.decl.Name)
	}
}

// sql emits the database codec: a forwarding variant when the inner type
// implements driver.Valuer/sql.Scanner itself, a converting variant for
// inner types whose underlying kind maps to a native driver.Value.
func (e *emitter) sql() error {
	d := e.decl
	sqlImports := []string{"database/sql", "database/sql/driver"}

	if e.caps.Valuer && e.caps.Scanner {
		return e.emit("sql", "sql_forward", e.data(), sqlImports...)
	}

	data := e.data()
	imports := append(sqlImports, "fmt")
	conv := func(src string) string { return fmt.Sprintf("%s(%s)", d.Inner, src) }

	switch e.caps.DriverKind {
	case "string":
		data.ValueExpr = fmt.Sprintf("string(v.%s)", d.Field)
		data.ScanCases = []scanCase{
			{SrcType: "string", Expr: conv("src")},
			{SrcType: "[]byte", Expr: conv("src")},
		}
	case "int64":
		data.ValueExpr = fmt.Sprintf("int64(v.%s)", d.Field)
		data.ScanCases = []scanCase{{SrcType: "int64", Expr: conv("src")}}
	case "float64":
		data.ValueExpr = fmt.Sprintf("float64(v.%s)", d.Field)
		data.ScanCases = []scanCase{{SrcType: "float64", Expr: conv("src")}}
	case "bool":
		data.ValueExpr = fmt.Sprintf("bool(v.%s)", d.Field)
		data.ScanCases = []scanCase{{SrcType: "bool", Expr: conv("src")}}
	case "bytes":
		data.ValueExpr = fmt.Sprintf("[]byte(v.%s)", d.Field)
		data.ScanCases = []scanCase{
			{SrcType: "[]byte", Expr: conv("slices.Clone(src)")},
			{SrcType: "string", Expr: conv("src")},
		}
		imports = append(imports, "slices")
	case "time":
		data.ValueExpr = fmt.Sprintf("time.Time(v.%s)", d.Field)
		data.ScanCases = []scanCase{{SrcType: "time.Time", Expr: conv("src")}}
		imports = append(imports, "time")
	default:
		// No way to move the inner value across the driver boundary;
		// the option degrades silently like uuid on a non-UUID inner.
		return nil
	}

	imports = append(imports, d.InnerImports...)
	return e.emit("sql", "sql_convert", data, imports...)
}
