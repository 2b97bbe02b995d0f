// Package report collects checker diagnostics and renders them as mypy style text,
// colored terminal output, JSON, or annotated source
package report

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity indicates the level of a diagnostic
type Severity string

const (
	// SeverityError is an error that fails the check
	SeverityError Severity = "error"
	// SeverityWarning is an advisory warning
	SeverityWarning Severity = "warning"
	// SeverityNote is informational, e.g. reveal_type output
	SeverityNote Severity = "note"
)

// Codes emitted by the checker
const (
	CodeMisc        = "misc"
	CodeCallArg     = "call-arg"
	CodeArgType     = "arg-type"
	CodeAssignment  = "assignment"
	CodeAttrDefined = "attr-defined"
	CodeUnionAttr   = "union-attr"
	CodeNameDefined = "name-defined"
	CodeImport      = "import"
	CodeOperator    = "operator"
	CodeSyntax      = "syntax"
	CodeValidType   = "valid-type"
)

// Diagnostic is a single message attached to a source location
type Diagnostic struct {
	// Path is the source file the message refers to
	Path string `json:"path" yaml:"path"`
	// Module is the module name of the source file
	Module   string   `json:"module,omitempty" yaml:"module,omitempty"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column" yaml:"column"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	// Code is the error code shown in brackets, empty for notes
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Text returns the message with its error code, e.g. `Name "x" is not defined  [name-defined]`
func (d *Diagnostic) Text() string {
	if d.Code == "" || d.Severity == SeverityNote {
		return d.Message
	}
	return fmt.Sprintf("%s  [%s]", d.Message, d.Code)
}

// String returns the mypy style line: path:line: severity: message  [code]
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.Path, d.Line, d.Severity, d.Text())
}

// Diagnostics is a list of diagnostics
type Diagnostics []*Diagnostic

// Count returns the number of diagnostics by severity
func (d Diagnostics) Count() (errors, warnings, notes int) {
	for _, item := range d {
		switch item.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityNote:
			notes++
		}
	}
	return
}

// HasErrors returns true if the list contains any error
func (d Diagnostics) HasErrors() bool {
	errCount, _, _ := d.Count()
	return errCount > 0
}

// ByLine groups diagnostics by line number, keeping emission order
func (d Diagnostics) ByLine() map[int]Diagnostics {
	result := map[int]Diagnostics{}
	for _, item := range d {
		result[item.Line] = append(result[item.Line], item)
	}
	return result
}

// ToJSON returns the diagnostics as an indented JSON array
func (d Diagnostics) ToJSON() (string, error) {
	if d == nil {
		d = Diagnostics{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Collector accumulates diagnostics for a build
type Collector struct {
	items Diagnostics
	seen  map[string]bool
}

// NewCollector creates a collector
func NewCollector() *Collector {
	return &Collector{seen: map[string]bool{}}
}

// Add appends a diagnostic; identical messages at the same location are reported once
func (c *Collector) Add(diagnostic *Diagnostic) {
	key := fmt.Sprintf("%s:%d:%d:%s:%s", diagnostic.Path, diagnostic.Line, diagnostic.Column, diagnostic.Severity, diagnostic.Text())
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.items = append(c.items, diagnostic)
}

// AddAll appends diagnostics
func (c *Collector) AddAll(diagnostics Diagnostics) {
	for _, item := range diagnostics {
		c.Add(item)
	}
}

// Module returns the diagnostics reported for a module, in emission order
func (c *Collector) Module(name string) Diagnostics {
	var result Diagnostics
	for _, item := range c.items {
		if item.Module == name {
			result = append(result, item)
		}
	}
	return result
}

// Diagnostics returns all diagnostics sorted by path and line; the emission order is
// kept for messages on the same line
func (c *Collector) Diagnostics() Diagnostics {
	result := append(Diagnostics{}, c.items...)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Line < result[j].Line
	})
	return result
}
