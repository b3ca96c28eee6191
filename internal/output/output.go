// Package output renders CLI results as colored tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how a Printer renders values.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", s)
	}
}

// Printer writes results to w in one format.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Format returns the printer's format.
func (p *Printer) Format() Format { return p.format }

// Emit prints v as JSON or YAML, or calls table to build the table form.
func (p *Printer) Emit(v any, table func() *Table) error {
	switch p.format {
	case FormatJSON:
		return p.JSON(v)
	case FormatYAML:
		return p.YAML(v)
	default:
		table().Render(p.w)
		return nil
	}
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (p *Printer) YAML(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	color.New(color.FgGreen, color.Bold).Fprintf(p.w, format+"\n", args...)
}

// Warning prints a yellow status line.
func (p *Printer) Warning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.w, format+"\n", args...)
}

// Error prints a red status line.
func (p *Printer) Error(format string, args ...any) {
	color.New(color.FgRed, color.Bold).Fprintf(p.w, format+"\n", args...)
}
