// Package output renders the parsed schema model. It is extendable and for
// now provides two formats: TypeScript type declarations and JSON.
package output

import (
	"fmt"
	"strings"

	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatTypeScript Format = "typescript"
	FormatJSON       Format = "json"
)

// Formatter is an interface for rendering a set of parsed tables.
type Formatter interface {
	FormatTables([]*core.Table) (string, error)
}

// NewFormatter creates a Formatter by name. If no format is specified,
// defaults to TypeScript output.
func NewFormatter(name string, mapper *dialect.TypeMapper, opts Options) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatTypeScript, "ts":
		if err := opts.validate(); err != nil {
			return nil, err
		}
		return &tsFormatter{mapper: mapper, opts: opts}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'typescript' or 'json'", name)
	}
}
