package output

import (
	"fmt"
	"regexp"
	"strings"

	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
)

// ExportKind selects the TypeScript declaration form.
type ExportKind string

const (
	ExportInterface ExportKind = "interface"
	ExportType      ExportKind = "type"
)

// Options configures the TypeScript formatter.
type Options struct {
	// Dialect is the concrete dialect types are resolved against. AUTO is
	// treated as MySQL; resolve detection before rendering.
	Dialect core.Dialect
	Naming  NamingConvention
	// OptionalFields marks every property optional regardless of defaults.
	OptionalFields  bool
	Prefix          string
	Suffix          string
	IncludeComments bool
	Export          ExportKind
}

// DefaultOptions returns the generator defaults: PascalCase interface
// declarations with comments included.
func DefaultOptions() Options {
	return Options{
		Dialect:         core.DialectAuto,
		Naming:          NamingPascalCase,
		IncludeComments: true,
		Export:          ExportInterface,
	}
}

func (o Options) validate() error {
	if o.Naming != "" && !IsValidNaming(string(o.Naming)) {
		return &core.ConfigurationError{Option: "naming", Value: string(o.Naming), Valid: ValidNamings()}
	}
	switch o.Export {
	case "", ExportInterface, ExportType:
	default:
		return &core.ConfigurationError{
			Option: "export",
			Value:  string(o.Export),
			Valid:  []string{string(ExportInterface), string(ExportType)},
		}
	}
	return nil
}

type tsFormatter struct {
	mapper *dialect.TypeMapper
	opts   Options
}

// FormatTables renders one declaration per table. A field becomes optional
// when it carries a default value or the global optional flag is set;
// nullable fields that are not optional get an explicit " | null".
func (f *tsFormatter) FormatTables(tables []*core.Table) (string, error) {
	naming := f.opts.Naming
	if naming == "" {
		naming = NamingPascalCase
	}

	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		name := f.opts.Prefix + ApplyNaming(t.Name, naming) + f.opts.Suffix
		if f.opts.Export == ExportType {
			fmt.Fprintf(&b, "export type %s = {\n", name)
		} else {
			fmt.Fprintf(&b, "export interface %s {\n", name)
		}

		for _, fld := range t.Fields {
			tsType, err := f.mapper.MapType(fld.Type, f.opts.Dialect)
			if err != nil {
				return "", fmt.Errorf("output: field %q of table %q: %w", fld.Name, t.Name, err)
			}

			if f.opts.IncludeComments && fld.Comment != "" {
				fmt.Fprintf(&b, "  /** %s */\n", fld.Comment)
			}

			optional := fld.DefaultValue != nil || f.opts.OptionalFields
			marker := ""
			if optional {
				marker = "?"
			}
			if fld.Nullable && !optional {
				tsType += " | null"
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", propertyName(fld.Name), marker, tsType)
		}

		if f.opts.Export == ExportType {
			b.WriteString("};\n")
		} else {
			b.WriteString("}\n")
		}
	}
	return b.String(), nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// propertyName quotes field names that are not valid TypeScript
// identifiers.
func propertyName(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}
