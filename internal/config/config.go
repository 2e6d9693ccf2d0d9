// Package config reads the sql2ts TOML configuration file. It maps
// [input], [generator], and [limits] tables onto the option structs the
// parser, formatter, and validation gate consume, validating enum values
// before any parsing begins.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
	"sql2ts/internal/output"
	"sql2ts/internal/parser"
	"sql2ts/internal/validate"
)

// File is the top-level TOML document.
type File struct {
	Input     Input     `toml:"input"`
	Generator Generator `toml:"generator"`
	Limits    Limits    `toml:"limits"`
	Types     Types     `toml:"types"`
}

// Input maps [input].
type Input struct {
	Dialect         string `toml:"dialect"`
	IncludeComments *bool  `toml:"include_comments"`
	CaseSensitive   bool   `toml:"case_sensitive"`
}

// Generator maps [generator].
type Generator struct {
	Naming          string `toml:"naming"`
	OptionalFields  bool   `toml:"optional_fields"`
	Prefix          string `toml:"prefix"`
	Suffix          string `toml:"suffix"`
	IncludeComments *bool  `toml:"include_comments"`
	Export          string `toml:"export"`
}

// Types maps [types.<dialect>] tables of custom SQL-type-to-TypeScript
// mappings, layered over the built-in dialect tables.
type Types map[string]map[string]string

// Limits maps [limits].
type Limits struct {
	MaxInputBytes     int `toml:"max_input_bytes"`
	MaxTables         int `toml:"max_tables"`
	MaxFieldsPerTable int `toml:"max_fields_per_table"`
}

// Load opens the file at path and decodes it.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open file %q: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes TOML content from reader and validates its enum values.
func Parse(r io.Reader) (*File, error) {
	var cf File
	if _, err := toml.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("config: decode error: %w", err)
	}
	if err := cf.validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

func (f *File) validate() error {
	if f.Input.Dialect != "" && !core.IsValidDialect(f.Input.Dialect) {
		valid := make([]string, 0, len(core.SupportedDialects()))
		for _, d := range core.SupportedDialects() {
			valid = append(valid, string(d))
		}
		return &core.ConfigurationError{Option: "input.dialect", Value: f.Input.Dialect, Valid: valid}
	}
	if f.Generator.Naming != "" && !output.IsValidNaming(f.Generator.Naming) {
		return &core.ConfigurationError{Option: "generator.naming", Value: f.Generator.Naming, Valid: output.ValidNamings()}
	}
	switch output.ExportKind(f.Generator.Export) {
	case "", output.ExportInterface, output.ExportType:
	default:
		return &core.ConfigurationError{
			Option: "generator.export",
			Value:  f.Generator.Export,
			Valid:  []string{string(output.ExportInterface), string(output.ExportType)},
		}
	}
	for d := range f.Types {
		if !core.IsValidDialect(d) {
			valid := make([]string, 0, len(core.SupportedDialects()))
			for _, s := range core.SupportedDialects() {
				valid = append(valid, string(s))
			}
			return &core.ConfigurationError{Option: "types dialect", Value: d, Valid: valid}
		}
	}
	return nil
}

// ApplyTypes registers the [types] custom mappings on a mapper.
func (f *File) ApplyTypes(mapper *dialect.TypeMapper) {
	for d, mappings := range f.Types {
		for sqlType, tsType := range mappings {
			mapper.AddMapping(core.Dialect(strings.ToLower(d)), sqlType, tsType)
		}
	}
}

// ExtractorOptions builds parser options from the config, starting from
// the parser defaults.
func (f *File) ExtractorOptions() parser.Options {
	opts := parser.DefaultOptions()
	if f.Input.Dialect != "" {
		opts.Dialect = core.Dialect(strings.ToLower(f.Input.Dialect))
	}
	if f.Input.IncludeComments != nil {
		opts.IncludeComments = *f.Input.IncludeComments
	}
	opts.CaseSensitive = f.Input.CaseSensitive
	if f.Limits.MaxTables > 0 {
		opts.MaxTables = f.Limits.MaxTables
	}
	if f.Limits.MaxFieldsPerTable > 0 {
		opts.MaxFieldsPerTable = f.Limits.MaxFieldsPerTable
	}
	return opts
}

// GeneratorOptions builds formatter options from the config.
func (f *File) GeneratorOptions() output.Options {
	opts := output.DefaultOptions()
	if f.Input.Dialect != "" {
		opts.Dialect = core.Dialect(strings.ToLower(f.Input.Dialect))
	}
	if f.Generator.Naming != "" {
		opts.Naming = output.NamingConvention(f.Generator.Naming)
	}
	opts.OptionalFields = f.Generator.OptionalFields
	opts.Prefix = f.Generator.Prefix
	opts.Suffix = f.Generator.Suffix
	if f.Generator.IncludeComments != nil {
		opts.IncludeComments = *f.Generator.IncludeComments
	}
	if f.Generator.Export != "" {
		opts.Export = output.ExportKind(f.Generator.Export)
	}
	return opts
}

// GateLimits builds validation-gate limits from the config.
func (f *File) GateLimits() validate.Limits {
	limits := validate.DefaultLimits()
	if f.Limits.MaxInputBytes > 0 {
		limits.MaxInputBytes = f.Limits.MaxInputBytes
	}
	if f.Limits.MaxTables > 0 {
		limits.MaxTables = f.Limits.MaxTables
	}
	return limits
}
