package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
	"sql2ts/internal/output"
)

const sampleConfig = `
[input]
dialect = "postgresql"
include_comments = false
case_sensitive = true

[generator]
naming = "camelCase"
optional_fields = true
prefix = "Db"
suffix = "Row"
export = "type"

[limits]
max_input_bytes = 2048
max_tables = 10
max_fields_per_table = 50

[types.postgresql]
citext = "string"
geometry = "GeoJSON"
`

func TestParseFullConfig(t *testing.T) {
	cf, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "postgresql", cf.Input.Dialect)
	require.NotNil(t, cf.Input.IncludeComments)
	assert.False(t, *cf.Input.IncludeComments)
	assert.True(t, cf.Input.CaseSensitive)

	assert.Equal(t, "camelCase", cf.Generator.Naming)
	assert.True(t, cf.Generator.OptionalFields)
	assert.Equal(t, "Db", cf.Generator.Prefix)
	assert.Equal(t, "Row", cf.Generator.Suffix)
	assert.Equal(t, "type", cf.Generator.Export)

	assert.Equal(t, 2048, cf.Limits.MaxInputBytes)
	assert.Equal(t, "GeoJSON", cf.Types["postgresql"]["geometry"])
}

func TestParseEmptyConfigYieldsDefaults(t *testing.T) {
	cf, err := Parse(strings.NewReader(""))
	require.NoError(t, err)

	opts := cf.ExtractorOptions()
	assert.Equal(t, core.DialectAuto, opts.Dialect)
	assert.True(t, opts.IncludeComments)
	assert.False(t, opts.CaseSensitive)
	assert.Equal(t, 100, opts.MaxTables)

	genOpts := cf.GeneratorOptions()
	assert.Equal(t, output.NamingPascalCase, genOpts.Naming)
	assert.Equal(t, output.ExportInterface, genOpts.Export)
	assert.True(t, genOpts.IncludeComments)

	limits := cf.GateLimits()
	assert.Equal(t, 1<<20, limits.MaxInputBytes)
	assert.Equal(t, 100, limits.MaxTables)
}

func TestOptionsBuiltFromConfig(t *testing.T) {
	cf, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	opts := cf.ExtractorOptions()
	assert.Equal(t, core.DialectPostgreSQL, opts.Dialect)
	assert.False(t, opts.IncludeComments)
	assert.True(t, opts.CaseSensitive)
	assert.Equal(t, 10, opts.MaxTables)
	assert.Equal(t, 50, opts.MaxFieldsPerTable)

	genOpts := cf.GeneratorOptions()
	assert.Equal(t, core.DialectPostgreSQL, genOpts.Dialect)
	assert.Equal(t, output.NamingCamelCase, genOpts.Naming)
	assert.True(t, genOpts.OptionalFields)
	assert.Equal(t, output.ExportType, genOpts.Export)

	limits := cf.GateLimits()
	assert.Equal(t, 2048, limits.MaxInputBytes)
	assert.Equal(t, 10, limits.MaxTables)
}

func TestApplyTypes(t *testing.T) {
	cf, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	mapper := dialect.NewTypeMapper(true)
	cf.ApplyTypes(mapper)

	ts, err := mapper.MapType("GEOMETRY", core.DialectPostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, "GeoJSON", ts)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name   string
		toml   string
		option string
	}{
		{"bad dialect", "[input]\ndialect = \"oracle\"", "input.dialect"},
		{"bad naming", "[generator]\nnaming = \"kebab-case\"", "generator.naming"},
		{"bad export", "[generator]\nexport = \"class\"", "generator.export"},
		{"bad types dialect", "[types.oracle]\nnumber = \"number\"", "types dialect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.toml))
			var cerr *core.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.option, cerr.Option)
		})
	}
}

func TestParseMalformedTOML(t *testing.T) {
	_, err := Parse(strings.NewReader("[input\ndialect ="))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sql2ts.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

	cf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgresql", cf.Input.Dialect)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}
