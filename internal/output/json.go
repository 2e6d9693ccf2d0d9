package output

import (
	"encoding/json"

	"sql2ts/internal/core"
)

type jsonFormatter struct{}

type schemaSummary struct {
	Tables int `json:"tables"`
	Fields int `json:"fields"`
}

type schemaPayload struct {
	Format  string        `json:"format"`
	Summary schemaSummary `json:"summary"`
	Tables  []*core.Table `json:"tables"`
}

// FormatTables emits the intermediate schema model as indented JSON for
// programmatic consumers.
func (jsonFormatter) FormatTables(tables []*core.Table) (string, error) {
	payload := schemaPayload{Format: string(FormatJSON), Tables: tables}
	payload.Summary.Tables = len(tables)
	for _, t := range tables {
		payload.Summary.Fields += len(t.Fields)
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
