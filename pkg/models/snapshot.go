package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaSnapshot is the file form of a schema extraction, as produced by an
// upstream introspection service. The engine never queries a live database;
// this is its only input surface.
type SchemaSnapshot struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// LoadSnapshot reads a schema snapshot from a JSON or YAML file, picking the
// decoder by extension (.yaml/.yml vs everything else). The snapshot is
// validated against the Table/Column contract before being returned.
func LoadSnapshot(path string) (*SchemaSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap SchemaSnapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	}

	if err := ValidateTables(snap.Tables); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snap, nil
}

// RowCounts extracts the inline row-count statistics keyed by table name.
// Tables without a count are omitted.
func (s *SchemaSnapshot) RowCounts() map[string]int64 {
	counts := make(map[string]int64)
	for i := range s.Tables {
		if s.Tables[i].RowCount > 0 {
			counts[s.Tables[i].Name] = s.Tables[i].RowCount
		}
	}
	return counts
}
