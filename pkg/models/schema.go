package models

import (
	"fmt"
	"strings"
)

// Table is the canonical in-memory representation of a relational table.
// A snapshot of []Table is immutable for the duration of a conversion run;
// the engine never mutates it.
type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Columns     []Column     `json:"columns" yaml:"columns"`
	PrimaryKey  string       `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	// RowCount is an optional inline statistic. Zero means unknown; the
	// stats collector falls back to the configured default estimate.
	RowCount int64 `json:"row_count,omitempty" yaml:"row_count,omitempty"`
}

// Column represents a single relational column.
type Column struct {
	Name         string  `json:"name" yaml:"name"`
	DataType     string  `json:"data_type" yaml:"data_type"`
	IsNullable   bool    `json:"is_nullable" yaml:"is_nullable"`
	IsPrimaryKey bool    `json:"is_primary_key" yaml:"is_primary_key"`
	DefaultValue *string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// ForeignKey declares that ColumnName references TargetColumn on TargetTable.
// The target must exist in the same schema snapshot; a dangling reference is
// reported as a warning and the edge is skipped, never fatal.
type ForeignKey struct {
	ColumnName   string `json:"column_name" yaml:"column_name"`
	TargetTable  string `json:"target_table" yaml:"target_table"`
	TargetColumn string `json:"target_column" yaml:"target_column"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasPrimaryKey reports whether the table declares a primary key, either via
// the table-level PrimaryKey field or an IsPrimaryKey column flag.
func (t *Table) HasPrimaryKey() bool {
	if t.PrimaryKey != "" {
		return true
	}
	for i := range t.Columns {
		if t.Columns[i].IsPrimaryKey {
			return true
		}
	}
	return false
}

// PrimaryKeyColumn resolves the primary key column name, preferring the
// table-level declaration over column flags. Empty when there is none.
func (t *Table) PrimaryKeyColumn() string {
	if t.PrimaryKey != "" {
		return t.PrimaryKey
	}
	for i := range t.Columns {
		if t.Columns[i].IsPrimaryKey {
			return t.Columns[i].Name
		}
	}
	return ""
}

// ForeignKeyFor returns the foreign key owned by the given column, or nil.
func (t *Table) ForeignKeyFor(column string) *ForeignKey {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].ColumnName == column {
			return &t.ForeignKeys[i]
		}
	}
	return nil
}

// ValidateTables enforces the Table/Column contract on a schema snapshot.
// Violations here are malformed input, not schema-quality findings, and abort
// the conversion run.
func ValidateTables(tables []Table) error {
	seen := make(map[string]bool, len(tables))
	for i := range tables {
		t := &tables[i]
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("table %d: empty name", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		seen[t.Name] = true
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q: no columns", t.Name)
		}
		cols := make(map[string]bool, len(t.Columns))
		for j := range t.Columns {
			c := &t.Columns[j]
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("table %q: column %d has empty name", t.Name, j)
			}
			if cols[c.Name] {
				return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			}
			cols[c.Name] = true
		}
		if t.PrimaryKey != "" && !cols[t.PrimaryKey] {
			return fmt.Errorf("table %q: primary key %q is not a column", t.Name, t.PrimaryKey)
		}
		for j := range t.ForeignKeys {
			fk := &t.ForeignKeys[j]
			if !cols[fk.ColumnName] {
				return fmt.Errorf("table %q: foreign key column %q is not a column", t.Name, fk.ColumnName)
			}
			if strings.TrimSpace(fk.TargetTable) == "" {
				return fmt.Errorf("table %q: foreign key %q has empty target table", t.Name, fk.ColumnName)
			}
		}
	}
	return nil
}
