package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() Table {
	return Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", DataType: "integer", IsPrimaryKey: true},
			{Name: "name", DataType: "varchar"},
		},
		PrimaryKey: "id",
	}
}

func TestValidateTables(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Table)
		wantErr string
	}{
		{
			name:   "valid table",
			mutate: func(t *Table) {},
		},
		{
			name:    "empty table name",
			mutate:  func(t *Table) { t.Name = " " },
			wantErr: "empty name",
		},
		{
			name:    "no columns",
			mutate:  func(t *Table) { t.Columns = nil },
			wantErr: "no columns",
		},
		{
			name: "duplicate column",
			mutate: func(t *Table) {
				t.Columns = append(t.Columns, Column{Name: "name", DataType: "text"})
			},
			wantErr: "duplicate column",
		},
		{
			name:    "primary key not a column",
			mutate:  func(t *Table) { t.PrimaryKey = "missing" },
			wantErr: "not a column",
		},
		{
			name: "foreign key column does not exist",
			mutate: func(t *Table) {
				t.ForeignKeys = []ForeignKey{{ColumnName: "ghost", TargetTable: "orgs", TargetColumn: "id"}}
			},
			wantErr: "not a column",
		},
		{
			name: "foreign key with empty target table",
			mutate: func(t *Table) {
				t.ForeignKeys = []ForeignKey{{ColumnName: "name", TargetTable: "", TargetColumn: "id"}}
			},
			wantErr: "empty target table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := validTable()
			tt.mutate(&table)
			err := ValidateTables([]Table{table})
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateTablesDuplicateTableName(t *testing.T) {
	err := ValidateTables([]Table{validTable(), validTable()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table name")
}

func TestPrimaryKeyResolution(t *testing.T) {
	table := Table{
		Name: "accounts",
		Columns: []Column{
			{Name: "account_code", DataType: "varchar", IsPrimaryKey: true},
			{Name: "label", DataType: "text"},
		},
	}
	assert.True(t, table.HasPrimaryKey())
	assert.Equal(t, "account_code", table.PrimaryKeyColumn())

	// Table-level declaration wins over column flags.
	table.PrimaryKey = "label"
	assert.Equal(t, "label", table.PrimaryKeyColumn())

	noPK := Table{Name: "log_entries", Columns: []Column{{Name: "message", DataType: "text"}}}
	assert.False(t, noPK.HasPrimaryKey())
	assert.Empty(t, noPK.PrimaryKeyColumn())
}

func TestForeignKeyFor(t *testing.T) {
	table := validTable()
	table.ForeignKeys = []ForeignKey{{ColumnName: "name", TargetTable: "orgs", TargetColumn: "id"}}

	fk := table.ForeignKeyFor("name")
	require.NotNil(t, fk)
	assert.Equal(t, "orgs", fk.TargetTable)
	assert.Nil(t, table.ForeignKeyFor("id"))
}
