package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

func emptyPlan() *EmbedPlan {
	return &EmbedPlan{
		Assignments: make(map[string][]Assignment),
		ParentOf:    make(map[string]string),
	}
}

func newTestAssembler() CollectionAssembler {
	return NewCollectionAssembler(zap.NewNop())
}

func TestAssembleBasicCollection(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "user",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "name", DataType: "varchar(255)"},
				{Name: "active", DataType: "boolean"},
				{Name: "created_at", DataType: "timestamp with time zone", IsNullable: true},
			},
		},
	}
	labels := map[string]string{"user": models.EntityStandalone}

	result := newTestAssembler().Assemble(tables, labels, emptyPlan())
	require.Len(t, result.Collections, 1)
	coll := result.Collections[0]

	assert.Equal(t, "users", coll.Name)
	assert.Equal(t, "user", coll.SourceTable)
	assert.Equal(t, models.EntityStandalone, coll.EntityType)

	require.Len(t, coll.Fields, 4)
	assert.Equal(t, models.Field{Name: IdentifierField, Type: models.FieldTypeID, SourceColumn: "id"}, coll.Fields[0])
	assert.Equal(t, models.Field{Name: "name", Type: models.FieldTypeString, SourceColumn: "name"}, coll.Fields[1])
	assert.Equal(t, models.Field{Name: "active", Type: models.FieldTypeBoolean, SourceColumn: "active"}, coll.Fields[2])
	assert.Equal(t, models.Field{Name: "created_at", Type: models.FieldTypeDate, Nullable: true, SourceColumn: "created_at"}, coll.Fields[3])

	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.IncompatibleTables)
	assert.Equal(t, models.FieldTypeString, result.TypeMappings["varchar"])
	assert.Equal(t, models.FieldTypeDate, result.TypeMappings["timestamp"])
}

func TestAssemblePluralizesCollectionNames(t *testing.T) {
	tables := []models.Table{
		tableWithColumns("category", 2),
		tableWithColumns("address", 2),
	}
	labels := map[string]string{"category": models.EntityReference, "address": models.EntityReference}

	result := newTestAssembler().Assemble(tables, labels, emptyPlan())
	require.Len(t, result.Collections, 2)
	assert.Equal(t, "categories", result.Collections[0].Name)
	assert.Equal(t, "addresses", result.Collections[1].Name)
}

func TestAssembleKeepsRenamedPrimaryKey(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "accounts",
			PrimaryKey: "account_uuid",
			Columns: []models.Column{
				{Name: "account_uuid", DataType: "uuid", IsPrimaryKey: true},
				{Name: "balance", DataType: "numeric(10,2)"},
			},
		},
	}
	labels := map[string]string{"accounts": models.EntityStandalone}

	result := newTestAssembler().Assemble(tables, labels, emptyPlan())
	require.Len(t, result.Collections, 1)
	coll := result.Collections[0]

	// The identifier points at the pk column, and the pk column survives as a
	// regular field because it is not named "id".
	require.Len(t, coll.Fields, 3)
	assert.Equal(t, "account_uuid", coll.Fields[0].SourceColumn)
	assert.Equal(t, "account_uuid", coll.Fields[1].Name)
	assert.Equal(t, models.FieldTypeString, coll.Fields[1].Type)
}

func TestAssembleEmbeddedDocument(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "users",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "email", DataType: "varchar"},
			},
		},
		{
			Name:       "profiles",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "user_id", DataType: "integer"},
				{Name: "bio", DataType: "text"},
			},
			ForeignKeys: []models.ForeignKey{fk("user_id", "users")},
		},
	}
	labels := map[string]string{"users": models.EntityCore, "profiles": models.EntityStandalone}
	plan := &EmbedPlan{
		Assignments: map[string][]Assignment{
			"users": {{SourceTable: "profiles", RelationshipType: models.RelationOneToMany, Strategy: models.StrategyFullEmbed}},
		},
		ParentOf: map[string]string{"profiles": "users"},
	}

	result := newTestAssembler().Assemble(tables, labels, plan)
	require.Len(t, result.Collections, 1, "embedded table must not become its own collection")
	coll := result.Collections[0]

	require.Len(t, coll.Embedded, 1)
	doc := coll.Embedded[0]
	assert.Equal(t, "profile", doc.Name)
	assert.Equal(t, "profiles", doc.SourceTable)
	assert.Equal(t, models.RelationOneToMany, doc.RelationshipType)
	assert.Equal(t, models.StrategyFullEmbed, doc.Strategy)

	// The column linking back to the parent is dropped; the nesting itself
	// carries that relationship.
	names := make([]string, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "bio"}, names)

	assert.Contains(t, coll.MigrationNotes[0], "profiles")
}

func TestAssemblePrunesForeignKeyToEmbeddedTable(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "orders",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "customer_id", DataType: "integer"},
				{Name: "total", DataType: "numeric"},
			},
			ForeignKeys: []models.ForeignKey{fk("customer_id", "customers")},
		},
		{
			Name:       "customers",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "name", DataType: "varchar"},
			},
		},
	}
	labels := map[string]string{"orders": models.EntityCore, "customers": models.EntityStandalone}
	plan := &EmbedPlan{
		Assignments: map[string][]Assignment{
			"orders": {{SourceTable: "customers", RelationshipType: models.RelationOneToOne, Strategy: models.StrategyFullEmbed}},
		},
		ParentOf: map[string]string{"customers": "orders"},
	}

	result := newTestAssembler().Assemble(tables, labels, plan)
	require.Len(t, result.Collections, 1)
	coll := result.Collections[0]

	for _, f := range coll.Fields {
		assert.NotEqual(t, "customer_id", f.Name)
	}
	assert.Empty(t, coll.References)
}

func TestAssembleKeepsReferenceForUnembeddedForeignKey(t *testing.T) {
	tables := []models.Table{
		tableWithColumns("users", 3),
		{
			Name:       "orders",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "user_id", DataType: "integer"},
			},
			ForeignKeys: []models.ForeignKey{fk("user_id", "users")},
		},
	}
	labels := map[string]string{"users": models.EntityReference, "orders": models.EntityStandalone}

	result := newTestAssembler().Assemble(tables, labels, emptyPlan())
	require.Len(t, result.Collections, 2)
	orders := result.Collections[1]

	require.Len(t, orders.References, 1)
	assert.Equal(t, models.Reference{
		FieldName:        "user_id",
		TargetCollection: "users",
		SourceForeignKey: "user_id",
	}, orders.References[0])

	// The fk column stays as a field when it is not folded into an embed.
	found := false
	for _, f := range orders.Fields {
		if f.Name == "user_id" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssembleUnknownTypeDefaultsToString(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "geo_points",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "location", DataType: "geometry"},
				{Name: "area", DataType: "geography"},
			},
		},
	}
	labels := map[string]string{"geo_points": models.EntityStandalone}

	result := newTestAssembler().Assemble(tables, labels, emptyPlan())
	require.Len(t, result.Collections, 1)
	coll := result.Collections[0]

	assert.Equal(t, models.FieldTypeString, coll.Fields[1].Type)
	assert.Equal(t, models.FieldTypeString, coll.Fields[2].Type)

	// One warning per column, one incompatible entry per table.
	require.Len(t, result.Warnings, 2)
	for _, w := range result.Warnings {
		assert.Contains(t, w, models.WarnUnsupportedType)
	}
	assert.Equal(t, []string{"geo_points"}, result.IncompatibleTables)
}

func TestAssembleSampleDocument(t *testing.T) {
	tables := []models.Table{
		{
			Name:       "users",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "name", DataType: "varchar"},
				{Name: "age", DataType: "integer"},
				{Name: "active", DataType: "boolean"},
				{Name: "joined_at", DataType: "date"},
				{Name: "settings", DataType: "jsonb"},
				{Name: "avatar", DataType: "bytea"},
			},
		},
		{
			Name:       "orders",
			PrimaryKey: "id",
			Columns: []models.Column{
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "user_id", DataType: "integer"},
				{Name: "total", DataType: "numeric"},
			},
			ForeignKeys: []models.ForeignKey{fk("user_id", "users")},
		},
	}
	labels := map[string]string{"users": models.EntityCore, "orders": models.EntityStandalone}
	plan := &EmbedPlan{
		Assignments: map[string][]Assignment{
			"users": {{SourceTable: "orders", RelationshipType: models.RelationOneToMany, Strategy: models.StrategyFullEmbed}},
		},
		ParentOf: map[string]string{"orders": "users"},
	}

	result := newTestAssembler().Assemble(tables, labels, plan)
	require.Len(t, result.Collections, 1)
	doc := result.Collections[0].SampleDocument

	assert.Equal(t, "ObjectId(...)", doc[IdentifierField])
	assert.Equal(t, "sample_string", doc["name"])
	assert.Equal(t, 42, doc["age"])
	assert.Equal(t, true, doc["active"])
	assert.Equal(t, SampleDateLiteral, doc["joined_at"])
	assert.Equal(t, map[string]any{"key": "value"}, doc["settings"])
	assert.Equal(t, "BinData(...)", doc["avatar"])

	// A one_to_many embed shows up as a single-element array of the nested
	// sample.
	nested, ok := doc["order"].([]any)
	require.True(t, ok)
	require.Len(t, nested, 1)
	inner, ok := nested[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 42, inner["total"])
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VARCHAR(255)", "varchar"},
		{"numeric(10,2)", "numeric"},
		{"timestamp with time zone", "timestamp"},
		{" Integer ", "integer"},
		{"character varying", "character varying"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeType(tt.in), tt.in)
	}
}

func TestMatchesFKPattern(t *testing.T) {
	tests := []struct {
		column string
		table  string
		want   bool
	}{
		{"user_id", "users", true},
		{"userid", "users", true},
		{"fk_user", "users", true},
		{"user_fk", "users", true},
		{"owner_user_id", "users", true},
		{"owner", "users", false},
		{"customer_id", "users", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesFKPattern(tt.column, tt.table), "%s / %s", tt.column, tt.table)
	}
}
