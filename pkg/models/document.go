package models

// Document field types produced by the relational type mapping.
const (
	FieldTypeString  = "String"
	FieldTypeNumber  = "Number"
	FieldTypeBoolean = "Boolean"
	FieldTypeDate    = "Date"
	FieldTypeObject  = "Object"
	FieldTypeBinary  = "Binary"
	FieldTypeID      = "ObjectId"
)

// Field is a single field on a collection or embedded document.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	// SourceColumn is the relational column this field was mapped from.
	// Empty for synthetic fields such as the identifier.
	SourceColumn string `json:"source_column,omitempty"`
}

// Relationship type values for embedded documents.
const (
	RelationOneToOne   = "one_to_one"
	RelationOneToMany  = "one_to_many"
	RelationManyToMany = "many_to_many"
)

// ValidRelationTypes contains all valid embedded relationship types.
var ValidRelationTypes = []string{RelationOneToOne, RelationOneToMany, RelationManyToMany}

// IsValidRelationType checks if the given relationship type is valid.
func IsValidRelationType(r string) bool {
	for _, v := range ValidRelationTypes {
		if v == r {
			return true
		}
	}
	return false
}

// Embedding strategy values.
const (
	StrategyFullEmbed    = "full_embed"
	StrategyPartialEmbed = "partial_embed"
	StrategyReference    = "reference"
)

// ValidStrategies contains all valid embedding strategies.
var ValidStrategies = []string{StrategyFullEmbed, StrategyPartialEmbed, StrategyReference}

// IsValidStrategy checks if the given embedding strategy is valid.
func IsValidStrategy(s string) bool {
	for _, v := range ValidStrategies {
		if v == s {
			return true
		}
	}
	return false
}

// EmbeddedDocument is a table folded into a parent collection as a nested
// sub-document. A table may appear as an EmbeddedDocument in at most one
// collection (exclusive ownership).
type EmbeddedDocument struct {
	Name             string  `json:"name"`
	SourceTable      string  `json:"source_table"`
	Fields           []Field `json:"fields"`
	RelationshipType string  `json:"relationship_type"`
	Strategy         string  `json:"embedding_strategy"`
}

// Reference is a retained cross-collection pointer, used where embedding was
// rejected.
type Reference struct {
	FieldName        string `json:"field_name"`
	TargetCollection string `json:"target_collection"`
	SourceForeignKey string `json:"source_foreign_key"`
}

// Index describes a planned index on a collection. The implicit unique index
// on the identifier field is never listed.
type Index struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

// Collection is one produced document-oriented collection. Created exactly
// once per core/standalone table and never merged afterwards.
type Collection struct {
	Name           string             `json:"name"`
	SourceTable    string             `json:"source_table"`
	EntityType     string             `json:"entity_type"`
	Fields         []Field            `json:"fields"`
	Embedded       []EmbeddedDocument `json:"embedded_documents,omitempty"`
	References     []Reference        `json:"references,omitempty"`
	Indexes        []Index            `json:"indexes,omitempty"`
	SampleDocument map[string]any     `json:"sample_document,omitempty"`
	MigrationNotes []string           `json:"migration_notes,omitempty"`
}

// EmbeddedSourceTables returns the source tables of all embedded documents.
func (c *Collection) EmbeddedSourceTables() []string {
	out := make([]string, 0, len(c.Embedded))
	for i := range c.Embedded {
		out = append(out, c.Embedded[i].SourceTable)
	}
	return out
}
