package services

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// IdentifierField is the synthetic identifier that replaces the relational
// primary key representation on every collection.
const IdentifierField = "_id"

// SampleDateLiteral is the fixed ISO literal used for Date fields in sample
// documents. Fixed so sample output is byte-identical across runs.
const SampleDateLiteral = "2024-01-01T00:00:00Z"

// typeMapping is the fixed relational-to-document type lookup. Types are
// normalized (lowercased, size suffix stripped) before lookup; anything not
// found defaults to String with an unsupported-type warning.
var typeMapping = map[string]string{
	"integer":           models.FieldTypeNumber,
	"int":               models.FieldTypeNumber,
	"int2":              models.FieldTypeNumber,
	"int4":              models.FieldTypeNumber,
	"int8":              models.FieldTypeNumber,
	"bigint":            models.FieldTypeNumber,
	"smallint":          models.FieldTypeNumber,
	"serial":            models.FieldTypeNumber,
	"bigserial":         models.FieldTypeNumber,
	"numeric":           models.FieldTypeNumber,
	"decimal":           models.FieldTypeNumber,
	"real":              models.FieldTypeNumber,
	"double precision":  models.FieldTypeNumber,
	"text":              models.FieldTypeString,
	"varchar":           models.FieldTypeString,
	"char":              models.FieldTypeString,
	"character":         models.FieldTypeString,
	"character varying": models.FieldTypeString,
	"uuid":              models.FieldTypeString,
	"boolean":           models.FieldTypeBoolean,
	"bool":              models.FieldTypeBoolean,
	"timestamp":         models.FieldTypeDate,
	"timestamptz":       models.FieldTypeDate,
	"date":              models.FieldTypeDate,
	"json":              models.FieldTypeObject,
	"jsonb":             models.FieldTypeObject,
	"bytea":             models.FieldTypeBinary,
}

// AssembleResult holds the produced collections plus mapping bookkeeping for
// the compatibility report.
type AssembleResult struct {
	Collections []models.Collection
	Warnings    []string
	// TypeMappings records every normalized relational type encountered and
	// the document type it mapped to.
	TypeMappings map[string]string
	// IncompatibleTables lists tables that needed at least one type default.
	IncompatibleTables []string
}

// CollectionAssembler merges tables with their planned embeddings into
// collection definitions.
type CollectionAssembler interface {
	Assemble(tables []models.Table, labels map[string]string, plan *EmbedPlan) *AssembleResult
}

type collectionAssembler struct {
	logger *zap.Logger
}

// NewCollectionAssembler creates a CollectionAssembler.
func NewCollectionAssembler(logger *zap.Logger) CollectionAssembler {
	return &collectionAssembler{logger: logger.Named("collection-assembler")}
}

// Assemble emits one collection per table that was not claimed as an embedded
// document, in snapshot order. Core tables carry their embedded documents;
// everything else becomes a standalone collection with references for its
// unresolved foreign keys.
func (a *collectionAssembler) Assemble(tables []models.Table, labels map[string]string, plan *EmbedPlan) *AssembleResult {
	byName := make(map[string]*models.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}

	result := &AssembleResult{TypeMappings: make(map[string]string)}
	for i := range tables {
		t := &tables[i]
		if plan.Embedded(t.Name) {
			continue
		}
		coll := a.assembleOne(t, labels[t.Name], plan, byName, result)
		result.Collections = append(result.Collections, *coll)
	}
	return result
}

func (a *collectionAssembler) assembleOne(t *models.Table, label string, plan *EmbedPlan, byName map[string]*models.Table, result *AssembleResult) *models.Collection {
	coll := &models.Collection{
		Name:        inflection.Plural(t.Name),
		SourceTable: t.Name,
		EntityType:  label,
	}

	assignments := plan.Assignments[t.Name]
	embeddedTables := make(map[string]bool, len(assignments))
	for _, as := range assignments {
		embeddedTables[as.SourceTable] = true
	}

	// Synthetic identifier replaces the relational primary key.
	pk := t.PrimaryKeyColumn()
	coll.Fields = append(coll.Fields, models.Field{
		Name:         IdentifierField,
		Type:         models.FieldTypeID,
		SourceColumn: pk,
	})

	for j := range t.Columns {
		col := &t.Columns[j]
		// The pk column named "id" is fully absorbed by the identifier; a
		// differently named pk survives as a regular field so its unique
		// index can be preserved.
		if col.Name == pk && col.Name == "id" {
			continue
		}
		if a.pruneColumn(t, col, embeddedTables) {
			continue
		}
		coll.Fields = append(coll.Fields, a.mapField(t.Name, col, result))
	}

	for _, as := range assignments {
		source := byName[as.SourceTable]
		coll.Embedded = append(coll.Embedded, a.assembleEmbedded(t.Name, source, as, result))
	}

	// Foreign keys not folded into an embed stay as references.
	for j := range t.ForeignKeys {
		fk := &t.ForeignKeys[j]
		if embeddedTables[fk.TargetTable] {
			continue
		}
		if _, ok := byName[fk.TargetTable]; !ok {
			continue // dangling, already warned by the analyzer
		}
		coll.References = append(coll.References, models.Reference{
			FieldName:        fk.ColumnName,
			TargetCollection: inflection.Plural(fk.TargetTable),
			SourceForeignKey: fk.ColumnName,
		})
	}

	coll.SampleDocument = a.sampleDocument(coll)
	coll.MigrationNotes = migrationNotes(coll)

	a.logger.Debug("assembled collection",
		zap.String("collection", coll.Name),
		zap.String("source_table", coll.SourceTable),
		zap.Int("fields", len(coll.Fields)),
		zap.Int("embedded_documents", len(coll.Embedded)),
		zap.Int("references", len(coll.References)))
	return coll
}

// assembleEmbedded copies the source table's columns into the embedded field
// list, minus the column that links back to the parent — that relationship is
// already expressed by the nesting itself.
func (a *collectionAssembler) assembleEmbedded(parent string, source *models.Table, as Assignment, result *AssembleResult) models.EmbeddedDocument {
	doc := models.EmbeddedDocument{
		Name:             inflection.Singular(source.Name),
		SourceTable:      source.Name,
		RelationshipType: as.RelationshipType,
		Strategy:         as.Strategy,
	}
	for j := range source.Columns {
		col := &source.Columns[j]
		if fk := source.ForeignKeyFor(col.Name); fk != nil && fk.TargetTable == parent {
			continue
		}
		doc.Fields = append(doc.Fields, a.mapField(source.Name, col, result))
	}
	return doc
}

// pruneColumn drops a foreign-key column whose relationship is now expressed
// as an embedded document, so the link is not represented twice.
func (a *collectionAssembler) pruneColumn(t *models.Table, col *models.Column, embeddedTables map[string]bool) bool {
	fk := t.ForeignKeyFor(col.Name)
	if fk == nil || !embeddedTables[fk.TargetTable] {
		return false
	}
	return matchesFKPattern(col.Name, fk.TargetTable)
}

// matchesFKPattern reports whether a column name follows one of the
// conventional foreign-key naming patterns for the given table, checked
// against both the table name and its singular form.
func matchesFKPattern(column, table string) bool {
	column = strings.ToLower(column)
	bases := []string{strings.ToLower(table)}
	if singular := strings.ToLower(inflection.Singular(table)); singular != bases[0] {
		bases = append(bases, singular)
	}
	for _, base := range bases {
		switch column {
		case base + "_id", base + "id", "fk_" + base, base + "_fk":
			return true
		}
		if strings.Contains(column, base) && strings.Contains(column, "id") {
			return true
		}
	}
	return false
}

// mapField converts one relational column to a document field via the fixed
// type lookup. Unknown types default to String and raise exactly one warning
// per column.
func (a *collectionAssembler) mapField(table string, col *models.Column, result *AssembleResult) models.Field {
	normalized := normalizeType(col.DataType)
	docType, ok := typeMapping[normalized]
	if !ok {
		docType = models.FieldTypeString
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: %s.%s has unmapped type %q, defaulting to String",
			models.WarnUnsupportedType, table, col.Name, col.DataType))
		if !containsString(result.IncompatibleTables, table) {
			result.IncompatibleTables = append(result.IncompatibleTables, table)
		}
	}
	result.TypeMappings[normalized] = docType

	return models.Field{
		Name:         col.Name,
		Type:         docType,
		Nullable:     col.IsNullable,
		SourceColumn: col.Name,
	}
}

// normalizeType lowercases a relational type and strips any size or precision
// suffix ("varchar(255)" -> "varchar").
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if idx := strings.Index(t, "("); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	// "timestamp with time zone" and friends collapse to their base type.
	for _, base := range []string{"timestamp", "time"} {
		if strings.HasPrefix(t, base+" ") {
			return "timestamp"
		}
	}
	return t
}

// sampleDocument walks the fields in declaration order and emits one
// representative literal per type. Embedded documents appear as nested
// objects built the same way; one_to_many embeds are wrapped in an array.
func (a *collectionAssembler) sampleDocument(coll *models.Collection) map[string]any {
	doc := make(map[string]any, len(coll.Fields)+len(coll.Embedded))
	for _, f := range coll.Fields {
		doc[f.Name] = sampleValue(f.Type)
	}
	for i := range coll.Embedded {
		emb := &coll.Embedded[i]
		nested := make(map[string]any, len(emb.Fields))
		for _, f := range emb.Fields {
			nested[f.Name] = sampleValue(f.Type)
		}
		if emb.RelationshipType == models.RelationOneToMany {
			doc[emb.Name] = []any{nested}
		} else {
			doc[emb.Name] = nested
		}
	}
	return doc
}

func sampleValue(fieldType string) any {
	switch fieldType {
	case models.FieldTypeID:
		return "ObjectId(...)"
	case models.FieldTypeNumber:
		return 42
	case models.FieldTypeBoolean:
		return true
	case models.FieldTypeDate:
		return SampleDateLiteral
	case models.FieldTypeObject:
		return map[string]any{"key": "value"}
	case models.FieldTypeBinary:
		return "BinData(...)"
	default:
		return "sample_string"
	}
}

func migrationNotes(coll *models.Collection) []string {
	var notes []string
	if len(coll.Embedded) > 0 {
		names := make([]string, 0, len(coll.Embedded))
		for i := range coll.Embedded {
			names = append(names, coll.Embedded[i].SourceTable)
		}
		notes = append(notes, fmt.Sprintf("embeds %d table(s): %s", len(names), strings.Join(names, ", ")))
	}
	if len(coll.References) > 0 {
		notes = append(notes, fmt.Sprintf("%d foreign key(s) retained as references", len(coll.References)))
	}
	if coll.EntityType == models.EntityJunction {
		notes = append(notes, "junction table: consider replacing with arrays of references after migration")
	}
	return notes
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
