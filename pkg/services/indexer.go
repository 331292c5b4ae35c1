package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// heuristicIndexFields are commonly queried field names that get a
// single-field index whenever they survive on a collection.
var heuristicIndexFields = []string{"created_at", "updated_at", "status", "type"}

// IndexPlanner derives indexes for each assembled collection. The implicit
// unique index on the identifier field is assumed and never listed.
type IndexPlanner interface {
	PlanIndexes(coll *models.Collection) []models.Index
}

type indexPlanner struct {
	logger *zap.Logger
}

// NewIndexPlanner creates an IndexPlanner.
func NewIndexPlanner(logger *zap.Logger) IndexPlanner {
	return &indexPlanner{logger: logger.Named("index-planner")}
}

func (p *indexPlanner) PlanIndexes(coll *models.Collection) []models.Index {
	var indexes []models.Index
	indexed := make(map[string]bool)

	fieldNames := make(map[string]bool, len(coll.Fields))
	var identifierSource string
	for _, f := range coll.Fields {
		fieldNames[f.Name] = true
		if f.Name == IdentifierField {
			identifierSource = f.SourceColumn
		}
	}

	// The original primary key, when it survived as its own field, keeps a
	// unique index.
	for _, f := range coll.Fields {
		if f.Name != IdentifierField && f.SourceColumn != "" && f.SourceColumn == identifierSource {
			indexes = append(indexes, models.Index{
				Name:   fmt.Sprintf("idx_%s_%s_unique", coll.Name, f.Name),
				Fields: []string{f.Name},
				Unique: true,
			})
			indexed[f.Name] = true
		}
	}

	// One non-unique index per retained foreign-key field.
	for _, ref := range coll.References {
		if !fieldNames[ref.FieldName] || indexed[ref.FieldName] {
			continue
		}
		indexes = append(indexes, models.Index{
			Name:   fmt.Sprintf("idx_%s_%s", coll.Name, ref.FieldName),
			Fields: []string{ref.FieldName},
		})
		indexed[ref.FieldName] = true
	}

	// Common query-field heuristics.
	for _, name := range heuristicIndexFields {
		if !fieldNames[name] || indexed[name] {
			continue
		}
		indexes = append(indexes, models.Index{
			Name:   fmt.Sprintf("idx_%s_%s", coll.Name, name),
			Fields: []string{name},
		})
		indexed[name] = true
	}

	// Compound search index over all String fields, excluding the identifier.
	var stringFields []string
	for _, f := range coll.Fields {
		if f.Name == IdentifierField || f.Type != models.FieldTypeString {
			continue
		}
		stringFields = append(stringFields, f.Name)
	}
	if len(stringFields) > 0 {
		indexes = append(indexes, models.Index{
			Name:   fmt.Sprintf("idx_%s_search", coll.Name),
			Fields: stringFields,
		})
	}

	p.logger.Debug("planned indexes",
		zap.String("collection", coll.Name),
		zap.Int("index_count", len(indexes)))
	return indexes
}
