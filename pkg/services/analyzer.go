package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/config"
	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// RelationshipAnalyzer scores every resolvable foreign key into a
// RelationshipEdge. Edges are a pure function of the schema snapshot and the
// row-count snapshot: identical inputs always yield identical edges.
type RelationshipAnalyzer interface {
	// Analyze resolves and scores all foreign keys. Dangling foreign keys
	// produce a warning and are skipped, never fatal.
	Analyze(tables []models.Table, rowCounts map[string]int64) *AnalysisResult
}

// AnalysisResult holds the scored edges plus non-fatal findings.
type AnalysisResult struct {
	Edges    []models.RelationshipEdge
	Warnings []string
}

type relationshipAnalyzer struct {
	cfg      config.AnalyzerConfig
	fallback int64
	logger   *zap.Logger
}

// NewRelationshipAnalyzer creates a RelationshipAnalyzer. defaultRowEstimate
// is used for tables absent from the row-count snapshot.
func NewRelationshipAnalyzer(cfg config.AnalyzerConfig, defaultRowEstimate int64, logger *zap.Logger) RelationshipAnalyzer {
	return &relationshipAnalyzer{
		cfg:      cfg,
		fallback: defaultRowEstimate,
		logger:   logger.Named("relationship-analyzer"),
	}
}

func (a *relationshipAnalyzer) Analyze(tables []models.Table, rowCounts map[string]int64) *AnalysisResult {
	byName := make(map[string]*models.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}

	result := &AnalysisResult{}
	for i := range tables {
		source := &tables[i]
		for j := range source.ForeignKeys {
			fk := &source.ForeignKeys[j]
			target, ok := byName[fk.TargetTable]
			if !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"%s: foreign key %s.%s references missing table %s",
					models.WarnMissingReferencedTable, source.Name, fk.ColumnName, fk.TargetTable))
				a.logger.Warn("skipping dangling foreign key",
					zap.String("source_table", source.Name),
					zap.String("column", fk.ColumnName),
					zap.String("missing_target", fk.TargetTable))
				continue
			}

			edge := models.RelationshipEdge{
				SourceTable:    source.Name,
				SourceColumn:   fk.ColumnName,
				TargetTable:    target.Name,
				TargetColumn:   fk.TargetColumn,
				UsageFrequency: a.usageFrequency(source, target),
			}
			edge.Strength, edge.Recommendation = a.scoreStrength(
				a.rows(rowCounts, source.Name), a.rows(rowCounts, target.Name))

			result.Edges = append(result.Edges, edge)
		}
	}
	return result
}

func (a *relationshipAnalyzer) rows(counts map[string]int64, table string) int64 {
	if n, ok := counts[table]; ok {
		return n
	}
	return a.fallback
}

// scoreStrength applies the row-ratio rule: r = sourceRows / max(targetRows, 1).
// r >= StrongRatio means the target is small relative to its referrers and can
// be folded in; r <= WeakRatio means the target dwarfs the source and should
// stay a reference; everything in between is a hybrid call.
func (a *relationshipAnalyzer) scoreStrength(sourceRows, targetRows int64) (strength, recommendation string) {
	divisor := targetRows
	if divisor < 1 {
		divisor = 1
	}
	ratio := float64(sourceRows) / float64(divisor)

	switch {
	case ratio >= a.cfg.StrongRatio:
		return models.StrengthStrong, models.RecommendEmbed
	case ratio <= a.cfg.WeakRatio:
		return models.StrengthWeak, models.RecommendReference
	default:
		return models.StrengthWeak, models.RecommendHybrid
	}
}

// usageFrequency is a purely structural score from the column counts of the
// two tables, independent of strength.
func (a *relationshipAnalyzer) usageFrequency(source, target *models.Table) string {
	cols := len(source.Columns)
	if len(target.Columns) > cols {
		cols = len(target.Columns)
	}
	switch {
	case cols > a.cfg.HighUsageColumns:
		return models.UsageHigh
	case cols > a.cfg.MediumUsageColumns:
		return models.UsageMedium
	default:
		return models.UsageLow
	}
}
