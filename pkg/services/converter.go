package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/config"
	"github.com/docuflow-io/docuflow-engine/pkg/models"
	"github.com/docuflow-io/docuflow-engine/pkg/retry"
	"github.com/docuflow-io/docuflow-engine/pkg/stats"
)

// Converter runs the full relational-to-document conversion pipeline:
// row-count collection, relationship analysis, entity classification,
// embedding planning, collection assembly, index planning, migration
// planning, and consistency validation. Each call re-derives everything from
// the input snapshot; nothing is cached across invocations.
type Converter struct {
	cfg        *config.Config
	logger     *zap.Logger
	analyzer   RelationshipAnalyzer
	classifier EntityClassifier
	planner    EmbeddingPlanner
	assembler  CollectionAssembler
	indexer    IndexPlanner
	migration  MigrationPlanGenerator
	validator  ConsistencyValidator
}

// NewConverter wires the pipeline stages. cfg may be nil, in which case the
// built-in defaults apply.
func NewConverter(cfg *config.Config, logger *zap.Logger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logger.Named("converter")
	return &Converter{
		cfg:        cfg,
		logger:     logger,
		analyzer:   NewRelationshipAnalyzer(cfg.Analyzer, cfg.Stats.DefaultRowEstimate, logger),
		classifier: NewEntityClassifier(cfg.Analyzer, logger),
		planner:    NewEmbeddingPlanner(cfg.Embedding, logger),
		assembler:  NewCollectionAssembler(logger),
		indexer:    NewIndexPlanner(logger),
		migration:  NewMigrationPlanGenerator(logger),
		validator:  NewConsistencyValidator(logger),
	}
}

// Convert transforms a relational schema snapshot into a document schema plus
// migration plan. provider may be nil; every table then uses the default
// row-count estimate. All non-fatal findings accumulate as warnings; only a
// malformed snapshot or an unexpected internal error yields success=false,
// and in that case Collections is always empty.
func (c *Converter) Convert(ctx context.Context, tables []models.Table, provider stats.RowCountProvider) (result *models.ConversionResult) {
	runID := uuid.New()
	logger := c.logger.With(zap.String("run_id", runID.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", zap.Any("panic", r))
			result = c.failure(runID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := models.ValidateTables(tables); err != nil {
		logger.Error("rejecting malformed snapshot", zap.Error(err))
		return c.failure(runID, fmt.Sprintf("invalid schema snapshot: %v", err))
	}

	logger.Info("starting conversion", zap.Int("tables", len(tables)))
	result = &models.ConversionResult{RunID: runID, Success: true}

	// Stage 1: row counts, fetched concurrently with a bounded worker pool.
	counts, estimated := c.collectRowCounts(ctx, tables, provider)
	for _, table := range estimated {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: no row count for table %s, assuming %d rows",
			models.WarnRowCountUnavailable, table, c.cfg.Stats.DefaultRowEstimate))
	}

	// Stage 2: relationship analysis.
	analysis := c.analyzer.Analyze(tables, counts)
	result.Warnings = append(result.Warnings, analysis.Warnings...)

	// Stage 3: entity classification.
	graph := NewReferenceGraph(tables, analysis.Edges)
	labels := c.classifier.Classify(tables, graph)

	// Stage 4: embedding plan.
	plan := c.planner.Plan(tables, analysis.Edges, labels)

	// Stage 5: collection assembly.
	assembled := c.assembler.Assemble(tables, labels, plan)
	result.Warnings = append(result.Warnings, assembled.Warnings...)

	// Stage 6: index planning.
	for i := range assembled.Collections {
		assembled.Collections[i].Indexes = c.indexer.PlanIndexes(&assembled.Collections[i])
	}
	result.Collections = assembled.Collections

	// Stage 7: migration plan.
	result.MigrationPlan = c.migration.Generate(assembled.Collections, analysis.Edges)

	// Stage 8: consistency validation, post-hoc and non-fatal.
	result.Validation = c.validator.Validate(tables, assembled.Collections, result.MigrationPlan)
	result.Warnings = append(result.Warnings, result.Validation.Mismatches...)

	result.Compatibility = c.compatibilityReport(tables, assembled, analysis.Edges, graph)
	result.Recommendations = c.recommendations(assembled.Collections, labels)

	logger.Info("conversion complete",
		zap.Int("collections", len(result.Collections)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("consistent", result.Validation.IsValid))
	return result
}

func (c *Converter) failure(runID uuid.UUID, msg string) *models.ConversionResult {
	return &models.ConversionResult{
		RunID:       runID,
		Success:     false,
		Collections: []models.Collection{},
		Error:       msg,
	}
}

// collectRowCounts resolves a row count for every table: inline snapshot
// statistics win, then the provider (with retry), then the default estimate.
func (c *Converter) collectRowCounts(ctx context.Context, tables []models.Table, provider stats.RowCountProvider) (map[string]int64, []string) {
	counts := make(map[string]int64, len(tables))
	var missing []string
	for i := range tables {
		if tables[i].RowCount > 0 {
			counts[tables[i].Name] = tables[i].RowCount
		} else {
			missing = append(missing, tables[i].Name)
		}
	}
	if len(missing) == 0 {
		return counts, nil
	}

	if provider != nil {
		provider = stats.WithRetry(provider, &retry.Config{
			MaxRetries:   c.cfg.Stats.MaxRetries,
			InitialDelay: retry.DefaultConfig().InitialDelay,
			MaxDelay:     retry.DefaultConfig().MaxDelay,
			Multiplier:   retry.DefaultConfig().Multiplier,
			JitterFactor: retry.DefaultConfig().JitterFactor,
		})
	}
	collector := stats.NewCollector(provider, c.cfg.Stats.Workers, c.cfg.Stats.FetchTimeout, c.cfg.Stats.DefaultRowEstimate, c.logger)
	fetched, estimated := collector.Collect(ctx, missing)
	for table, n := range fetched {
		counts[table] = n
	}
	return counts, estimated
}

func (c *Converter) compatibilityReport(tables []models.Table, assembled *AssembleResult, edges []models.RelationshipEdge, graph *ReferenceGraph) *models.CompatibilityReport {
	report := &models.CompatibilityReport{
		TypeMappings:           assembled.TypeMappings,
		RelationshipStrategies: make(map[string]string, len(edges)),
	}

	incompatible := make(map[string]bool, len(assembled.IncompatibleTables))
	for _, t := range assembled.IncompatibleTables {
		incompatible[t] = true
	}
	for i := range tables {
		if incompatible[tables[i].Name] {
			report.IncompatibleTables = append(report.IncompatibleTables, tables[i].Name)
		} else {
			report.CompatibleTables = append(report.CompatibleTables, tables[i].Name)
		}
	}

	for i := range edges {
		e := &edges[i]
		key := fmt.Sprintf("%s->%s", e.SourceTable, e.TargetTable)
		report.RelationshipStrategies[key] = e.Recommendation
	}

	for _, chain := range graph.CircularChains() {
		report.PerformanceConsiderations = append(report.PerformanceConsiderations, fmt.Sprintf(
			"circular foreign-key chain (%s) cannot be embedded; plan reference updates in application code",
			joinNames(chain)))
	}
	for i := range edges {
		e := &edges[i]
		if e.Recommendation == models.RecommendReference {
			report.PerformanceConsiderations = append(report.PerformanceConsiderations, fmt.Sprintf(
				"%s stays a reference from %s; queries joining them need an application-side lookup",
				e.TargetTable, e.SourceTable))
		}
	}

	return report
}

func (c *Converter) recommendations(collections []models.Collection, labels map[string]string) []string {
	var recs []string
	for i := range collections {
		coll := &collections[i]
		for j := range coll.Embedded {
			emb := &coll.Embedded[j]
			recs = append(recs, fmt.Sprintf(
				"Embed %s into %s (%s, %s) to eliminate the join at read time",
				emb.SourceTable, coll.Name, emb.RelationshipType, emb.Strategy))
		}
		if labels[coll.SourceTable] == models.EntityJunction {
			recs = append(recs, fmt.Sprintf(
				"Collection %s comes from a junction table; consider arrays of references on the linked collections instead",
				coll.Name))
		}
		if len(coll.Indexes) > 5 {
			recs = append(recs, fmt.Sprintf(
				"Collection %s has %d planned indexes; review write amplification before creating all of them",
				coll.Name, len(coll.Indexes)))
		}
	}
	return recs
}

// joinNames renders a sorted name list for messages.
func joinNames(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
