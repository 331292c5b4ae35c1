package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// Migration phase action names, in fixed order.
const (
	PhaseSchemaPreparation   = "schema_preparation"
	PhaseCollectionDesign    = "collection_design"
	PhaseScriptGeneration    = "data_migration_script_generation"
	PhaseApplicationUpdate   = "application_layer_update"
	PhaseConfigurationUpdate = "configuration_update"
	PhaseTesting             = "testing_and_validation"
)

// MigrationPlanGenerator emits the fixed ordered sequence of migration phases
// with effort estimates derived from what the conversion produced.
type MigrationPlanGenerator interface {
	Generate(collections []models.Collection, edges []models.RelationshipEdge) *models.MigrationPlan
}

type migrationPlanGenerator struct {
	logger *zap.Logger
}

// NewMigrationPlanGenerator creates a MigrationPlanGenerator.
func NewMigrationPlanGenerator(logger *zap.Logger) MigrationPlanGenerator {
	return &migrationPlanGenerator{logger: logger.Named("migration-planner")}
}

// Generate builds the six-phase plan. Estimates are monotonic and additive in
// the collection, embedded-document, and edge counts; dependencies form a
// strict linear chain with no fan-out.
func (g *migrationPlanGenerator) Generate(collections []models.Collection, edges []models.RelationshipEdge) *models.MigrationPlan {
	numColls := len(collections)
	numEmbedded := 0
	for i := range collections {
		numEmbedded += len(collections[i].Embedded)
	}
	numEdges := len(edges)

	collectionNames := make([]string, 0, numColls)
	for i := range collections {
		collectionNames = append(collectionNames, collections[i].Name)
	}

	steps := []models.MigrationStep{
		{
			Action:         PhaseSchemaPreparation,
			Description:    fmt.Sprintf("Review the %d generated collection definitions and confirm type mappings", numColls),
			Complexity:     tier(numColls, 10, 25),
			EstimatedHours: 2 + 0.5*float64(numColls),
		},
		{
			Action:         PhaseCollectionDesign,
			Description:    fmt.Sprintf("Create %d collections with %d embedded document structures and planned indexes", numColls, numEmbedded),
			Complexity:     tier(numColls+numEmbedded, 8, 20),
			EstimatedHours: float64(numColls) + 0.5*float64(numEmbedded),
			Collections:    collectionNames,
		},
		{
			Action:         PhaseScriptGeneration,
			Description:    fmt.Sprintf("Write extraction and load scripts covering %d collections and %d embeddings", numColls, numEmbedded),
			Complexity:     tier(numColls+2*numEmbedded, 6, 15),
			EstimatedHours: 2*float64(numColls) + float64(numEmbedded),
			Collections:    collectionNames,
		},
		{
			Action:         PhaseApplicationUpdate,
			Description:    fmt.Sprintf("Rewrite data access for the document model; %d relational relationships change shape", numEdges),
			Complexity:     tier(numEdges, 4, 10),
			EstimatedHours: 1.5*float64(numColls) + 0.5*float64(numEdges),
		},
		{
			Action:         PhaseConfigurationUpdate,
			Description:    "Update connection strings, drivers, and deployment configuration",
			Complexity:     models.ComplexityLow,
			EstimatedHours: 2,
		},
		{
			Action:         PhaseTesting,
			Description:    "Validate data integrity, query behavior, and performance against the relational baseline",
			Complexity:     tier(numColls+numEmbedded, 8, 20),
			EstimatedHours: 4 + 0.5*float64(numColls+numEmbedded),
		},
	}

	plan := &models.MigrationPlan{OverallComplexity: models.ComplexityLow}
	for i := range steps {
		steps[i].Step = i + 1
		if i > 0 {
			steps[i].DependsOn = []string{steps[i-1].Action}
		}
		plan.TotalHours += steps[i].EstimatedHours
		plan.OverallComplexity = models.MaxComplexity(plan.OverallComplexity, steps[i].Complexity)
	}
	plan.Steps = steps

	g.logger.Debug("generated migration plan",
		zap.Int("steps", len(plan.Steps)),
		zap.Float64("total_hours", plan.TotalHours),
		zap.String("overall_complexity", string(plan.OverallComplexity)))
	return plan
}

// tier maps a workload count onto a complexity tier using two thresholds.
func tier(count, medium, high int) models.Complexity {
	switch {
	case count >= high:
		return models.ComplexityHigh
	case count >= medium:
		return models.ComplexityMedium
	default:
		return models.ComplexityLow
	}
}
