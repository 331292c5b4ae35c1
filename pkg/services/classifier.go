package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/config"
	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// viewLikeSuffixes are name patterns that mark tables materialized for
// reporting rather than entity storage.
var viewLikeSuffixes = []string{"_list", "_summary", "_report", "_view", "_stats"}

// EntityClassifier assigns exactly one entity label to every table in the
// snapshot using graph and structural heuristics.
type EntityClassifier interface {
	// Classify returns a total, disjoint table-name -> label map.
	Classify(tables []models.Table, graph *ReferenceGraph) map[string]string
}

type entityClassifier struct {
	cfg    config.AnalyzerConfig
	logger *zap.Logger
}

// NewEntityClassifier creates an EntityClassifier.
func NewEntityClassifier(cfg config.AnalyzerConfig, logger *zap.Logger) EntityClassifier {
	return &entityClassifier{
		cfg:    cfg,
		logger: logger.Named("entity-classifier"),
	}
}

func (c *entityClassifier) Classify(tables []models.Table, graph *ReferenceGraph) map[string]string {
	byName := make(map[string]*models.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}

	labels := make(map[string]string, len(tables))
	for i := range tables {
		t := &tables[i]
		labels[t.Name] = c.classifyTable(t, graph, byName)
		c.logger.Debug("classified table",
			zap.String("table", t.Name),
			zap.String("entity_type", labels[t.Name]),
			zap.Int("incoming_refs", graph.IncomingRefs(t.Name)),
			zap.Int("outgoing_refs", graph.OutgoingRefs(t.Name)))
	}
	return labels
}

// classifyTable applies the classification rules in priority order. Junction
// detection runs before core promotion: a linking table always owns two
// foreign keys, which would otherwise promote it to core and hide its real
// shape.
func (c *entityClassifier) classifyTable(t *models.Table, graph *ReferenceGraph, byName map[string]*models.Table) string {
	if c.isJunction(t, byName) {
		return models.EntityJunction
	}

	incoming := graph.IncomingRefs(t.Name)
	outgoing := graph.OutgoingRefs(t.Name)
	if incoming >= c.cfg.CoreMinRefs || outgoing >= c.cfg.CoreMinRefs || len(t.Columns) >= c.cfg.CoreMinColumns {
		return models.EntityCore
	}
	if c.isViewLike(t) {
		return models.EntityViewLike
	}
	if len(t.Columns) <= 3 {
		return models.EntityReference
	}
	return models.EntityStandalone
}

// isViewLike matches tables with no primary key, no foreign keys, and a
// descriptive reporting suffix.
func (c *entityClassifier) isViewLike(t *models.Table) bool {
	if t.HasPrimaryKey() || len(t.ForeignKeys) > 0 {
		return false
	}
	name := strings.ToLower(t.Name)
	for _, suffix := range viewLikeSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// isJunction matches narrow linking tables: exactly two foreign keys, at most
// four columns, an underscore-composed name, and both referenced tables rich
// enough (>= CoreMinColumns columns) to be real entities.
func (c *entityClassifier) isJunction(t *models.Table, byName map[string]*models.Table) bool {
	if len(t.ForeignKeys) != 2 || len(t.Columns) > 4 || !strings.Contains(t.Name, "_") {
		return false
	}
	for i := range t.ForeignKeys {
		target, ok := byName[t.ForeignKeys[i].TargetTable]
		if !ok || len(target.Columns) < c.cfg.CoreMinColumns {
			return false
		}
	}
	return true
}
