package services

import (
	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/config"
	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// Assignment records one table folded into a parent collection, with the
// relationship type and strategy chosen by the planner.
type Assignment struct {
	SourceTable      string
	RelationshipType string
	Strategy         string
}

// EmbedPlan is the output of the embedding planner. A table appears in
// Assignments under at most one parent (exclusive ownership); ParentOf is the
// reverse index.
type EmbedPlan struct {
	// Assignments maps an owner table to its embedded tables, in
	// deterministic snapshot order.
	Assignments map[string][]Assignment
	// ParentOf maps an embedded table back to its owning parent.
	ParentOf map[string]string
}

// Embedded reports whether the table has been claimed as an embedded
// document.
func (p *EmbedPlan) Embedded(table string) bool {
	_, ok := p.ParentOf[table]
	return ok
}

// EmbeddingPlanner decides, per core table, which related tables are folded
// in as embedded sub-documents.
type EmbeddingPlanner interface {
	Plan(tables []models.Table, edges []models.RelationshipEdge, labels map[string]string) *EmbedPlan
}

type embeddingPlanner struct {
	cfg    config.EmbeddingConfig
	logger *zap.Logger
}

// NewEmbeddingPlanner creates an EmbeddingPlanner.
func NewEmbeddingPlanner(cfg config.EmbeddingConfig, logger *zap.Logger) EmbeddingPlanner {
	return &embeddingPlanner{
		cfg:    cfg,
		logger: logger.Named("embedding-planner"),
	}
}

// Plan walks core tables in snapshot order. Each unclaimed core table becomes
// a collection owner and claims its embed candidates; claimed tables leave the
// candidate pool for every later parent. Candidates of a claimed candidate
// are flattened into the owner at the same level — one level of transitive
// flattening, guarded by a per-root visited set so mutually-referencing
// tables cannot loop.
func (p *embeddingPlanner) Plan(tables []models.Table, edges []models.RelationshipEdge, labels map[string]string) *EmbedPlan {
	byName := make(map[string]*models.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}

	plan := &EmbedPlan{
		Assignments: make(map[string][]Assignment),
		ParentOf:    make(map[string]string),
	}
	owners := make(map[string]bool)

	for i := range tables {
		root := tables[i].Name
		if labels[root] != models.EntityCore || plan.Embedded(root) {
			continue
		}
		owners[root] = true

		visited := map[string]bool{root: true}
		var assigned []Assignment

		claim := func(c Assignment) {
			visited[c.SourceTable] = true
			plan.ParentOf[c.SourceTable] = root
			assigned = append(assigned, c)
		}

		direct := p.candidatesFor(root, edges, labels, byName)
		for _, cand := range direct {
			if visited[cand.SourceTable] || plan.Embedded(cand.SourceTable) || owners[cand.SourceTable] {
				continue
			}
			claim(cand)
		}

		// One level of transitive flattening: candidates of each directly
		// claimed table join the root's list, never deeper.
		directClaimed := append([]Assignment(nil), assigned...)
		for _, cand := range directClaimed {
			for _, nested := range p.candidatesFor(cand.SourceTable, edges, labels, byName) {
				if visited[nested.SourceTable] || plan.Embedded(nested.SourceTable) || owners[nested.SourceTable] {
					continue
				}
				nested.Strategy = models.StrategyPartialEmbed
				claim(nested)
			}
		}

		if len(assigned) > 0 {
			plan.Assignments[root] = assigned
			p.logger.Debug("planned embeddings",
				zap.String("parent", root),
				zap.Int("embedded_count", len(assigned)))
		}
	}

	return plan
}

// candidatesFor collects embed candidates for one table: tables that point at
// it plus tables it points to, as long as the edge is not a reference
// recommendation and the candidate is embeddable. Duplicates keep the first
// occurrence.
func (p *embeddingPlanner) candidatesFor(table string, edges []models.RelationshipEdge, labels map[string]string, byName map[string]*models.Table) []Assignment {
	var out []Assignment
	seen := make(map[string]bool)

	add := func(name, relationship, recommendation string) {
		if name == table || seen[name] {
			return
		}
		if !p.eligible(name, labels, byName) {
			return
		}
		seen[name] = true
		out = append(out, Assignment{
			SourceTable:      name,
			RelationshipType: relationship,
			Strategy:         strategyFor(recommendation),
		})
	}

	for i := range edges {
		e := &edges[i]
		if e.Recommendation == models.RecommendReference {
			continue
		}
		if e.TargetTable == table {
			add(e.SourceTable, models.RelationOneToMany, e.Recommendation)
		}
		if e.SourceTable == table {
			add(e.TargetTable, models.RelationOneToOne, e.Recommendation)
		}
	}
	return out
}

// eligible excludes junction and view-like tables from embedding entirely,
// and enforces the embeddability column bound.
func (p *embeddingPlanner) eligible(table string, labels map[string]string, byName map[string]*models.Table) bool {
	switch labels[table] {
	case models.EntityJunction, models.EntityViewLike:
		return false
	}
	t, ok := byName[table]
	if !ok {
		return false
	}
	return len(t.Columns) <= p.cfg.MaxEmbedColumns
}

// strategyFor maps an edge recommendation to an embedding strategy.
func strategyFor(recommendation string) string {
	if recommendation == models.RecommendEmbed {
		return models.StrategyFullEmbed
	}
	return models.StrategyPartialEmbed
}
