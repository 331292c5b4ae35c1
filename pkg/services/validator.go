package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// ConsistencyValidator cross-checks the produced collections and migration
// plan against the input table set. Violations are collected, never
// short-circuited, and reported post-hoc.
type ConsistencyValidator interface {
	Validate(tables []models.Table, collections []models.Collection, plan *models.MigrationPlan) *models.ValidationReport
}

type consistencyValidator struct {
	logger *zap.Logger
}

// NewConsistencyValidator creates a ConsistencyValidator.
func NewConsistencyValidator(logger *zap.Logger) ConsistencyValidator {
	return &consistencyValidator{logger: logger.Named("consistency-validator")}
}

// Validate enforces the coverage invariant: every input table appears exactly
// once, either as a collection's source table or as one embedded document's
// source table, and every collection a migration step mentions exists.
func (v *consistencyValidator) Validate(tables []models.Table, collections []models.Collection, plan *models.MigrationPlan) *models.ValidationReport {
	report := &models.ValidationReport{IsValid: true}

	occurrences := make(map[string]int, len(tables))
	collectionNames := make(map[string]bool, len(collections))
	for i := range collections {
		coll := &collections[i]
		collectionNames[coll.Name] = true
		occurrences[coll.SourceTable]++
		for j := range coll.Embedded {
			occurrences[coll.Embedded[j].SourceTable]++
		}
	}

	for i := range tables {
		name := tables[i].Name
		switch n := occurrences[name]; {
		case n == 0:
			v.mismatch(report, fmt.Sprintf("table %q is not covered by any collection or embedded document", name))
		case n > 1:
			v.mismatch(report, fmt.Sprintf("table %q is covered %d times; expected exactly once", name, n))
		}
	}

	// Flag anything the collections claim that was never an input table.
	inputTables := make(map[string]bool, len(tables))
	for i := range tables {
		inputTables[tables[i].Name] = true
	}
	for table := range occurrences {
		if !inputTables[table] {
			v.mismatch(report, fmt.Sprintf("collections reference unknown source table %q", table))
		}
	}

	if plan != nil {
		for i := range plan.Steps {
			step := &plan.Steps[i]
			for _, name := range step.Collections {
				if !collectionNames[name] {
					v.mismatch(report, fmt.Sprintf("migration step %d references unknown collection %q", step.Step, name))
				}
			}
		}
	}

	return report
}

func (v *consistencyValidator) mismatch(report *models.ValidationReport, detail string) {
	report.IsValid = false
	report.Mismatches = append(report.Mismatches, fmt.Sprintf("%s: %s", models.WarnConsistencyMismatch, detail))
	v.logger.Warn("consistency mismatch", zap.String("detail", detail))
}
