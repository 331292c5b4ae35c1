package models

import "github.com/google/uuid"

// Warning codes for non-fatal conditions accumulated during a conversion run.
// Warnings are formatted as "<code>: <detail>" so downstream consumers can
// filter on the code prefix.
const (
	WarnMissingReferencedTable = "missing_referenced_table"
	WarnRowCountUnavailable    = "row_count_unavailable"
	WarnUnsupportedType        = "unsupported_type"
	WarnConsistencyMismatch    = "consistency_mismatch"
)

// CompatibilityReport summarizes how well the relational schema maps onto a
// document model.
type CompatibilityReport struct {
	CompatibleTables          []string          `json:"compatible_tables"`
	IncompatibleTables        []string          `json:"incompatible_tables"`
	TypeMappings              map[string]string `json:"type_mappings"`
	RelationshipStrategies    map[string]string `json:"relationship_strategies"`
	PerformanceConsiderations []string          `json:"performance_considerations"`
}

// ValidationReport holds the outcome of the post-hoc consistency check.
// Mismatches are collected, never short-circuited.
type ValidationReport struct {
	IsValid    bool     `json:"is_valid"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// ConversionResult is the full output of a conversion run. On failure,
// Collections is always empty — never partially populated.
type ConversionResult struct {
	RunID           uuid.UUID            `json:"run_id"`
	Success         bool                 `json:"success"`
	Collections     []Collection         `json:"collections"`
	Compatibility   *CompatibilityReport `json:"compatibility_report,omitempty"`
	MigrationPlan   *MigrationPlan       `json:"migration_plan,omitempty"`
	Validation      *ValidationReport    `json:"validation,omitempty"`
	Recommendations []string             `json:"recommendations,omitempty"`
	Warnings        []string             `json:"warnings,omitempty"`
	Error           string               `json:"error,omitempty"`
}
