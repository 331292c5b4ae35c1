package models

// RelationshipEdge is a scored foreign-key edge derived from the schema
// snapshot. Edges are recomputed on every run and never persisted.
type RelationshipEdge struct {
	SourceTable    string `json:"source_table"`
	SourceColumn   string `json:"source_column"`
	TargetTable    string `json:"target_table"`
	TargetColumn   string `json:"target_column"`
	Strength       string `json:"strength"`
	UsageFrequency string `json:"usage_frequency"`
	Recommendation string `json:"recommendation"`
}

// Relationship strength values
const (
	StrengthStrong   = "strong"
	StrengthWeak     = "weak"
	StrengthOptional = "optional"
)

// ValidStrengths contains all valid strength values.
var ValidStrengths = []string{StrengthStrong, StrengthWeak, StrengthOptional}

// IsValidStrength checks if the given strength is valid.
func IsValidStrength(s string) bool {
	for _, v := range ValidStrengths {
		if v == s {
			return true
		}
	}
	return false
}

// Usage frequency values
const (
	UsageHigh   = "high"
	UsageMedium = "medium"
	UsageLow    = "low"
)

// ValidUsageFrequencies contains all valid usage frequency values.
var ValidUsageFrequencies = []string{UsageHigh, UsageMedium, UsageLow}

// IsValidUsageFrequency checks if the given usage frequency is valid.
func IsValidUsageFrequency(u string) bool {
	for _, v := range ValidUsageFrequencies {
		if v == u {
			return true
		}
	}
	return false
}

// Embedding recommendation values
const (
	RecommendEmbed     = "embed"
	RecommendReference = "reference"
	RecommendHybrid    = "hybrid"
)

// ValidRecommendations contains all valid recommendation values.
var ValidRecommendations = []string{RecommendEmbed, RecommendReference, RecommendHybrid}

// IsValidRecommendation checks if the given recommendation is valid.
func IsValidRecommendation(r string) bool {
	for _, v := range ValidRecommendations {
		if v == r {
			return true
		}
	}
	return false
}

// Entity classification labels assigned by the classifier. The classification
// is total and disjoint: every table receives exactly one label.
const (
	EntityCore       = "core"
	EntityViewLike   = "view_like"
	EntityJunction   = "junction"
	EntityReference  = "reference"
	EntityStandalone = "standalone"
)

// ValidEntityTypes contains all valid entity classification labels.
var ValidEntityTypes = []string{
	EntityCore,
	EntityViewLike,
	EntityJunction,
	EntityReference,
	EntityStandalone,
}

// IsValidEntityType checks if the given entity label is valid.
func IsValidEntityType(e string) bool {
	for _, v := range ValidEntityTypes {
		if v == e {
			return true
		}
	}
	return false
}
