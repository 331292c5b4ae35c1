package models

// Complexity is a closed enumeration of migration effort tiers.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

// ValidComplexities contains all valid complexity values.
var ValidComplexities = []Complexity{ComplexityLow, ComplexityMedium, ComplexityHigh}

// IsValid checks whether the complexity is a known tier.
func (c Complexity) IsValid() bool {
	for _, v := range ValidComplexities {
		if v == c {
			return true
		}
	}
	return false
}

// Score returns a total ordering over complexity tiers. Unknown values score
// zero so a malformed tier can never outrank a known one.
func (c Complexity) Score() int {
	switch c {
	case ComplexityLow:
		return 1
	case ComplexityMedium:
		return 2
	case ComplexityHigh:
		return 3
	default:
		return 0
	}
}

// MaxComplexity returns the higher of two tiers.
func MaxComplexity(a, b Complexity) Complexity {
	if b.Score() > a.Score() {
		return b
	}
	return a
}

// MigrationStep is one ordered phase of the generated migration plan. Steps
// form a strict linear chain: each depends only on its predecessor.
type MigrationStep struct {
	Step           int        `json:"step"`
	Action         string     `json:"action"`
	Description    string     `json:"description"`
	Complexity     Complexity `json:"complexity"`
	EstimatedHours float64    `json:"estimated_hours"`
	DependsOn      []string   `json:"depends_on,omitempty"`
	// Collections lists the collections this phase touches. Every entry must
	// exist in the produced collection list.
	Collections []string `json:"collections,omitempty"`
}

// MigrationPlan is the ordered sequence of migration steps plus totals.
type MigrationPlan struct {
	Steps             []MigrationStep `json:"steps"`
	TotalHours        float64         `json:"total_hours"`
	OverallComplexity Complexity      `json:"overall_complexity"`
}
