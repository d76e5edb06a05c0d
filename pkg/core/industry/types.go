// Package industry is the process-wide, read-only-after-init registry
// of industry profiles: which indicators an industry tracks, at what
// priority tier, and the display metadata C8's analysis nodes use to
// format them.
package industry

// Priority is the tier an indicator is bucketed into for one industry.
type Priority string

const (
	PriorityCore      Priority = "core"
	PriorityAuxiliary Priority = "auxiliary"
	PrioritySpecific  Priority = "specific"
)

// IndicatorSpec names one indicator this industry tracks and how it is
// displayed, independent of how pkg/core/indicator computes its value.
type IndicatorSpec struct {
	Name        string   `yaml:"name" json:"name"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Priority    Priority `yaml:"priority" json:"priority"`
	Unit        string   `yaml:"unit" json:"unit"`
	Description string   `yaml:"description" json:"description"`
}

// Profile is one industry's indicator configuration.
type Profile struct {
	Code        string          `yaml:"code" json:"code"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Indicators  []IndicatorSpec `yaml:"indicators" json:"indicators"`
}

// IndicatorsByPriority returns the subset of p.Indicators at the given tier.
func (p Profile) IndicatorsByPriority(priority Priority) []IndicatorSpec {
	var out []IndicatorSpec
	for _, ind := range p.Indicators {
		if ind.Priority == priority {
			out = append(out, ind)
		}
	}
	return out
}
