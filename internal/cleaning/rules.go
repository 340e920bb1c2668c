package cleaning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
)

// Step names in their canonical execution order.
const (
	StepNormalize      = "normalize_categories"
	StepDeduplicate    = "deduplicate"
	StepDeriveAge      = "derive_age"
	StepPhysicalBounds = "physical_bounds"
	StepImpute         = "impute_physical"
)

var stepOrder = []string{StepNormalize, StepDeduplicate, StepDeriveAge, StepPhysicalBounds, StepImpute}

// Policy decides what happens to a value outside its plausible range.
type Policy string

const (
	PolicyNull Policy = "null"
	PolicyDrop Policy = "drop"
)

// Range is an inclusive plausible interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Aliases extend the built-in category tables. Keys are matched
// case-insensitively.
type Aliases struct {
	Gender map[string]models.Gender `yaml:"gender"`
	Season map[string]models.Season `yaml:"season"`
	Medal  map[string]models.Medal  `yaml:"medal"`
}

// Rules configure the cleaning pipeline.
type Rules struct {
	Steps        []string                `yaml:"steps"`
	Bounds       map[models.Metric]Range `yaml:"bounds"`
	BoundsPolicy Policy                  `yaml:"bounds_policy"`
	Aliases      Aliases                 `yaml:"aliases"`
}

// DefaultRules run every step except imputation.
func DefaultRules() Rules {
	return Rules{
		Steps: []string{StepNormalize, StepDeduplicate, StepDeriveAge, StepPhysicalBounds},
		Bounds: map[models.Metric]Range{
			models.MetricAge:    {Min: 10, Max: 75},
			models.MetricHeight: {Min: 120, Max: 230},
			models.MetricWeight: {Min: 25, Max: 200},
		},
		BoundsPolicy: PolicyNull,
	}
}

// LoadRules reads YAML rules over the defaults. An empty path yields the
// defaults.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rules{}, dErrors.Newf(dErrors.CodeNotFound, "cleaning rules %s not found", path)
		}
		return Rules{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read cleaning rules")
	}
	return ParseRules(raw)
}

// ParseRules decodes YAML rules. Bounds given in the document replace the
// default for that metric only.
func ParseRules(raw []byte) (Rules, error) {
	var doc Rules
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Rules{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid cleaning rules")
	}
	rules := DefaultRules()
	if doc.Steps != nil {
		rules.Steps = doc.Steps
	}
	for m, r := range doc.Bounds {
		rules.Bounds[m] = r
	}
	if doc.BoundsPolicy != "" {
		rules.BoundsPolicy = doc.BoundsPolicy
	}
	rules.Aliases = doc.Aliases
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks step names, bounds and policy.
func (r Rules) Validate() error {
	for _, s := range r.Steps {
		if !knownStep(s) {
			return dErrors.Newf(dErrors.CodeValidation, "unknown cleaning step %q", s)
		}
	}
	for m, b := range r.Bounds {
		if _, err := models.ParseMetric(string(m)); err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "bounds for unknown metric %q", m)
		}
		if b.Min > b.Max {
			return dErrors.Newf(dErrors.CodeValidation, "bounds for %s: min %v greater than max %v", m, b.Min, b.Max)
		}
	}
	switch r.BoundsPolicy {
	case PolicyNull, PolicyDrop:
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown bounds policy %q", r.BoundsPolicy)
	}
	return nil
}

// ordered returns the enabled steps in canonical order, without duplicates.
func (r Rules) ordered() []string {
	enabled := make(map[string]bool, len(r.Steps))
	for _, s := range r.Steps {
		enabled[s] = true
	}
	out := make([]string, 0, len(enabled))
	for _, s := range stepOrder {
		if enabled[s] {
			out = append(out, s)
		}
	}
	return out
}

func (r Rules) String() string {
	return fmt.Sprintf("steps=[%s] policy=%s", strings.Join(r.ordered(), ","), r.BoundsPolicy)
}

func knownStep(name string) bool {
	for _, s := range stepOrder {
		if s == name {
			return true
		}
	}
	return false
}
