package classifier

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/campus-fixit/fixit/internal/domain"
)

// Rule routes a complaint to an assignee when any keyword occurs in it.
type Rule struct {
	Category   domain.Category `yaml:"category"`
	AssignedTo string          `yaml:"assigned_to"`
	Keywords   []string        `yaml:"keywords"`
}

// RuleSet is the full routing table. Primary rules are tried in order;
// fallback rules only run for non-blank text that no primary rule
// matched.
type RuleSet struct {
	Primary         []Rule `yaml:"primary"`
	Fallback        []Rule `yaml:"fallback"`
	FallbackEnabled bool   `yaml:"fallback_enabled"`
	// Unmatched is used when fallback is enabled and nothing matched.
	Unmatched string `yaml:"unmatched_assignee"`
	// Blank is used for empty text, and for all unmatched text when
	// fallback is disabled.
	Blank string `yaml:"blank_assignee"`

	// blankSet records that Blank came from a rule file and must survive
	// WithoutFallback.
	blankSet bool
}

// DefaultRuleSet returns the built-in campus routing table with the
// fallback matcher enabled.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Primary: []Rule{
			{Category: domain.CategoryElectricity, AssignedTo: domain.AssigneeElectrician, Keywords: []string{"fan", "light", "wire", "switch"}},
			{Category: domain.CategorySanitation, AssignedTo: domain.AssigneeSanitation, Keywords: []string{"washroom", "toilet", "pad", "dustbin", "water"}},
			{Category: domain.CategoryCarpentry, AssignedTo: domain.AssigneeMaintenance, Keywords: []string{"bench", "desk", "door"}},
		},
		Fallback: []Rule{
			{Category: domain.CategoryElectricity, AssignedTo: domain.AssigneeElectrician, Keywords: []string{"electric", "power"}},
			{Category: domain.CategorySanitation, AssignedTo: domain.AssigneeSanitation, Keywords: []string{"hygiene", "clean"}},
		},
		FallbackEnabled: true,
		Unmatched:       domain.AssigneeCampusManager,
		Blank:           domain.AssigneeCampusManager,
	}
}

// WithoutFallback returns a copy of rs with the fallback matcher off.
// The catch-all assignee becomes the Admin Office unless a rule file
// chose blank_assignee itself.
func (rs RuleSet) WithoutFallback() RuleSet {
	rs.FallbackEnabled = false
	if !rs.blankSet {
		rs.Blank = domain.AssigneeAdminOffice
	}
	return rs
}

// Validate checks that every rule can produce a usable assignment.
func (rs RuleSet) Validate() error {
	if len(rs.Primary) == 0 {
		return errors.New("classifier: at least one primary rule required")
	}
	for i, r := range rs.Primary {
		if err := r.validate(); err != nil {
			return fmt.Errorf("classifier: primary[%d]: %w", i, err)
		}
	}
	for i, r := range rs.Fallback {
		if err := r.validate(); err != nil {
			return fmt.Errorf("classifier: fallback[%d]: %w", i, err)
		}
	}
	if strings.TrimSpace(rs.Blank) == "" {
		return errors.New("classifier: blank_assignee required")
	}
	if rs.FallbackEnabled && strings.TrimSpace(rs.Unmatched) == "" {
		return errors.New("classifier: unmatched_assignee required when fallback is enabled")
	}
	return nil
}

func (r Rule) validate() error {
	if strings.TrimSpace(string(r.Category)) == "" {
		return errors.New("category required")
	}
	if strings.TrimSpace(r.AssignedTo) == "" {
		return errors.New("assigned_to required")
	}
	if len(r.Keywords) == 0 {
		return errors.New("at least one keyword required")
	}
	for _, kw := range r.Keywords {
		if strings.TrimSpace(kw) == "" {
			return errors.New("empty keyword")
		}
	}
	return nil
}

// LoadRuleSet reads a YAML routing table. An empty path or a missing
// file yields the defaults; fields left out of the file keep their
// default values.
func LoadRuleSet(path string) (RuleSet, error) {
	rs := DefaultRuleSet()
	if path == "" {
		return rs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rs, nil
		}
		return RuleSet{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	var explicit struct {
		Blank *string `yaml:"blank_assignee"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	rs.blankSet = explicit.Blank != nil
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}
