package ratchet

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/specvital/ratchet/pkg/domain"
)

var ruleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Rule pairs a matcher with the number of chunks it may find.
type Rule struct {
	// ID is the stable kebab-case key used in counts files and machine output.
	ID          string
	Name        string
	Description string
	Matcher     Matcher
	Baseline    domain.Baseline
}

// Validate reports the first structural problem with the rule.
func (r Rule) Validate() error {
	if !ruleIDPattern.MatchString(r.ID) {
		return fmt.Errorf("rule id %q must be lowercase kebab-case", r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("rule %s: name is required", r.ID)
	}
	if r.Matcher == nil {
		return fmt.Errorf("rule %s: matcher is required", r.ID)
	}
	if r.Baseline < 0 {
		return fmt.Errorf("rule %s: baseline must not be negative", r.ID)
	}
	return nil
}

// ValidateRules checks every rule and rejects duplicate IDs.
func ValidateRules(rules []Rule) error {
	var errs []error
	seen := make(map[string]bool, len(rules))
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rules[%d]: %w", i, err))
			continue
		}
		if seen[rule.ID] {
			errs = append(errs, fmt.Errorf("rules[%d]: duplicate rule id %q", i, rule.ID))
		}
		seen[rule.ID] = true
	}
	return errors.Join(errs...)
}
