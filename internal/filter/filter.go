// Package filter decides which normalized listings are worth a notification.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sjsage522/bountyradar/internal/listing"

	"gopkg.in/yaml.v3"
)

// Unbounded is the RewardRange.Max value meaning "no upper bound"
const Unbounded = math.MaxInt

// Rule names reported in a Verdict
const (
	RuleExcludedTerm = "excluded_term"
	RuleIncludedTerm = "included_term"
	RuleMarker       = "marker"
	RulePlatform     = "platform"
	RuleReward       = "reward_range"
	RuleScope        = "scope_keyword"
)

// RewardRange is a closed interval of acceptable max rewards
type RewardRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether amount lies within the range
func (r RewardRange) Contains(amount int) bool {
	return amount >= r.Min && amount <= r.Max
}

// Policy is a set of predicates combined with logical AND. A predicate whose
// configuration is empty is inactive.
type Policy struct {
	// ExcludedTerms rejects listings whose title contains any term
	ExcludedTerms []string `yaml:"excluded_terms"`
	// IncludedTerms requires the title to contain at least one term
	IncludedTerms []string `yaml:"included_terms"`
	// Markers rejects titles carrying a disallowed marker such as "vdp"
	Markers []string `yaml:"markers"`
	// Platforms is the allow-list, matched by substring
	Platforms []string `yaml:"platforms"`
	// Reward bounds the listing's max reward; nil disables the check
	Reward *RewardRange `yaml:"reward"`
	// ScopeKeywords requires the scope to contain at least one keyword
	ScopeKeywords []string `yaml:"scope_keywords"`
}

// Verdict is the result of evaluating one listing
type Verdict struct {
	Pass bool
	// Rule is the first predicate that rejected the listing
	Rule string
}

// Normalize returns a copy of the policy with all terms lower-cased and
// trimmed, dropping blanks.
func (p Policy) Normalize() Policy {
	out := Policy{
		ExcludedTerms: lowerAll(p.ExcludedTerms),
		IncludedTerms: lowerAll(p.IncludedTerms),
		Markers:       lowerAll(p.Markers),
		Platforms:     lowerAll(p.Platforms),
		ScopeKeywords: lowerAll(p.ScopeKeywords),
	}
	if p.Reward != nil {
		r := *p.Reward
		out.Reward = &r
	}
	return out
}

// Evaluate runs every active predicate against l.
// Policy terms are expected to be lower-case (see Normalize).
func (p Policy) Evaluate(l listing.Listing) Verdict {
	title := strings.ToLower(l.Title)

	if containsAny(title, p.ExcludedTerms) {
		return reject(RuleExcludedTerm)
	}
	if len(p.IncludedTerms) > 0 && !containsAny(title, p.IncludedTerms) {
		return reject(RuleIncludedTerm)
	}
	if containsAny(title, p.Markers) {
		return reject(RuleMarker)
	}
	if len(p.Platforms) > 0 && !containsAny(strings.ToLower(l.Platform), p.Platforms) {
		return reject(RulePlatform)
	}
	if p.Reward != nil && !p.Reward.Contains(l.MaxReward) {
		return reject(RuleReward)
	}
	if len(p.ScopeKeywords) > 0 && !containsAny(strings.ToLower(l.Scope), p.ScopeKeywords) {
		return reject(RuleScope)
	}
	return Verdict{Pass: true}
}

// Apply returns the listings that pass, in their original order
func (p Policy) Apply(listings []listing.Listing) []listing.Listing {
	matched := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if p.Evaluate(l).Pass {
			matched = append(matched, l)
		}
	}
	return matched
}

func reject(rule string) Verdict {
	return Verdict{Pass: false, Rule: rule}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// UnmarshalYAML accepts "inf" (or an absent key) as an unbounded max and
// treats an absent min as zero.
func (r *RewardRange) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Min *int   `yaml:"min"`
		Max string `yaml:"max"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	r.Min = 0
	if raw.Min != nil {
		r.Min = *raw.Min
	}

	upper := strings.TrimSpace(raw.Max)
	if upper == "" || strings.EqualFold(upper, "inf") {
		r.Max = Unbounded
		return nil
	}
	v, err := strconv.Atoi(upper)
	if err != nil {
		return fmt.Errorf("reward max %q: %w", raw.Max, err)
	}
	r.Max = v
	return nil
}
