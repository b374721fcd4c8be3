// Package extract turns recognized text into a structured record by applying
// an ordered rule profile. Rules are configuration data: loaded once per
// document-type profile, validated eagerly, and shared read-only across all
// documents processed with that profile.
package extract

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrRuleProfileInvalid is returned when a profile document is malformed.
// It is fatal at load time, before any document is processed.
var ErrRuleProfileInvalid = errors.New("invalid rule profile")

// Strategy selects which matches of a rule become the field value.
type Strategy string

const (
	// StrategyFirst takes the first non-overlapping match in document order.
	StrategyFirst Strategy = "first"
	// StrategyLast takes the last non-overlapping match in document order.
	StrategyLast Strategy = "last"
	// StrategyAggregate collects all non-overlapping matches in document
	// order into a list.
	StrategyAggregate Strategy = "aggregate"
)

// Normalizer names the post-processing applied to a matched value. All
// normalizers are total: a value they cannot canonicalize degrades that
// field to the raw matched substring with a low-confidence flag.
type Normalizer string

const (
	NormalizerNone           Normalizer = "none"
	NormalizerDate           Normalizer = "date"
	NormalizerAmount         Normalizer = "amount"
	NormalizerCollapseSpaces Normalizer = "collapse_spaces"
)

// Rule binds one field name to a pattern, a match strategy and an optional
// normalizer.
type Rule struct {
	// Field is the name the extracted value is stored under.
	Field string `json:"field"`

	// Pattern is the regular expression matched against the full text.
	Pattern string `json:"pattern"`

	// Strategy defaults to first.
	Strategy Strategy `json:"strategy,omitempty"`

	// Normalizer defaults to none.
	Normalizer Normalizer `json:"normalizer,omitempty"`

	// Group selects a named capture group as the value instead of the whole
	// match.
	Group string `json:"group,omitempty"`
}

// Profile is the versioned set of rules for one document layout. Rule order
// is the declaration order; it fixes both the output key ordering and the
// first-registered-wins tie-break for overlapping matches.
type Profile struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
	Rules   []Rule `json:"rules"`
}

// compiledRule is a Rule with its pattern compiled and group layout resolved.
type compiledRule struct {
	rule       Rule
	re         *regexp.Regexp
	groupIndex int      // index of rule.Group, or -1
	groupNames []string // named capture groups in pattern order
}

// compile validates a single rule and resolves its pattern. Reported
// problems reference the rule's field name so profile authors can find them.
func (r Rule) compile() (*compiledRule, error) {
	if r.Field == "" {
		return nil, fmt.Errorf("rule has empty field name")
	}
	if r.Pattern == "" {
		return nil, fmt.Errorf("rule %q has empty pattern", r.Field)
	}

	switch r.Strategy {
	case "", StrategyFirst, StrategyLast, StrategyAggregate:
	default:
		return nil, fmt.Errorf("rule %q has unknown strategy %q", r.Field, r.Strategy)
	}
	switch r.Normalizer {
	case "", NormalizerNone, NormalizerDate, NormalizerAmount, NormalizerCollapseSpaces:
	default:
		return nil, fmt.Errorf("rule %q has unknown normalizer %q", r.Field, r.Normalizer)
	}

	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %q has invalid pattern: %v", r.Field, err)
	}

	var names []string
	for _, n := range re.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}

	groupIndex := -1
	if r.Group != "" {
		groupIndex = re.SubexpIndex(r.Group)
		if groupIndex < 0 {
			return nil, fmt.Errorf("rule %q selects group %q not present in pattern", r.Field, r.Group)
		}
	}

	// Two or more named groups turn each match into a row object; that only
	// makes sense when aggregating, and a scalar normalizer or group
	// selection has nothing to apply to.
	if len(names) >= 2 {
		if r.strategy() != StrategyAggregate {
			return nil, fmt.Errorf("rule %q has multiple named groups but strategy %q; use aggregate", r.Field, r.strategy())
		}
		if r.normalizer() != NormalizerNone {
			return nil, fmt.Errorf("rule %q cannot combine row groups with normalizer %q", r.Field, r.Normalizer)
		}
		if r.Group != "" {
			return nil, fmt.Errorf("rule %q cannot combine row groups with group selection", r.Field)
		}
	}

	return &compiledRule{
		rule:       r,
		re:         re,
		groupIndex: groupIndex,
		groupNames: names,
	}, nil
}

func (r Rule) strategy() Strategy {
	if r.Strategy == "" {
		return StrategyFirst
	}
	return r.Strategy
}

func (r Rule) normalizer() Normalizer {
	if r.Normalizer == "" {
		return NormalizerNone
	}
	return r.Normalizer
}
