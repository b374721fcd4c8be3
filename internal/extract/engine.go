package extract

import (
	"fmt"

	"github.com/rs/zerolog"

	"formscan/internal/logger"
)

// Engine applies one rule profile to recognized text. It holds only
// read-only state and is safe for concurrent use across documents.
type Engine struct {
	profile *Profile
	rules   []*compiledRule
	log     zerolog.Logger
}

// NewEngine compiles the profile's rules. Compilation problems and
// duplicate field names fail here with ErrRuleProfileInvalid, before any
// document is processed.
func NewEngine(profile *Profile) (*Engine, error) {
	if profile == nil || len(profile.Rules) == 0 {
		return nil, fmt.Errorf("%w: profile has no rules", ErrRuleProfileInvalid)
	}

	seen := make(map[string]bool, len(profile.Rules))
	rules := make([]*compiledRule, 0, len(profile.Rules))
	for _, r := range profile.Rules {
		if seen[r.Field] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrRuleProfileInvalid, r.Field)
		}
		seen[r.Field] = true

		cr, err := r.compile()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRuleProfileInvalid, err)
		}
		rules = append(rules, cr)
	}

	return &Engine{
		profile: profile,
		rules:   rules,
		log:     logger.WithComponent("extract"),
	}, nil
}

// Profile returns the active profile.
func (e *Engine) Profile() *Profile { return e.profile }

// span is a half-open byte range in the input text.
type span struct{ start, end int }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

// Extract applies the rules in declaration order to the full text and
// returns the structured record. A field whose pattern never matches yields
// null, never an error; the same text and profile always produce an
// identical record.
func (e *Engine) Extract(text string) *Record {
	record := &Record{
		Fields:  make([]Field, 0, len(e.rules)),
		RawText: text,
	}

	// Spans consumed by earlier rules. A later rule skips candidates that
	// overlap them, which is what makes first-registered-wins hold when two
	// patterns compete for the same substring.
	var claimed []span

	for _, cr := range e.rules {
		field := e.applyRule(cr, text, &claimed)
		record.Fields = append(record.Fields, field)

		e.log.Trace().
			Str("field", field.Name).
			Str("confidence", string(field.Confidence)).
			Msg("Rule evaluated")
	}

	return record
}

func (e *Engine) applyRule(cr *compiledRule, text string, claimed *[]span) Field {
	field := Field{Name: cr.rule.Field, Value: NullValue(), Confidence: ConfidenceUnmatched}

	all := cr.re.FindAllStringSubmatchIndex(text, -1)
	if len(all) == 0 {
		return field
	}

	candidates := all[:0:0]
	for _, m := range all {
		s := span{m[0], m[1]}
		free := true
		for _, c := range *claimed {
			if s.overlaps(c) {
				free = false
				break
			}
		}
		if free {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return field
	}

	normalize := normalizerFor(cr.rule.normalizer())

	switch cr.rule.strategy() {
	case StrategyAggregate:
		if len(cr.groupNames) >= 2 {
			rows := make([]Row, 0, len(candidates))
			for _, m := range candidates {
				rows = append(rows, e.rowFromMatch(cr, text, m))
				*claimed = append(*claimed, span{m[0], m[1]})
			}
			field.Value = TableValue(rows)
			field.Confidence = ConfidenceOK
			return field
		}

		values := make([]string, 0, len(candidates))
		confidence := ConfidenceOK
		for _, m := range candidates {
			raw := e.valueFromMatch(cr, text, m)
			v, ok := normalize(raw)
			if !ok {
				v = raw
				confidence = ConfidenceLow
			}
			values = append(values, v)
			*claimed = append(*claimed, span{m[0], m[1]})
		}
		field.Value = ListValue(values)
		field.Confidence = confidence
		return field

	case StrategyLast:
		m := candidates[len(candidates)-1]
		return e.scalarField(cr, text, m, normalize, claimed)

	default: // StrategyFirst
		return e.scalarField(cr, text, candidates[0], normalize, claimed)
	}
}

func (e *Engine) scalarField(cr *compiledRule, text string, m []int, normalize normalizeFunc, claimed *[]span) Field {
	raw := e.valueFromMatch(cr, text, m)
	*claimed = append(*claimed, span{m[0], m[1]})

	v, ok := normalize(raw)
	if !ok {
		e.log.Debug().
			Str("field", cr.rule.Field).
			Str("raw", raw).
			Str("normalizer", string(cr.rule.normalizer())).
			Msg("Normalizer rejected match, keeping raw value")
		return Field{Name: cr.rule.Field, Value: TextValue(raw), Confidence: ConfidenceLow}
	}
	return Field{Name: cr.rule.Field, Value: TextValue(v), Confidence: ConfidenceOK}
}

// valueFromMatch extracts the selected group, or the whole match when no
// group is configured or the group did not participate.
func (e *Engine) valueFromMatch(cr *compiledRule, text string, m []int) string {
	if cr.groupIndex > 0 && 2*cr.groupIndex+1 < len(m) {
		lo, hi := m[2*cr.groupIndex], m[2*cr.groupIndex+1]
		if lo >= 0 && hi >= 0 {
			return text[lo:hi]
		}
	}
	return text[m[0]:m[1]]
}

// rowFromMatch expands each named capture group into a cell, in pattern
// declaration order. Groups that did not participate yield empty cells.
func (e *Engine) rowFromMatch(cr *compiledRule, text string, m []int) Row {
	row := make(Row, 0, len(cr.groupNames))
	names := cr.re.SubexpNames()
	for i, name := range names {
		if name == "" {
			continue
		}
		value := ""
		if 2*i+1 < len(m) && m[2*i] >= 0 && m[2*i+1] >= 0 {
			value = text[m[2*i]:m[2*i+1]]
		}
		row = append(row, Cell{Key: name, Value: value})
	}
	return row
}
