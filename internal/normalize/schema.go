// Package normalize coerces loosely typed parser output into clean records.
//
// Normalization is pure and idempotent: running a normalized record through
// the same schema again returns it unchanged. Values that cannot be coerced
// are passed through as they are.
package normalize

import (
	"strconv"
	"strings"

	"poewiki/internal/model"
)

type Kind int

const (
	Text Kind = iota
	Int
	List
)

// Rule describes how one field is normalized.
//
// For List fields every string element (a plain string counts as one) is
// cleaned, then split, then filtered with Drop. Empty pieces are dropped and
// an empty result becomes nil.
type Rule struct {
	Field string
	Kind  Kind
	Clean func(string) string
	Split func(string) []string
	Drop  func(string) bool
}

type Normalizer interface {
	Normalize(r model.Record) model.Record
}

// Schema applies rules by field name. Fields without a rule are kept as is,
// and field order never changes.
type Schema struct {
	Rules []Rule
}

func (s Schema) Normalize(r model.Record) model.Record {
	fields := make([]model.Field, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = f
		if rule, ok := s.rule(f.Key); ok {
			fields[i].Value = rule.apply(f.Value)
		}
	}
	return model.Record{Fields: fields}
}

func (s Schema) rule(field string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

func NormalizeSet(n Normalizer, rs model.RecordSet) model.RecordSet {
	out := make(model.RecordSet, len(rs))
	for i, r := range rs {
		out[i] = n.Normalize(r)
	}
	return out
}

func (r Rule) apply(v any) any {
	switch r.Kind {
	case Int:
		return toInt(v)
	case List:
		return r.list(v)
	default:
		s, ok := v.(string)
		if !ok {
			return v
		}
		return r.clean(s)
	}
}

func (r Rule) clean(s string) string {
	if r.Clean == nil {
		return s
	}
	return r.Clean(s)
}

func (r Rule) list(v any) any {
	var in []string
	switch t := v.(type) {
	case string:
		in = []string{t}
	case []string:
		in = t
	default:
		return v
	}

	var out []string
	for _, s := range in {
		s = r.clean(s)
		parts := []string{s}
		if r.Split != nil {
			parts = r.Split(s)
		}
		for _, p := range parts {
			if p == "" || (r.Drop != nil && r.Drop(p)) {
				continue
			}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var thousands = strings.NewReplacer(",", "", " ", "", "\u00a0", "")

func toInt(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	n, err := strconv.Atoi(thousands.Replace(strings.TrimSpace(s)))
	if err != nil {
		return v
	}
	return n
}
