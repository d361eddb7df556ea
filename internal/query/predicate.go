package query

import (
	"strings"

	"github.com/gcbaptista/card-catalog/model"
)

// Predicate is a compiled filter over cards. Every predicate can be evaluated
// in memory and rendered as a parameterized SQL condition; both forms select
// the same cards.
type Predicate interface {
	// Match reports whether the card satisfies the predicate.
	Match(c *model.Card) bool

	writeSQL(w *sqlWriter)
}

// True is the predicate every card satisfies.
var True Predicate = truePredicate{}

type truePredicate struct{}

func (truePredicate) Match(*model.Card) bool { return true }

// IsTrue reports whether p is the always-true predicate.
func IsTrue(p Predicate) bool {
	_, ok := p.(truePredicate)
	return p == nil || ok
}

type andPredicate []Predicate

// And joins predicates with logical AND, dropping always-true operands.
func And(preds ...Predicate) Predicate {
	var kept andPredicate
	for _, p := range preds {
		if IsTrue(p) {
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return True
	case 1:
		return kept[0]
	}
	return kept
}

func (a andPredicate) Match(c *model.Card) bool {
	for _, p := range a {
		if !p.Match(c) {
			return false
		}
	}
	return true
}

type orPredicate []Predicate

// Or joins predicates with logical OR. Any always-true operand makes the
// whole group always-true, as does an empty group.
func Or(preds ...Predicate) Predicate {
	for _, p := range preds {
		if IsTrue(p) {
			return True
		}
	}
	switch len(preds) {
	case 0:
		return True
	case 1:
		return preds[0]
	}
	return orPredicate(preds)
}

func (o orPredicate) Match(c *model.Card) bool {
	for _, p := range o {
		if p.Match(c) {
			return true
		}
	}
	return false
}

// scalarIn tests membership of a single-valued facet.
type scalarIn struct {
	facet  Facet
	values []string
	set    map[string]struct{}
	negate bool
}

func newScalarIn(f Facet, values []string, negate bool) scalarIn {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return scalarIn{facet: f, values: values, set: set, negate: negate}
}

func (s scalarIn) Match(c *model.Card) bool {
	_, ok := s.set[s.facet.scalar(c)]
	return ok != s.negate
}

// setPredicate applies a set relation to a multi-valued facet.
type setPredicate struct {
	facet Facet
	rel   SetRelation
}

func (s setPredicate) Match(c *model.Card) bool {
	return s.rel.Holds(s.facet.Values(c))
}

// between is an inclusive numeric range; a nil bound is open.
type between struct {
	field     RangeField
	low, high *int
}

func (b between) Match(c *model.Card) bool {
	v := b.field.Value(c)
	if b.low != nil && v < *b.low {
		return false
	}
	if b.high != nil && v > *b.high {
		return false
	}
	return true
}

// textContains is a case-insensitive literal substring test on one column.
// Case folding is limited to ASCII letters, matching SQLite's LIKE.
type textContains struct {
	field  textField
	needle string // already folded
}

func (t textContains) Match(c *model.Card) bool {
	return strings.Contains(foldASCII(t.field.value(c)), t.needle)
}

func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
