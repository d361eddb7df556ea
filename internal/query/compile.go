package query

import (
	"strings"

	"github.com/gcbaptista/card-catalog/model"
)

// CompileSelection builds the predicate for one facet selection. An empty
// selection compiles to True whatever the mode, so a missing filter never
// hides cards.
func CompileSelection(sel Selection) Predicate {
	values := model.UniqueTrimmed(sel.Values)
	if len(values) == 0 {
		return True
	}

	if sel.Facet.Kind == Scalar {
		// one value per card: allOf and exactSetOf reduce to membership
		return newScalarIn(sel.Facet, values, sel.Mode == NoneOf)
	}
	return setPredicate{facet: sel.Facet, rel: NewSetRelation(RelationFor(sel.Mode), values)}
}

// CompileRange builds the inclusive range predicate. A range without bounds
// or with low above high compiles to True.
func CompileRange(r Range) Predicate {
	if r.Low == nil && r.High == nil {
		return True
	}
	if r.Low != nil && r.High != nil && *r.Low > *r.High {
		return True
	}
	return between{field: r.Field, low: r.Low, high: r.High}
}

// CompileText builds the free-text group: the term must occur in at least
// one searchable column. An empty term compiles to True.
// Matching ignores case for ASCII letters only, as SQLite LIKE does, so "É"
// and "é" are different characters.
func CompileText(term string) Predicate {
	needle := foldASCII(strings.TrimSpace(term))
	if needle == "" {
		return True
	}
	group := make([]Predicate, 0, len(textFields))
	for _, f := range textFields {
		group = append(group, textContains{field: f, needle: needle})
	}
	return Or(group...)
}

// Compile joins every active filter of spec with AND.
func Compile(spec FilterSpec) Predicate {
	preds := make([]Predicate, 0, len(spec.Selections)+len(spec.Ranges)+1)
	for _, sel := range spec.Selections {
		preds = append(preds, CompileSelection(sel))
	}
	for _, r := range spec.Ranges {
		preds = append(preds, CompileRange(r))
	}
	preds = append(preds, CompileText(spec.Query))
	return And(preds...)
}
