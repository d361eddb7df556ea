package query

// Relation is a set relationship between a card's values and a selection.
type Relation int

const (
	// Intersects holds when the two sets share at least one member.
	Intersects Relation = iota
	// SupersetOf holds when the card's set contains every selected member.
	SupersetOf
	// DisjointFrom holds when the two sets share no member.
	DisjointFrom
	// EqualsSet holds when the two sets are equal.
	EqualsSet
)

// RelationFor maps a selection mode onto the relation it tests.
func RelationFor(m Mode) Relation {
	switch m {
	case AllOf:
		return SupersetOf
	case NoneOf:
		return DisjointFrom
	case ExactSetOf:
		return EqualsSet
	default:
		return Intersects
	}
}

func (r Relation) String() string {
	switch r {
	case SupersetOf:
		return "supersetOf"
	case DisjointFrom:
		return "disjointFrom"
	case EqualsSet:
		return "equalsSet"
	default:
		return "intersects"
	}
}

// SetRelation is a relation bound to a de-duplicated, non-empty selection.
type SetRelation struct {
	Relation  Relation
	Selection []string

	members map[string]struct{}
}

// NewSetRelation binds rel to selection. The selection must already be
// de-duplicated.
func NewSetRelation(rel Relation, selection []string) SetRelation {
	members := make(map[string]struct{}, len(selection))
	for _, v := range selection {
		members[v] = struct{}{}
	}
	return SetRelation{Relation: rel, Selection: selection, members: members}
}

// Holds evaluates the relation against a card's values. Duplicate values on
// the card side count once.
func (r SetRelation) Holds(values []string) bool {
	distinct := make(map[string]struct{}, len(values))
	hits := 0
	for _, v := range values {
		if _, dup := distinct[v]; dup {
			continue
		}
		distinct[v] = struct{}{}
		if _, ok := r.members[v]; ok {
			hits++
		}
	}

	switch r.Relation {
	case SupersetOf:
		return hits == len(r.members)
	case DisjointFrom:
		return hits == 0
	case EqualsSet:
		return hits == len(r.members) && len(distinct) == len(r.members)
	default:
		return hits > 0
	}
}
