package query

import "strings"

// Mode is the selection semantics applied between a facet's selected values
// and the values a card holds for that facet.
type Mode int

const (
	// AnyOf matches cards holding at least one selected value.
	AnyOf Mode = iota
	// AllOf matches cards holding every selected value.
	AllOf
	// NoneOf matches cards holding none of the selected values.
	NoneOf
	// ExactSetOf matches cards whose value set equals the selection.
	ExactSetOf
)

var modeNames = map[string]Mode{
	"anyof":      AnyOf,
	"allof":      AllOf,
	"noneof":     NoneOf,
	"exactsetof": ExactSetOf,

	// names used by older clients
	"eitherselected":  AnyOf,
	"includeselected": AllOf,
	"excludeselected": NoneOf,
	"onlyselected":    ExactSetOf,
}

// ParseMode resolves a mode name case-insensitively. An empty or unknown name
// resolves to AnyOf; known reports whether the name was recognized.
func ParseMode(name string) (mode Mode, known bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnyOf, true
	}
	if m, ok := modeNames[strings.ToLower(name)]; ok {
		return m, true
	}
	return AnyOf, false
}

func (m Mode) String() string {
	switch m {
	case AllOf:
		return "allOf"
	case NoneOf:
		return "noneOf"
	case ExactSetOf:
		return "exactSetOf"
	default:
		return "anyOf"
	}
}
