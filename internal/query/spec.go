package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

// Limits bounds what a single request may ask for. A zero Max field means
// no limit; a zero DefaultPageSize takes the value from DefaultLimits.
type Limits struct {
	DefaultPageSize    int
	MaxPageSize        int
	MaxSelectionValues int
	MaxQueryLength     int
}

// DefaultLimits are used when no limits are configured. Only the default
// page size is set.
var DefaultLimits = Limits{
	DefaultPageSize: 50,
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultLimits.DefaultPageSize
	}
	if l.MaxPageSize > 0 && l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

// Selection is a normalized facet selection: trimmed, de-duplicated and
// never empty.
type Selection struct {
	Facet  Facet
	Values []string
	Mode   Mode
}

// Range is a normalized numeric range with at least one bound.
type Range struct {
	Field     RangeField
	Low, High *int
}

// FilterSpec is the validated form of one search request.
type FilterSpec struct {
	Query      string
	Selections []Selection
	Ranges     []Range
	Sort       SortField
	Ascending  bool
	Page       int
	PageSize   int

	// Warnings lists the inputs that were replaced by defaults.
	Warnings []string
}

// Normalize validates a raw request. Recoverable problems are replaced by
// defaults and reported in Warnings; only requests that cannot be served at
// all fail, with a ValidationError.
func Normalize(req services.SearchRequest, limits Limits) (FilterSpec, error) {
	limits = limits.withDefaults()
	spec := FilterSpec{
		Query:     strings.TrimSpace(req.Query),
		Ascending: true,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	if n := utf8.RuneCountInString(spec.Query); limits.MaxQueryLength > 0 && n > limits.MaxQueryLength {
		return FilterSpec{}, internalErrors.NewValidationError("query",
			fmt.Sprintf("length %d exceeds the maximum of %d characters", n, limits.MaxQueryLength))
	}

	for _, facet := range Facets {
		raw := facetSelection(req, facet.Name)
		if raw == nil {
			continue
		}
		values := model.UniqueTrimmed(raw.Values)
		if len(values) == 0 {
			continue
		}
		if limits.MaxSelectionValues > 0 && len(values) > limits.MaxSelectionValues {
			return FilterSpec{}, internalErrors.NewValidationError(facet.Name,
				fmt.Sprintf("%d values selected, at most %d are allowed", len(values), limits.MaxSelectionValues))
		}
		mode, known := ParseMode(raw.Mode)
		if !known {
			spec.Warnings = append(spec.Warnings, fmt.Sprintf("unknown selection mode '%s' for facet '%s', using anyOf", raw.Mode, facet.Name))
		}
		spec.Selections = append(spec.Selections, Selection{Facet: facet, Values: values, Mode: mode})
	}

	for _, field := range Ranges {
		raw := rangeBound(req, field.Name)
		if raw == nil || (raw.Low == nil && raw.High == nil) {
			continue
		}
		if raw.Low != nil && raw.High != nil && *raw.Low > *raw.High {
			spec.Warnings = append(spec.Warnings, fmt.Sprintf("inverted range for '%s' (%d > %d) ignored", field.Name, *raw.Low, *raw.High))
			continue
		}
		spec.Ranges = append(spec.Ranges, Range{Field: field, Low: raw.Low, High: raw.High})
	}

	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.PageSize < 1 {
		spec.PageSize = limits.DefaultPageSize
	} else if limits.MaxPageSize > 0 && spec.PageSize > limits.MaxPageSize {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("page size %d clamped to %d", spec.PageSize, limits.MaxPageSize))
		spec.PageSize = limits.MaxPageSize
	}

	spec.Sort = SortCardNo
	if key := strings.TrimSpace(req.SortKey); key != "" {
		if field, ok := LookupSort(key); ok {
			spec.Sort = field
		} else {
			spec.Warnings = append(spec.Warnings, fmt.Sprintf("unknown sort key '%s', sorting by %s", key, SortCardNo.Key))
		}
	}
	if req.Ascending != nil {
		spec.Ascending = *req.Ascending
	}

	return spec, nil
}

func facetSelection(req services.SearchRequest, name string) *services.FacetSelection {
	switch name {
	case "series":
		return req.Series
	case "category":
		return req.Category
	case "rarity":
		return req.Rarity
	case "region":
		return req.Region
	case "tag":
		return req.Tag
	case "color":
		return req.Color
	case "keyword":
		return req.Keyword
	}
	return nil
}

func rangeBound(req services.SearchRequest, name string) *services.RangeBound {
	switch name {
	case "power":
		return req.Power
	case "energy":
		return req.Energy
	case "returnEnergy":
		return req.ReturnEnergy
	}
	return nil
}
