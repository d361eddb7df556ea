package query

import (
	"cmp"
	"strings"

	"github.com/gcbaptista/card-catalog/model"
)

// Column names of the cards relation.
const (
	ColCardNo       = "card_no"
	ColName         = "card_name"
	ColSubTitle     = "sub_title"
	ColEffect       = "card_effect"
	ColChampionTag  = "champion_tag"
	ColNameEn       = "card_name_en"
	ColCategoryName = "card_category_name"
	ColSeriesName   = "series_name"
	ColRarityName   = "rarity_name"
	ColRegion       = "region"
	ColTag          = "tag"
	ColColors       = "card_color_list"
	ColKeywords     = "keywords"
	ColPower        = "power"
	ColEnergy       = "energy"
	ColReturnEnergy = "return_energy"
)

// FacetKind is the storage shape of a categorical facet.
type FacetKind int

const (
	// Scalar facets hold one value per card.
	Scalar FacetKind = iota
	// Delimited facets hold a set encoded as one separator-joined string.
	Delimited
	// List facets hold a set stored as a JSON array.
	List
)

// Facet describes one categorical facet.
type Facet struct {
	Name   string
	Column string
	Kind   FacetKind

	scalar func(*model.Card) string
	values func(*model.Card) []string
}

// Values returns the card's values for the facet as a set-like slice.
func (f Facet) Values(c *model.Card) []string {
	switch f.Kind {
	case Scalar:
		if v := f.scalar(c); v != "" {
			return []string{v}
		}
		return nil
	default:
		return f.values(c)
	}
}

var (
	FacetSeries = Facet{Name: "series", Column: ColSeriesName, Kind: Scalar,
		scalar: func(c *model.Card) string { return c.SeriesName }}
	FacetCategory = Facet{Name: "category", Column: ColCategoryName, Kind: Scalar,
		scalar: func(c *model.Card) string { return c.CategoryName }}
	FacetRarity = Facet{Name: "rarity", Column: ColRarityName, Kind: Scalar,
		scalar: func(c *model.Card) string { return c.RarityName }}
	FacetRegion = Facet{Name: "region", Column: ColRegion, Kind: Scalar,
		scalar: func(c *model.Card) string { return c.Region }}
	FacetTag = Facet{Name: "tag", Column: ColTag, Kind: Delimited,
		values: func(c *model.Card) []string { return c.Tags() }}
	FacetColor = Facet{Name: "color", Column: ColColors, Kind: List,
		values: func(c *model.Card) []string { return c.Colors }}
	FacetKeyword = Facet{Name: "keyword", Column: ColKeywords, Kind: List,
		values: func(c *model.Card) []string { return c.Keywords }}
)

// Facets lists every categorical facet in request order.
var Facets = []Facet{FacetSeries, FacetCategory, FacetRarity, FacetRegion, FacetTag, FacetColor, FacetKeyword}

// RangeField describes one numeric range facet.
type RangeField struct {
	Name   string
	Column string

	value func(*model.Card) int
}

// Value returns the card's value for the field.
func (r RangeField) Value(c *model.Card) int {
	return r.value(c)
}

var (
	RangePower        = RangeField{Name: "power", Column: ColPower, value: func(c *model.Card) int { return c.Power }}
	RangeEnergy       = RangeField{Name: "energy", Column: ColEnergy, value: func(c *model.Card) int { return c.Energy }}
	RangeReturnEnergy = RangeField{Name: "returnEnergy", Column: ColReturnEnergy, value: func(c *model.Card) int { return c.ReturnEnergy }}
)

// Ranges lists every range facet in request order.
var Ranges = []RangeField{RangePower, RangeEnergy, RangeReturnEnergy}

// textField is a column searched by the free-text term.
type textField struct {
	column string
	value  func(*model.Card) string
}

var textFields = []textField{
	{ColName, func(c *model.Card) string { return c.Name }},
	{ColSubTitle, func(c *model.Card) string { return c.SubTitle }},
	{ColEffect, func(c *model.Card) string { return c.Effect }},
	{ColCardNo, func(c *model.Card) string { return c.CardNo }},
	{ColChampionTag, func(c *model.Card) string { return c.ChampionTag }},
	{ColNameEn, func(c *model.Card) string { return c.NameEn }},
}

// SortField is a column a search can be ordered by.
type SortField struct {
	Key    string
	Column string

	compare func(a, b *model.Card) int
}

// IsPrimaryKey reports whether the field is the card number.
func (s SortField) IsPrimaryKey() bool {
	return s.Column == ColCardNo
}

func stringSort(key, column string, get func(*model.Card) string) SortField {
	return SortField{Key: key, Column: column, compare: func(a, b *model.Card) int {
		return strings.Compare(get(a), get(b))
	}}
}

func intSort(key, column string, get func(*model.Card) int) SortField {
	return SortField{Key: key, Column: column, compare: func(a, b *model.Card) int {
		return cmp.Compare(get(a), get(b))
	}}
}

var (
	SortCardNo       = stringSort("cardNo", ColCardNo, func(c *model.Card) string { return c.CardNo })
	SortName         = stringSort("name", ColName, func(c *model.Card) string { return c.Name })
	SortCategory     = stringSort("category", ColCategoryName, func(c *model.Card) string { return c.CategoryName })
	SortSeries       = stringSort("series", ColSeriesName, func(c *model.Card) string { return c.SeriesName })
	SortRarity       = stringSort("rarity", ColRarityName, func(c *model.Card) string { return c.RarityName })
	SortRegion       = stringSort("region", ColRegion, func(c *model.Card) string { return c.Region })
	SortEnergy       = intSort("energy", ColEnergy, func(c *model.Card) int { return c.Energy })
	SortPower        = intSort("power", ColPower, func(c *model.Card) int { return c.Power })
	SortReturnEnergy = intSort("returnEnergy", ColReturnEnergy, func(c *model.Card) int { return c.ReturnEnergy })
)

// sortFields is keyed by lower-cased public name and column name.
var sortFields = map[string]SortField{}

func init() {
	for _, f := range []SortField{SortCardNo, SortName, SortCategory, SortSeries, SortRarity, SortRegion, SortEnergy, SortPower, SortReturnEnergy} {
		sortFields[strings.ToLower(f.Key)] = f
		sortFields[f.Column] = f
	}
	sortFields["type"] = SortCategory
}

// LookupSort resolves a sort key by public name or column name.
func LookupSort(key string) (SortField, bool) {
	f, ok := sortFields[strings.ToLower(strings.TrimSpace(key))]
	return f, ok
}

// sortByColumn is used to evaluate orders in memory.
func sortByColumn(column string) (SortField, bool) {
	f, ok := sortFields[column]
	return f, ok && f.Column == column
}
