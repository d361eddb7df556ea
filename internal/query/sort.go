package query

import (
	"strings"

	"github.com/gcbaptista/card-catalog/model"
)

// Order is one ORDER BY term.
type Order struct {
	Column     string
	Descending bool
}

// OrderFor returns the full ordering for a sort request. Sorting by the card
// number uses it alone; any other key is followed by the card number
// ascending so that equal keys always page the same way.
func OrderFor(field SortField, ascending bool) []Order {
	if field.IsPrimaryKey() {
		return []Order{{Column: ColCardNo, Descending: !ascending}}
	}
	return []Order{
		{Column: field.Column, Descending: !ascending},
		{Column: ColCardNo},
	}
}

// CompareCards orders two cards by orders. Unknown columns compare equal.
func CompareCards(orders []Order, a, b *model.Card) int {
	for _, o := range orders {
		field, ok := sortByColumn(o.Column)
		if !ok {
			continue
		}
		c := field.compare(a, b)
		if o.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// RenderOrder renders orders as an ORDER BY list. Columns are restricted to
// the known sort columns.
func RenderOrder(orders []Order) string {
	terms := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := sortByColumn(o.Column); !ok {
			continue
		}
		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		terms = append(terms, o.Column+" "+dir)
	}
	if len(terms) == 0 {
		return ColCardNo + " ASC"
	}
	return strings.Join(terms, ", ")
}
