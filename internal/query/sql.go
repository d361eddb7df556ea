package query

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/card-catalog/model"
)

// sqlWriter accumulates a SQLite condition and its bind arguments.
type sqlWriter struct {
	b    strings.Builder
	args []any
}

func (w *sqlWriter) write(parts ...string) {
	for _, p := range parts {
		w.b.WriteString(p)
	}
}

func (w *sqlWriter) arg(v any) {
	w.b.WriteByte('?')
	w.args = append(w.args, v)
}

func (w *sqlWriter) list(values []string) {
	w.b.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			w.b.WriteString(", ")
		}
		w.arg(v)
	}
	w.b.WriteByte(')')
}

func (w *sqlWriter) join(preds []Predicate, op string) {
	w.b.WriteByte('(')
	for i, p := range preds {
		if i > 0 {
			w.write(" ", op, " ")
		}
		p.writeSQL(w)
	}
	w.b.WriteByte(')')
}

// Render returns the SQL condition for p and its bind arguments, in order.
// An always-true predicate renders as the empty string.
func Render(p Predicate) (string, []any) {
	if IsTrue(p) {
		return "", nil
	}
	w := &sqlWriter{}
	p.writeSQL(w)
	return w.b.String(), w.args
}

func (truePredicate) writeSQL(w *sqlWriter) { w.write("1") }

func (a andPredicate) writeSQL(w *sqlWriter) { w.join(a, "AND") }

func (o orPredicate) writeSQL(w *sqlWriter) { w.join(o, "OR") }

func (s scalarIn) writeSQL(w *sqlWriter) {
	w.write("COALESCE(", s.facet.Column, ", '') ")
	if s.negate {
		w.write("NOT ")
	}
	w.write("IN ")
	w.list(s.values)
}

func (s setPredicate) writeSQL(w *sqlWriter) {
	if s.facet.Kind == List {
		writeListRelation(w, s.facet.Column, s.rel)
		return
	}
	writeDelimitedRelation(w, s.facet.Column, s.rel)
}

// writeDelimitedRelation tests membership by searching the separator-padded
// string for the separator-padded value. The card's set size is the
// separator count plus one, which holds because stored tag strings are
// normalized on write.
func writeDelimitedRelation(w *sqlWriter, column string, rel SetRelation) {
	sep := model.TagSeparator
	padded := fmt.Sprintf("('%s' || COALESCE(%s, '') || '%s')", sep, column, sep)

	members := func(op string) {
		w.write("(")
		for i, v := range rel.Selection {
			if i > 0 {
				w.write(" ", op, " ")
			}
			if strings.Contains(v, sep) {
				// a member can never contain the separator
				w.write("0")
				continue
			}
			w.write("instr(", padded, ", ")
			w.arg(sep + v + sep)
			w.write(") > 0")
		}
		w.write(")")
	}

	switch rel.Relation {
	case SupersetOf:
		members("AND")
	case DisjointFrom:
		w.write("NOT ")
		members("OR")
	case EqualsSet:
		w.write("(")
		members("AND")
		w.write(fmt.Sprintf(" AND (CASE WHEN COALESCE(%s, '') = '' THEN 0 ELSE LENGTH(%s) - LENGTH(REPLACE(%s, '%s', '')) + 1 END) = ",
			column, column, column, sep))
		w.arg(len(rel.Selection))
		w.write(")")
	default:
		members("OR")
	}
}

// listSource reads a JSON array column as a table. Values that are not a
// JSON array read as an empty list.
func listSource(column string) string {
	return fmt.Sprintf("json_each(CASE WHEN json_valid(%[1]s) THEN (CASE json_type(%[1]s) WHEN 'array' THEN %[1]s ELSE '[]' END) ELSE '[]' END)", column)
}

// writeListRelation evaluates the relation over the elements of a JSON array
// column.
func writeListRelation(w *sqlWriter, column string, rel SetRelation) {
	source := listSource(column)

	exists := func(negateIn bool) {
		w.write("EXISTS (SELECT 1 FROM ", source, " WHERE value ")
		if negateIn {
			w.write("NOT ")
		}
		w.write("IN ")
		w.list(rel.Selection)
		w.write(")")
	}
	countHits := func() {
		w.write("(SELECT COUNT(DISTINCT value) FROM ", source, " WHERE value IN ")
		w.list(rel.Selection)
		w.write(") = ")
		w.arg(len(rel.Selection))
	}

	switch rel.Relation {
	case SupersetOf:
		countHits()
	case DisjointFrom:
		w.write("NOT ")
		exists(false)
	case EqualsSet:
		w.write("(")
		countHits()
		w.write(" AND NOT ")
		exists(true)
		w.write(")")
	default:
		exists(false)
	}
}

func (b between) writeSQL(w *sqlWriter) {
	switch {
	case b.low != nil && b.high != nil:
		w.write(b.field.Column, " BETWEEN ")
		w.arg(*b.low)
		w.write(" AND ")
		w.arg(*b.high)
	case b.low != nil:
		w.write(b.field.Column, " >= ")
		w.arg(*b.low)
	case b.high != nil:
		w.write(b.field.Column, " <= ")
		w.arg(*b.high)
	default:
		w.write("1")
	}
}

func (t textContains) writeSQL(w *sqlWriter) {
	w.write("COALESCE(", t.field.column, ", '') LIKE ")
	w.arg("%" + escapeLike(t.needle) + "%")
	w.write(` ESCAPE '\'`)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes every character of s match literally in a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
