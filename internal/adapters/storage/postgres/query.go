package postgres

import (
	"fmt"
	"strings"

	"mediation-cms/internal/access"
)

// query arma WHERE/args con placeholders $n en orden.
type query struct {
	where []string
	args  []any
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *query) and(cond string) {
	q.where = append(q.where, cond)
}

// columns mapea los campos del filtro de acceso a columnas de la tabla.
type columns struct {
	id        string
	status    string
	relations map[string]string // relación => columna TEXT[]
}

// scope traduce el filtro de la política a SQL. nil = sin restricción.
// Un campo sin columna se traduce a FALSE (nunca amplía el resultado).
func (q *query) scope(f *access.Filter, cols columns) {
	if f == nil {
		return
	}
	if f.Empty() {
		q.and("FALSE")
		return
	}

	ors := make([]string, 0, len(f.Any))
	for _, c := range f.Any {
		ors = append(ors, q.condition(c, cols))
	}
	q.and("(" + strings.Join(ors, " OR ") + ")")
}

func (q *query) condition(c access.Condition, cols columns) string {
	switch c.Op {
	case access.OpEquals:
		switch c.Field {
		case access.FieldID:
			if cols.id != "" {
				return cols.id + " = " + q.arg(c.Value)
			}
		case access.FieldStatus:
			if cols.status != "" {
				return cols.status + " = " + q.arg(c.Value)
			}
		}
	case access.OpContains:
		if col, ok := cols.relations[c.Field]; ok {
			return q.arg(c.Value) + " = ANY(" + col + ")"
		}
	}
	return "FALSE"
}

func (q *query) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *query) limit(n, def, max int) string {
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return " LIMIT " + q.arg(n)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
