package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates statement text and its positional arguments. Every
// bound value renders as the next $n placeholder.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) raw(s string) {
	w.buf.WriteString(s)
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$" + strconv.Itoa(len(w.args)))
}

// expand writes expr, rewriting each ? into the next bound argument. Extra
// question marks past the argument list pass through untouched.
func (w *sqlWriter) expand(expr string, exprArgs []any) {
	if len(exprArgs) == 0 {
		w.raw(expr)
		return
	}
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(expr[i])
	}
}

func (w *sqlWriter) writeWhere(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.raw(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.raw(" AND ")
		}
		c.render(w)
	}
}

// Condition renders one WHERE predicate.
type Condition interface {
	render(w *sqlWriter)
}

type condFunc func(w *sqlWriter)

func (f condFunc) render(w *sqlWriter) { f(w) }

func Eq(column string, value any) Condition {
	return condFunc(func(w *sqlWriter) {
		w.raw(column)
		w.raw(" = ")
		w.bind(value)
	})
}

func In(column string, values []any) Condition {
	return condFunc(func(w *sqlWriter) {
		if len(values) == 0 {
			w.raw("1=0")
			return
		}
		w.raw(column)
		w.raw(" IN (")
		for i, v := range values {
			if i > 0 {
				w.raw(", ")
			}
			w.bind(v)
		}
		w.raw(")")
	})
}

func IsNull(column string) Condition {
	return condFunc(func(w *sqlWriter) {
		w.raw(column)
		w.raw(" IS NULL")
	})
}

// Expr embeds a raw SQL fragment with ? placeholders for its arguments.
func Expr(expr string, args ...any) Condition {
	return condFunc(func(w *sqlWriter) {
		w.expand(expr, args)
	})
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &sqlWriter{}
	w.raw("SELECT ")
	w.raw(strings.Join(b.columns, ", "))
	w.raw(" FROM ")
	w.raw(b.table)
	w.writeWhere(b.where)
	if len(b.orderBy) > 0 {
		w.raw(" ORDER BY ")
		w.raw(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.raw(" LIMIT ")
		w.raw(strconv.Itoa(b.limit))
	}

	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends a trailing fragment such as RETURNING or ON CONFLICT.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &sqlWriter{}
	w.raw("INSERT INTO ")
	w.raw(b.table)
	w.raw(" (")
	w.raw(strings.Join(b.columns, ", "))
	w.raw(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.raw(", ")
		}
		w.raw("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.raw(", ")
			}
			w.bind(value)
		}
		w.raw(")")
	}

	if b.suffix != "" {
		w.raw(" ")
		w.expand(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}

type setClause struct {
	column string
	value  any
	expr   string
	args   []any
	isExpr bool
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression with ? placeholders for its arguments.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: expr, args: args, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &sqlWriter{}
	w.raw("UPDATE ")
	w.raw(b.table)
	w.raw(" SET ")

	for i, s := range b.sets {
		if i > 0 {
			w.raw(", ")
		}
		w.raw(s.column)
		w.raw(" = ")
		if s.isExpr {
			w.expand(s.expr, s.args)
			continue
		}
		w.bind(s.value)
	}

	w.writeWhere(b.where)
	if b.suffix != "" {
		w.raw(" ")
		w.expand(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}
