package backend

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Condition wraps a squirrel predicate so callers never build raw SQL.
type Condition struct {
	condition squirrel.Sqlizer
}

func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

func (c Condition) Or(other Condition) Condition {
	return Condition{squirrel.Or{c.condition, other.condition}}
}

func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// Column is a type-safe reference to one table column.
type Column[T any] struct {
	Name string
}

func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.Name: value}}
}

func (c Column[T]) NotEq(value T) Condition {
	return Condition{squirrel.NotEq{c.Name: value}}
}

func (c Column[T]) In(values ...T) Condition {
	anys := make([]interface{}, len(values))
	for i, v := range values {
		anys[i] = v
	}
	return Condition{squirrel.Eq{c.Name: anys}}
}

func (c Column[T]) IsNull() Condition {
	return Condition{squirrel.Eq{c.Name: nil}}
}

func (c Column[T]) IsNotNull() Condition {
	return Condition{squirrel.NotEq{c.Name: nil}}
}

func (c Column[T]) Asc() string {
	return c.Name + " ASC"
}

func (c Column[T]) Desc() string {
	return c.Name + " DESC"
}

// Comparable types that support ordering operators.
type Comparable interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64 | ~string
}

// ComparableColumn adds range predicates.
type ComparableColumn[T Comparable] struct {
	Column[T]
}

func (c ComparableColumn[T]) Gt(value T) Condition {
	return Condition{squirrel.Gt{c.Name: value}}
}

func (c ComparableColumn[T]) Gte(value T) Condition {
	return Condition{squirrel.GtOrEq{c.Name: value}}
}

func (c ComparableColumn[T]) Lt(value T) Condition {
	return Condition{squirrel.Lt{c.Name: value}}
}

func (c ComparableColumn[T]) Lte(value T) Condition {
	return Condition{squirrel.LtOrEq{c.Name: value}}
}

// StringColumn adds pattern predicates.
type StringColumn struct {
	ComparableColumn[string]
}

func (c StringColumn) Like(pattern string) Condition {
	return Condition{squirrel.Like{c.Name: pattern}}
}

func (c StringColumn) ILike(pattern string) Condition {
	return Condition{squirrel.ILike{c.Name: pattern}}
}

// TimeColumn covers timestamp columns.
type TimeColumn struct {
	Column[time.Time]
}

func (c TimeColumn) After(t time.Time) Condition {
	return Condition{squirrel.Gt{c.Name: t}}
}

func (c TimeColumn) Before(t time.Time) Condition {
	return Condition{squirrel.Lt{c.Name: t}}
}

func (c TimeColumn) Between(from, to time.Time) Condition {
	return Condition{squirrel.And{
		squirrel.GtOrEq{c.Name: from},
		squirrel.Lt{c.Name: to},
	}}
}

// BoolColumn covers boolean columns.
type BoolColumn struct {
	Column[bool]
}

func (c BoolColumn) IsTrue() Condition {
	return c.Eq(true)
}

func (c BoolColumn) IsFalse() Condition {
	return c.Eq(false)
}

// ArrayColumn covers Postgres array columns such as tags and goal_ids.
type ArrayColumn[T any] struct {
	Name string
}

func (c ArrayColumn[T]) Contains(value T) Condition {
	return Condition{squirrel.Expr(c.Name+" @> ?", pq.Array([]T{value}))}
}

func (c ArrayColumn[T]) Overlaps(values []T) Condition {
	return Condition{squirrel.Expr(c.Name+" && ?", pq.Array(values))}
}
