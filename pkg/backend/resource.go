package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Resource is the typed client for one backend table. It is the single
// generic implementation behind every synchronized resource (tasks, projects,
// goals, trash items, stats): the per-resource differences live entirely in
// the Table metadata and the row type T.
//
// All operations are context-bound and return errors from the taxonomy in
// errors.go. A Resource is safe for concurrent use.
type Resource[T any] struct {
	db    Executor
	table Table
}

// NewResource builds a resource over db for the given table.
func NewResource[T any](db Executor, table Table) *Resource[T] {
	return &Resource[T]{db: db, table: table}
}

// WithExecutor returns a copy of the resource bound to a different executor,
// typically a transaction.
func (r *Resource[T]) WithExecutor(ex Executor) *Resource[T] {
	return &Resource[T]{db: ex, table: r.table}
}

// Table returns the resource's table metadata.
func (r *Resource[T]) Table() Table {
	return r.table
}

func (r *Resource[T]) selectBuilder() squirrel.SelectBuilder {
	return squirrel.Select(r.table.Columns...).
		From(r.table.Name).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Resource[T]) returning() string {
	return "RETURNING " + strings.Join(r.table.Columns, ", ")
}

// List returns every live row matching the conditions, in the table's
// default order. Soft-deleted rows are excluded.
func (r *Resource[T]) List(ctx context.Context, conds ...Condition) ([]T, error) {
	b := r.selectBuilder()
	if r.table.SoftDelete {
		b = b.Where("deleted_at IS NULL")
	}
	for _, c := range conds {
		b = b.Where(c.ToSqlizer())
	}
	if len(r.table.DefaultOrder) > 0 {
		b = b.OrderBy(r.table.DefaultOrder...)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapError(err, "list", r.table.Name)
	}

	var out []T
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, wrapError(err, "list", r.table.Name)
	}
	return out, nil
}

// Get returns one live row by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	b := r.selectBuilder().Where(squirrel.Eq{"id": id})
	if r.table.SoftDelete {
		b = b.Where("deleted_at IS NULL")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapError(err, "get", r.table.Name)
	}

	var out T
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return nil, wrapError(err, "get", r.table.Name)
	}
	return &out, nil
}

// Insert writes row and returns it as stored, with backend-stamped columns
// filled in. Unique violations surface as ErrDuplicate.
func (r *Resource[T]) Insert(ctx context.Context, row *T) (*T, error) {
	cols := r.table.InsertColumns
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		r.table.Name, strings.Join(cols, ", "), strings.Join(named, ", "), r.returning())

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, row)
	if err != nil {
		return nil, wrapError(err, "insert", r.table.Name)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, wrapError(rows.Err(), "insert", r.table.Name)
	}
	var out T
	if err := rows.StructScan(&out); err != nil {
		return nil, wrapError(err, "insert", r.table.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "insert", r.table.Name)
	}
	return &out, nil
}

// Update applies changes to one live row and returns the stored result.
// Returns ErrNotFound when the row does not exist or is soft-deleted.
func (r *Resource[T]) Update(ctx context.Context, id string, changes map[string]interface{}) (*T, error) {
	b := squirrel.Update(r.table.Name).
		SetMap(changes).
		Where(squirrel.Eq{"id": id}).
		Suffix(r.returning()).
		PlaceholderFormat(squirrel.Dollar)
	if r.table.SoftDelete {
		b = b.Where("deleted_at IS NULL")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapError(err, "update", r.table.Name)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "update", r.table.Name)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, wrapError(err, "update", r.table.Name)
		}
		return nil, &Error{Op: "update", Table: r.table.Name, Err: ErrNotFound}
	}
	var out T
	if err := rows.StructScan(&out); err != nil {
		return nil, wrapError(err, "update", r.table.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "update", r.table.Name)
	}
	return &out, nil
}

// SoftDelete stamps deleted_at on one live row, removing it from every
// normal query. Returns ErrNotFound when the row is missing or already
// deleted.
func (r *Resource[T]) SoftDelete(ctx context.Context, id string) error {
	query, args, err := squirrel.Update(r.table.Name).
		Set("deleted_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return wrapError(err, "soft_delete", r.table.Name)
	}
	return r.execExpectingRow(ctx, "soft_delete", query, args)
}

// RestoreDeleted clears deleted_at on one soft-deleted row, making it live
// again. Returns ErrNotFound when no such soft-deleted row exists.
func (r *Resource[T]) RestoreDeleted(ctx context.Context, id string) error {
	query, args, err := squirrel.Update(r.table.Name).
		Set("deleted_at", nil).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NOT NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return wrapError(err, "restore", r.table.Name)
	}
	return r.execExpectingRow(ctx, "restore", query, args)
}

// Delete removes one row outright, soft-deleted or not.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	query, args, err := squirrel.Delete(r.table.Name).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return wrapError(err, "delete", r.table.Name)
	}
	return r.execExpectingRow(ctx, "delete", query, args)
}

// DeleteWhere removes every row matching the conditions and reports how many
// went away. Used by trash cleanup; zero matches is not an error.
func (r *Resource[T]) DeleteWhere(ctx context.Context, conds ...Condition) (int64, error) {
	b := squirrel.Delete(r.table.Name).PlaceholderFormat(squirrel.Dollar)
	for _, c := range conds {
		b = b.Where(c.ToSqlizer())
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, wrapError(err, "delete_where", r.table.Name)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapError(err, "delete_where", r.table.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapError(err, "delete_where", r.table.Name)
	}
	return n, nil
}

func (r *Resource[T]) execExpectingRow(ctx context.Context, op, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapError(err, op, r.table.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapError(err, op, r.table.Name)
	}
	if n == 0 {
		return &Error{Op: op, Table: r.table.Name, Err: ErrNotFound}
	}
	return nil
}
