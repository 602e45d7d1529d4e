package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Sentinel errors for the backend surface. Callers match with errors.Is.
var (
	ErrNotFound         = errors.New("row not found")
	ErrDuplicate        = errors.New("unique constraint violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrCheckViolation   = errors.New("check constraint violation")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNetwork          = errors.New("network failure")
)

// Error carries the operation and table alongside the underlying cause.
type Error struct {
	Op         string
	Table      string
	Err        error
	Constraint string
	Column     string
	Retryable  bool
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("backend: %s", e.Op)}
	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}
	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}
	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError classifies a driver error into the backend taxonomy.
func wrapError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: err, Retryable: true}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &Error{Op: op, Table: table, Err: ErrDuplicate, Constraint: pqErr.Constraint}
		case "23503":
			return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: pqErr.Constraint}
		case "23502":
			return &Error{Op: op, Table: table, Err: ErrNotNull, Column: pqErr.Column}
		case "23514":
			return &Error{Op: op, Table: table, Err: ErrCheckViolation, Constraint: pqErr.Constraint}
		}
		return &Error{Op: op, Table: table, Err: pqErr}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Op: op, Table: table, Err: fmt.Errorf("%w: %v", ErrNetwork, netErr), Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}
