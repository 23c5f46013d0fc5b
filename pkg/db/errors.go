package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres error codes this adapter classifies. Classification is driven by
// the structured SQLSTATE code, never by message substring matching.
const (
	pgCodeUniqueViolation = "23505"
	pgCodeUndefinedTable  = "42P01"
	pgCodeUndefinedColumn = "42703"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. When constraintName is non-empty the violated constraint must
// match it exactly; this lets callers distinguish e.g. a duplicate pick from
// a duplicate watch mark inside the same transaction.
func IsUniqueViolation(err error, constraintName string) bool {
	code, constraint, ok := pgError(err)
	if !ok || code != pgCodeUniqueViolation {
		return false
	}
	if constraintName == "" {
		return true
	}
	return constraint == constraintName
}

// IsSchemaUnavailable reports whether err indicates a missing table or
// column, i.e. the feature's schema has not been provisioned.
func IsSchemaUnavailable(err error) bool {
	code, _, ok := pgError(err)
	if !ok {
		return false
	}
	return code == pgCodeUndefinedTable || code == pgCodeUndefinedColumn
}

func pgError(err error) (code, constraint string, ok bool) {
	if err == nil {
		return "", "", false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	return "", "", false
}
