// Package sqlxrepos implements the domain repositories on PostgreSQL.
package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a psql duplicate-key error
// on the given constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(errors.Cause(err), &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation && pqErr.Constraint == constraint
	}
	return false
}
