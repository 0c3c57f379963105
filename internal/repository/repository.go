// Package repository holds the pgx-backed data access layer. Each aggregate
// gets an interface plus a Postgres implementation; SQL is kept here so the
// services stay free of storage detail.
package repository

import (
	"strings"

	"github.com/rookies/ecommerce-api/internal/apperr"
)

// orderClause validates a client-supplied sort field against the table's
// whitelist and returns a safe ORDER BY fragment. Sort parameters reach SQL
// only through this helper.
func orderClause(sortBy, sortDir string, allowed map[string]string) (string, error) {
	col, ok := allowed[sortBy]
	if !ok {
		return "", apperr.ErrInvalidSortField
	}
	switch strings.ToLower(sortDir) {
	case "asc":
		return col + " ASC", nil
	case "desc":
		return col + " DESC", nil
	default:
		return "", apperr.ErrInvalidSortField
	}
}
