// AngelaMos | 2026
// pgerr.go

package core

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the stores react to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
	pgInvalidText         = "22P02"
)

// PgCode returns the SQLSTATE carried by err, or "" for non-Postgres
// errors.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsDuplicateKeyError(err error) bool {
	return PgCode(err) == pgUniqueViolation
}

func IsForeignKeyError(err error) bool {
	return PgCode(err) == pgForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return PgCode(err) == pgCheckViolation
}

// IsOutOfRange reports a value too large for its column, such as a
// quantity or total overflowing INTEGER or NUMERIC(10,2).
func IsOutOfRange(err error) bool {
	return PgCode(err) == pgNumericOutOfRange
}

// IsMalformedInput reports a parameter Postgres could not parse into the
// column type, such as a non-UUID string compared with a uuid column.
func IsMalformedInput(err error) bool {
	return PgCode(err) == pgInvalidText
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
