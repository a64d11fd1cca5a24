package sqldb

import (
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/VitaminP8/gqlapi/internal/storage"
)

const pqUniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique constraint failure from
// sqlite or postgres. user.email is the only unique column besides the keys.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	return false
}

func translateError(err error, msg string) error {
	if isUniqueViolation(err) {
		return storage.ErrDuplicateEmail
	}
	return errors.Wrap(err, msg)
}
