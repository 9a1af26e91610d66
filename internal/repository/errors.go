package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate reports a unique-constraint violation on insert or update.
var ErrDuplicate = errors.New("duplicate key")

// isUniqueViolation recognises unique violations from postgres (SQLSTATE
// 23505) and sqlite, whether or not the dialect translated the error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
