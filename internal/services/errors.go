package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/repos"
)

// classifyStoreError turns a raw store error into the typed error the
// caller surface promises. A uniqueness violation is a conflict, a missing
// row or missing partition table is not_found, a bad partition name is
// malformed input, anything else is the store failing underneath us.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound(fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, repos.ErrBadPartitionName):
		return apierr.MalformedInput(fmt.Errorf("%s: %w", op, err))
	case isUniqueViolation(err):
		return apierr.Conflict(fmt.Errorf("%s: %w", op, err))
	case isMissingTable(err):
		// partitions are caller-provisioned; an absent one is not a
		// schema error
		return apierr.NotFound(fmt.Errorf("%s: %w", op, err))
	default:
		return apierr.StoreUnavailable(fmt.Errorf("%s: %w", op, err))
	}
}

// The sql drivers return their own error types that cannot be wrapped at
// the source, so classification falls back to message matching.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate key")
}

func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "doesn't exist")
}
