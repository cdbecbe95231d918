package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
)

// Sentinel errors shared across the domain services. Handlers translate these
// to the API error taxonomy via pkg/errors.
var (
	// ErrPartyNotFound covers lookups and submissions referencing a party
	// that does not exist.
	ErrPartyNotFound = appErrors.ErrNotFound.WithMessage("Party not found")
)

// isUniqueConstraintError detects database uniqueness violations across the
// supported drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
