package validation

import (
	"fmt"

	dErrors "checklist/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (1 MB). Sync
	// payloads carry whole checklists and are the largest bodies accepted.
	MaxBodySize = 1 << 20
)

// Slice element count limits
const (
	// MaxVehicles is the maximum number of vehicles accepted from the backend
	// for a single tenant listing.
	MaxVehicles = 500
)

// String element length limits
const (
	// MaxClientIDLength is the maximum length of a tenant (client) id.
	MaxClientIDLength = 100

	// MaxSessionTokenLength is the maximum length of the session cookie value.
	MaxSessionTokenLength = 4096

	// MaxRefreshTokenLength is the maximum length of the refresh cookie value.
	MaxRefreshTokenLength = 2048
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
