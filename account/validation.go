package account

import (
	"strings"
	"unicode"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
)

const maxUsernameLength = 256

// ValidateCredentials rejects login input locally, before any network call
func ValidateCredentials(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &apperrors.ValidationError{Field: "username", Reason: "is required"}
	}

	if len(username) > maxUsernameLength {
		return &apperrors.ValidationError{Field: "username", Reason: "is too long"}
	}

	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return &apperrors.ValidationError{Field: "username", Reason: "contains invalid characters"}
	}

	if strings.TrimSpace(password) == "" {
		return &apperrors.ValidationError{Field: "password", Reason: "is required"}
	}

	return nil
}
