package account_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jrsteele09/go-admin-client/account"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{name: "valid", username: "admin", password: "pw"},
		{name: "padded username", username: "  admin  ", password: "pw"},
		{name: "empty username", username: "", password: "pw", field: "username"},
		{name: "blank username", username: " \t", password: "pw", field: "username"},
		{name: "control characters", username: "ad\x00min", password: "pw", field: "username"},
		{name: "too long", username: strings.Repeat("a", 257), password: "pw", field: "username"},
		{name: "empty password", username: "admin", password: "", field: "password"},
		{name: "blank password", username: "admin", password: "   ", field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := account.ValidateCredentials(tt.username, tt.password)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var validationErr *apperrors.ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.Equal(t, tt.field, validationErr.Field)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
