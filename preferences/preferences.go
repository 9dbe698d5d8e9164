package preferences

import (
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/kv"
)

const (
	keyTheme            = "theme"
	keyBiometricEnabled = "biometric_enabled"
	keyInstallationID   = "installation_id"
)

// Theme is the UI colour scheme
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// ParseTheme accepts "system", "light" or "dark"
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", &apperrors.ValidationError{Field: keyTheme, Reason: fmt.Sprintf("must be one of system, light, dark (got %q)", s)}
	}
	return t, nil
}

// Preferences is the UI namespace. It shares the kv contract with the session but not its keys.
type Preferences struct {
	store kv.Store
}

func New(store kv.Store) *Preferences {
	return &Preferences{store: store}
}

// Theme returns the stored theme, ThemeSystem when unset or unrecognised.
func (p *Preferences) Theme() Theme {
	s, _ := kv.GetString(p.store, keyTheme)
	if t := Theme(s); t.Valid() {
		return t
	}
	return ThemeSystem
}

func (p *Preferences) SetTheme(t Theme) error {
	if !t.Valid() {
		return &apperrors.ValidationError{Field: keyTheme, Reason: fmt.Sprintf("unknown theme %q", t)}
	}
	return kv.SetString(p.store, keyTheme, string(t))
}

func (p *Preferences) BiometricEnabled() bool {
	enabled, _ := kv.GetBool(p.store, keyBiometricEnabled)
	return enabled
}

func (p *Preferences) SetBiometricEnabled(enabled bool) error {
	return kv.SetBool(p.store, keyBiometricEnabled, enabled)
}

// InstallationID returns a stable random identifier, created and stored on first use.
func (p *Preferences) InstallationID() (string, error) {
	var id string
	err := p.store.Update(func(v kv.Values) error {
		if existing, ok := v.String(keyInstallationID); ok {
			if _, err := uuid.Parse(existing); err == nil {
				id = existing
				return nil
			}
		}
		id = uuid.NewString()
		v.SetString(keyInstallationID, id)
		return nil
	})
	if err != nil {
		return "", apperrors.Join(apperrors.ErrStorage, err)
	}
	return id, nil
}

// Reset erases every preference except the installation ID.
func (p *Preferences) Reset() error {
	return kv.Delete(p.store, keyTheme, keyBiometricEnabled)
}
