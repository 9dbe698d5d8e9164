package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jrsteele09/go-admin-client/api"
	"github.com/jrsteele09/go-admin-client/internal/app"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/preferences"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(current func() *app.App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Example: `  adminctl login -u admin -p secret
  ADMIN_PASSWORD=secret adminctl login -u admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}

			var result error
			for r := range current().Account.LoginAsync(cmd.Context(), username, password) {
				r.Match(
					func() { fmt.Fprintf(cmd.ErrOrStderr(), "Logging in as %s...\n", username) },
					func(s session.Session) { fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(s.Username, s.DisplayName)) },
					func(string, int) { result = r.Err() },
				)
			}
			return result
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (defaults to $ADMIN_PASSWORD)")
	return cmd
}

func newLogoutCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session on the server and erase it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := current().Account.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := current().Account.Session()
			out := cmd.OutOrStdout()
			if !s.IsLoggedIn() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "User:    %s\n", displayName(s.Username, s.DisplayName))
			if !s.ExpiresAt.IsZero() {
				state := "valid"
				if s.Expired(time.Now()) {
					state = "expired, refreshed on next call"
				}
				fmt.Fprintf(out, "Expires: %s (%s)\n", s.ExpiresAt.Local().Format(time.RFC1123), state)
			}
			return nil
		},
	}
}

func newGetCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "get <path>",
		Short:   "GET a path relative to the API base URL and print the JSON response",
		Example: "  adminctl get users/42",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := api.Get[json.RawMessage](cmd.Context(), current().API, args[0])
			body, ok := result.Value()
			if !ok {
				return result.Err()
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, body, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
}

func newVerdictCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "verdict",
		Short: "Run the device integrity checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := current().Integrity.Check()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rooted:             %t\n", v.Rooted)
			fmt.Fprintf(out, "Emulator:           %t\n", v.Emulator)
			fmt.Fprintf(out, "Debugger attached:  %t\n", v.DebuggerAttached)
			fmt.Fprintf(out, "Signature tampered: %t\n", v.SignatureTampered)
			if v.IsCompromised() {
				return &apperrors.SecurityViolationError{Reasons: v.Reasons}
			}
			fmt.Fprintln(out, "Device trusted")
			return nil
		},
	}
}

func newPrefsCmd(current func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show local preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := current().Preferences
			id, err := prefs.InstallationID()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Theme:           %s\n", prefs.Theme())
			fmt.Fprintf(out, "Biometric login: %t\n", prefs.BiometricEnabled())
			fmt.Fprintf(out, "Installation ID: %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "theme <system|light|dark>",
		Short:     "Set the UI theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(preferences.ThemeSystem), string(preferences.ThemeLight), string(preferences.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := preferences.ParseTheme(args[0])
			if err != nil {
				return err
			}
			return current().Preferences.SetTheme(theme)
		},
	}, &cobra.Command{
		Use:   "biometric <true|false>",
		Short: "Enable or disable biometric login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("biometric: %w", err)
			}
			return current().Preferences.SetBiometricEnabled(enabled)
		},
	})
	return cmd
}

func displayName(username, display string) string {
	if display == "" {
		return username
	}
	return fmt.Sprintf("%s (%s)", display, username)
}
