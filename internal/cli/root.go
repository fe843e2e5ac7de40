// Package cli implements the stepsctl commands: a terminal companion to the
// web client for the questionnaire, milestones, expenses and the sheet
// export.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"babysteps/internal/api"
	"babysteps/internal/api/rest"
	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
)

var (
	flagBaseURL string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stepsctl",
	Short: "Personal finance tracker CLI",
	Long:  "Track your Baby Steps, expenses and milestones from the terminal.",
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend base URL (overrides the stored one)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log backend calls")
}

// logger returns a quiet logger unless --verbose is set.
func logger() *log.Logger {
	out := io.Writer(io.Discard)
	if flagVerbose {
		out = os.Stderr
	}
	return log.New(log.Config{Output: out})
}

// session bundles what an authenticated command needs.
type session struct {
	backend backend.Backend
	creds   Credentials
	user    core.Profile
}

// ctx returns a context carrying the stored bearer token.
func (s *session) ctx() context.Context {
	return api.WithToken(context.Background(), s.creds.AccessToken)
}

// connect builds the REST backend from the stored credentials and verifies
// the token by fetching the profile.
func connect() (*session, error) {
	creds, err := LoadCredentials()
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, errors.New("not logged in, run `stepsctl login` first")
	}

	client, err := rest.New(resolveBaseURL(creds), 15*time.Second)
	if err != nil {
		return nil, err
	}

	s := &session{backend: client, creds: creds}
	user, err := client.GetUser(s.ctx(), creds.UserID)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, errors.New("stored token expired, run `stepsctl login` again")
		}
		return nil, fmt.Errorf("verify login: %w", err)
	}
	s.user = user
	return s, nil
}

// anonymousClient builds a REST backend for pre-login commands.
func anonymousClient() (*rest.Client, string, error) {
	creds, _ := LoadCredentials()
	base := resolveBaseURL(creds)
	client, err := rest.New(base, 15*time.Second)
	if err != nil {
		return nil, "", err
	}
	return client, base, nil
}

// resolveBaseURL picks the backend URL: flag, then env, then the stored
// credentials, then the local default.
func resolveBaseURL(creds Credentials) string {
	if flagBaseURL != "" {
		return flagBaseURL
	}
	if env := os.Getenv("BACKEND_BASE_URL"); env != "" {
		return env
	}
	if creds.BaseURL != "" {
		return creds.BaseURL
	}
	return "http://localhost:8000"
}
