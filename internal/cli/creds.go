package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Credentials is what login stores on disk. The file holds live tokens, so
// it is written 0600.
type Credentials struct {
	BaseURL      string `toml:"base_url,omitempty"`
	Email        string `toml:"email,omitempty"`
	Username     string `toml:"username,omitempty"`
	UserID       int64  `toml:"user_id,omitempty"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
}

// configDir returns the XDG-compliant config directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepsctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stepsctl")
}

// CredentialsPath returns the full path to the credentials file.
func CredentialsPath() string {
	return filepath.Join(configDir(), "credentials.toml")
}

// LoadCredentials reads the stored credentials, returning zero values when
// no file exists.
func LoadCredentials() (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(CredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading credentials: %w", err)
	}
	if err := toml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parsing credentials: %w", err)
	}
	return creds, nil
}

// SaveCredentials writes the credentials to disk.
func SaveCredentials(creds Credentials) error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(CredentialsPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating credentials file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(creds)
}

// ClearCredentials removes the stored credentials file.
func ClearCredentials() error {
	err := os.Remove(CredentialsPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
