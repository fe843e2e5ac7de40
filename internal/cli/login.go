package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"babysteps/internal/core"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store tokens locally",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored tokens",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ClearCredentials(); err != nil {
			return fmt.Errorf("clearing credentials: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := connect()
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", s.user.Username, s.user.Email)
		if s.user.Salary.Valid {
			fmt.Printf("Salary: %s\n", core.FormatDollars(s.user.Salary.Cents))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	var email, password string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	client, baseURL, err := anonymousClient()
	if err != nil {
		return err
	}

	result, err := client.Login(context.Background(), strings.TrimSpace(email), password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	creds := Credentials{
		BaseURL:      baseURL,
		Email:        result.User.Email,
		Username:     result.User.Username,
		UserID:       result.User.UserID,
		AccessToken:  result.Access,
		RefreshToken: result.Refresh,
	}
	if err := SaveCredentials(creds); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s. Tokens stored in %s\n", result.User.Username, CredentialsPath())
	return nil
}
