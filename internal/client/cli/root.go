// Package cli implements the command-line client: account commands,
// session commands, and encrypted credential storage.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/client"
)

var (
	serverURL   string
	sessionPath string
)

var rootCmd = &cobra.Command{
	Use:           "passkeep",
	Short:         "Password keeper with client-side encryption",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "server base URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "session file")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(changePasswordCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".passkeep", "session.json")
}

// newClient builds an API client with any saved session restored.
func newClient() (*client.Client, error) {
	c, err := client.New(serverURL)
	if err != nil {
		return nil, err
	}
	if err := c.LoadSession(sessionPath); err != nil {
		return nil, err
	}
	return c, nil
}

func Execute() error {
	return rootCmd.Execute()
}
