package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/client"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.Logout(cmd.Context()); err != nil {
			return err
		}

		if err := client.DropSession(sessionPath); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Logged out.")
		return nil
	},
}
