package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rotate the session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		username, err := c.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		if err := c.SaveSession(sessionPath); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Session refreshed for " + username + ".")
		return nil
	},
}
