package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/shared"
)

var loginUsername string

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	_ = loginCmd.MarkFlagRequired("username")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		password, err := promptPassword("Password")
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(password)

		if err := c.Login(cmd.Context(), loginUsername, string(password)); err != nil {
			return err
		}

		if err := c.SaveSession(sessionPath); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Logged in.")
		return nil
	},
}
