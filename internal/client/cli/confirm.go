package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var confirmToken string

func init() {
	confirmCmd.Flags().StringVarP(&confirmToken, "token", "t", "", "activation token from the confirmation mail")
	_ = confirmCmd.MarkFlagRequired("token")
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Activate an account with the mailed token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.Confirm(cmd.Context(), confirmToken); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Account activated. You can log in now.")
		return nil
	},
}
