package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var forgotEmail string

func init() {
	forgotPasswordCmd.Flags().StringVarP(&forgotEmail, "email", "e", "", "account email")
	_ = forgotPasswordCmd.MarkFlagRequired("email")
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password recovery link by mail",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.ForgotPassword(cmd.Context(), forgotEmail); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " If the address is registered, a recovery link was sent.")
		return nil
	},
}
