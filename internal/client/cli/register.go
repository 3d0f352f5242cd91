package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/shared"
)

var (
	registerUsername string
	registerEmail    string
)

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account; a confirmation link is sent by mail",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(password)

		if err := c.Register(cmd.Context(), registerUsername, registerEmail, string(password)); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Registered. Check your mail for the confirmation link.")
		return nil
	},
}
