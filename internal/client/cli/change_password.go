package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/shared"
)

var changePasswordToken string

func init() {
	changePasswordCmd.Flags().StringVarP(&changePasswordToken, "token", "t", "", "recovery token from the mail")
	_ = changePasswordCmd.MarkFlagRequired("token")
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Set a new password with a recovery token",
	Long: "Set a new password with a recovery token. Stored credentials were " +
		"encrypted with a key derived from the old password; remember it if " +
		"you still need them.",
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

		if err := c.ChangePassword(cmd.Context(), changePasswordToken, string(password)); err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Password changed. Log in with the new password.")
		return nil
	},
}
