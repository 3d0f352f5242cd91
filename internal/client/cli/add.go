package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/client"
	"github.com/srolel/passkeep/internal/cryptox"
	"github.com/srolel/passkeep/internal/shared"
)

var (
	addSite         string
	addSiteUsername string
)

func init() {
	addCmd.Flags().StringVar(&addSite, "site", "", "site the credential belongs to")
	addCmd.Flags().StringVarP(&addSiteUsername, "username", "u", "", "username for the site")
	_ = addCmd.MarkFlagRequired("site")
	_ = addCmd.MarkFlagRequired("username")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a credential, encrypted with your master password",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		sitePassword, err := promptPassword("Site password")
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(sitePassword)

		masterPassword, err := promptPassword("Master password")
		if err != nil {
			return err
		}
		key := cryptox.DeriveKey(masterPassword)
		shared.WipeByteArray(masterPassword)
		defer shared.WipeByteArray(key)

		err = c.AddCredential(cmd.Context(), key, client.Credential{
			Site:     addSite,
			Username: addSiteUsername,
			Password: string(sitePassword),
		})
		if err != nil {
			return err
		}

		cmd.Println(color.GreenString("✓") + " Credential stored for " + addSite + ".")
		return nil
	},
}
