package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srolel/passkeep/internal/cryptox"
	"github.com/srolel/passkeep/internal/shared"
)

var searchSite string

func init() {
	searchCmd.Flags().StringVar(&searchSite, "site", "", "site to look up")
	_ = searchCmd.MarkFlagRequired("site")
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up stored credentials for a site",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		masterPassword, err := promptPassword("Master password")
		if err != nil {
			return err
		}
		key := cryptox.DeriveKey(masterPassword)
		shared.WipeByteArray(masterPassword)
		defer shared.WipeByteArray(key)

		creds, err := c.SearchCredentials(cmd.Context(), key, searchSite)
		if err != nil {
			return err
		}

		if len(creds) == 0 {
			cmd.Println("No credentials stored for " + searchSite + ".")
			return nil
		}

		for _, cred := range creds {
			cmd.Println(color.CyanString(cred.Site) + "  " + cred.Username + "  " + cred.Password)
		}
		return nil
	},
}
