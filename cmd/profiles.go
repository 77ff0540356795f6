package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	profilesLimit  int
	profilesOffset int
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List stored canonical profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		profiles, err := env.Store.ListProfiles(cmd.Context(), profilesLimit, profilesOffset)
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("no profiles stored")
			return nil
		}
		for _, p := range profiles {
			fmt.Printf("%-24s %-30s %s\n", p.ProfileID, p.FullName, p.LinkedInURL)
		}
		return nil
	},
}

func init() {
	profilesCmd.Flags().IntVar(&profilesLimit, "limit", 50, "max profiles to list")
	profilesCmd.Flags().IntVar(&profilesOffset, "offset", 0, "listing offset")
	rootCmd.AddCommand(profilesCmd)
}
