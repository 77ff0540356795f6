package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/linkedin-ingest/internal/ingest"
)

var (
	ingestNoEnrich bool
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <linkedin-profile-url>",
	Short: "Ingest a single LinkedIn profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		enriched, err := env.Orchestrator.Process(ctx, ingest.Request{
			ProfileURL: args[0],
			Enrich:     !ingestNoEnrich,
		})
		if err != nil {
			return eris.Wrap(err, "ingest")
		}

		if ingestJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(enriched)
		}

		p := enriched.Profile
		fmt.Printf("Ingested %s (%s)\n", p.FullName, p.ProfileID)
		fmt.Printf("  headline:    %s\n", p.Headline)
		fmt.Printf("  experiences: %d\n", len(p.Experiences))
		fmt.Printf("  educations:  %d\n", len(p.Educations))
		fmt.Printf("  companies:   %d/%d resolved\n", enriched.CompanyCount(), len(enriched.CompanyURLs))
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoEnrich, "no-enrich", false, "skip company enrichment")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the full enriched profile as JSON")
	rootCmd.AddCommand(ingestCmd)
}
