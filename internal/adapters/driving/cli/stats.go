package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	stats, err := adminService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Total chunks: %d\n", stats.TotalChunks)
	if len(stats.Documents) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println()
	cmd.Println("Documents:")
	for _, doc := range stats.Documents {
		cmd.Printf("  %s\n", doc.Name)
		cmd.Printf("      Type: %s  Status: %s  Chunks: %d\n", doc.Type, doc.Status, doc.ChunkCount)
		if doc.SourceID != "" {
			cmd.Printf("      Source ID: %s\n", doc.SourceID)
		}
		if doc.EffectiveDate != nil {
			cmd.Printf("      Effective: %s\n", doc.EffectiveDate.Format("2006-01-02"))
		}
	}
	return nil
}
