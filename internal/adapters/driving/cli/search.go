package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

var (
	searchTopK    int
	searchDocType string
	searchStatus  string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed statutes",
	Long: `Embeds the query and returns the closest chunks by cosine distance.
Results can be restricted to a document type or status.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVar(&searchDocType, "doc-type", "", "restrict to a document type (law, decree, circular)")
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "restrict to a document status (active, superseded)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		TopK:    searchTopK,
		DocType: domain.DocumentType(searchDocType),
		Status:  domain.DocumentStatus(searchStatus),
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Document, location (distance)
		cmd.Printf("  [%d] %s, %s (%.4f)\n", i+1, results[i].Metadata.DocName, locationOf(results[i].Metadata), results[i].Distance)
		cmd.Printf("      %s\n", snippetOf(results[i].Text))
		cmd.Println()
	}

	return nil
}

// locationOf renders the hierarchical position of a chunk for display.
func locationOf(m domain.ChunkMetadata) string {
	var parts []string
	if m.Article != "" {
		parts = append(parts, m.Article)
	}
	if m.Clause != "" {
		parts = append(parts, "Clause "+m.Clause)
	}
	if m.Point != "" {
		parts = append(parts, "Point "+m.Point)
	}
	if len(parts) == 0 {
		return "preamble"
	}
	return strings.Join(parts, ", ")
}

const snippetMaxRunes = 160

func snippetOf(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return string(runes[:snippetMaxRunes]) + "..."
}
