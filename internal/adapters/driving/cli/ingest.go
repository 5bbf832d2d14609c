package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Segment, chunk, and index one or more statute text files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	var failed int
	for _, path := range args {
		if err := ingestFile(ctx, cmd, path); err != nil {
			logger.Warn("%s: %v", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	report, err := ingestService.Ingest(ctx, string(raw), filepath.Base(path))
	if err != nil {
		return err
	}

	cmd.Printf("%s: indexed %d chunk(s) as %q\n", path, report.ChunkCount, report.Document.Name)
	if report.StructuralFallback {
		cmd.Printf("%s: no structural markers found, indexed as a single document\n", path)
	}
	return nil
}
