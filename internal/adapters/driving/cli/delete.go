package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [document-name]",
	Short: "Remove all chunks of a document from the index",
	Long: `Deletes every chunk belonging to the named document. The name must
match the document name shown by 'lexsearch stats'. Re-ingesting the
same file afterwards rebuilds the document from scratch.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	docName := args[0]
	if err := adminService.DeleteByDocument(context.Background(), docName); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %q from the index.\n", docName)
	return nil
}
