package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the retrieval index from the corpus",
	Long: `Walks every configured corpus zone, chunks each markdown file and
replaces the whole retrieval index in one transaction. Requires a scope
that permits reindexing.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	start := time.Now()
	result, err := indexService.Rebuild(context.Background(), callerScope())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Indexed %d sections, %d chunks in %v\n",
		result.Documents, result.Chunks, time.Since(start).Round(time.Millisecond))
	return nil
}
