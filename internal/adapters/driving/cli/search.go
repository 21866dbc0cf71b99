package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the retrieval index",
	Long: `Performs a scoped full-text search over the indexed corpus and
prints the ranked references. No answer is generated; use this to inspect
what the orchestrator would retrieve for a question.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	refs, err := chatService.Search(context.Background(), callerScope(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, refs)
	}

	return outputSearchTable(cmd, refs)
}

func outputSearchJSON(cmd *cobra.Command, refs []domain.Reference) error {
	if refs == nil {
		refs = []domain.Reference{}
	}
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, refs []domain.Reference) error {
	if len(refs) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, ref := range refs {
		if ref.Score != nil {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, ref.Title, *ref.Score)
		} else {
			cmd.Printf("  [%d] %s\n", i+1, ref.Title)
		}
		location := ref.Path
		if ref.Anchor != "" {
			location += "#" + ref.Anchor
		}
		cmd.Printf("      %s\n", location)
		if ref.Excerpt != "" {
			cmd.Printf("      %s\n", ref.Excerpt)
		}
		cmd.Println()
	}

	return nil
}
