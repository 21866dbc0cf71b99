package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/axchat/internal/core/ports/driving"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model and index status",
	Long: `Probes the generation service, reads the index build metadata and
prints both together with the caller's resolved scope.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	report, err := chatService.Status(context.Background(), callerScope())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputStatusTable(cmd, report)
	return nil
}

func outputStatusTable(cmd *cobra.Command, report *driving.StatusReport) {
	cmd.Printf("Model: %s @ %s\n", report.Model.Name, report.Model.Host)
	cmd.Printf("  online: %v, ready: %v\n", report.Model.Online, report.Model.Ready)
	if len(report.Model.Available) > 0 {
		cmd.Printf("  available: %s\n", strings.Join(report.Model.Available, ", "))
	}

	if report.Index.OK {
		cmd.Printf("Index: %s (built %s, %d sections, %d chunks)\n",
			report.Index.Version, report.Index.IndexedAt, report.Index.Documents, report.Index.Chunks)
	} else {
		cmd.Println("Index: not built")
	}

	if len(report.Sources) > 0 {
		cmd.Printf("Sources: %s\n", strings.Join(report.Sources, ", "))
	}

	cmd.Printf("Scope: %s (reveal paths: %v, reindex: %v)\n",
		report.Scope.Role, report.Scope.RevealPaths, report.Scope.CanReindex)

	for _, line := range report.HeartbeatLines {
		cmd.Printf("  %s\n", line)
	}
}
