package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the JSON API and blocks until interrupted. Caller roles are
taken from the X-Ax-Roles header on each request; the --roles flag has no
effect on served traffic.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if serveFn == nil {
		return errors.New("server not configured")
	}
	return serveFn()
}
