package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
	"github.com/custodia-labs/axchat/internal/logger"
)

// Services used by the commands, wired by Execute before any command runs.
var (
	chatService  driving.ChatService
	indexService driving.IndexService

	zoneConfig domain.ZoneConfig
	serveFn    func() error
	version    = "dev"
)

var (
	verbose   bool
	rolesFlag string
)

// Config carries the wired services and callbacks into the CLI.
type Config struct {
	ChatService  driving.ChatService
	IndexService driving.IndexService
	Zones        domain.ZoneConfig
	Serve        func() error
	Version      string
}

var rootCmd = &cobra.Command{
	Use:   "axchat",
	Short: "Grounded Q&A over a private markdown corpus",
	Long: `Axchat answers natural-language questions over a private markdown
corpus, grounding every answer strictly in retrieved text and enforcing
role-based visibility over which parts of the corpus a caller may see.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rolesFlag, "roles", "creator", "comma-separated caller roles")
}

// Execute wires the services and runs the root command.
func Execute(cfg Config) error {
	chatService = cfg.ChatService
	indexService = cfg.IndexService
	zoneConfig = cfg.Zones
	serveFn = cfg.Serve
	if cfg.Version != "" {
		version = cfg.Version
	}
	return rootCmd.Execute()
}

// callerScope resolves the --roles flag into an access scope.
func callerScope() domain.AccessScope {
	var roles []string
	for _, role := range strings.Split(rolesFlag, ",") {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	return domain.ResolveScope(roles, zoneConfig)
}
