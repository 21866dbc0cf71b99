package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/axchat/internal/adapters/driven/ai"
	fileconfig "github.com/custodia-labs/axchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/axchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/axchat/internal/adapters/driving/cli"
	axhttp "github.com/custodia-labs/axchat/internal/adapters/driving/http"
	"github.com/custodia-labs/axchat/internal/connectors/filesystem"
	"github.com/custodia-labs/axchat/internal/core/services"
	"github.com/custodia-labs/axchat/internal/normalisers/markdown"
	"github.com/custodia-labs/axchat/internal/postprocessors/chunker"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := fileconfig.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settings := services.LoadSettings(configStore)

	promptStore, err := fileconfig.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	index, err := sqlite.NewStore(settings.IndexPath)
	if err != nil {
		return fmt.Errorf("opening retrieval index: %w", err)
	}
	defer index.Close()

	generator, err := ai.CreateGenerator(ai.GeneratorSettings{
		Provider:          settings.Provider,
		Model:             settings.Model,
		Host:              settings.Host,
		APIKey:            settings.APIKey,
		Timeout:           settings.Timeout,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer generator.Close()

	corpusRoot := settings.CorpusRoot
	if corpusRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving corpus root: %w", err)
		}
		corpusRoot = filepath.Join(home, ".axchat", "corpus")
	}
	corpus := filesystem.New(corpusRoot)

	watcher := filesystem.NewWatcher(corpusRoot)
	defer watcher.Close()
	// A failed initial watch only disables staleness hints.
	_ = watcher.Watch(settings.Zones.AllZones())

	chatService := services.NewChatService(index, generator, promptStore,
		services.WithTopK(settings.TopK),
		services.WithHeartbeat(settings.Heartbeat),
		services.WithWatcher(watcher),
	)
	indexService := services.NewIndexService(
		corpus,
		index,
		markdown.New(),
		chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		),
		settings.Zones,
		services.WithIndexWatcher(watcher),
	)
	fileService := services.NewFileService(corpus)

	serverConfig := axhttp.DefaultConfig()
	serverConfig.Enabled = settings.Enabled
	serverConfig.Zones = settings.Zones
	server := axhttp.NewServer(serverConfig, chatService, indexService, fileService)

	return cli.Execute(cli.Config{
		ChatService:  chatService,
		IndexService: indexService,
		Zones:        settings.Zones,
		Serve:        server.Start,
		Version:      version,
	})
}
