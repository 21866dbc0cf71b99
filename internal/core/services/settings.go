package services

import (
	"time"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// Config keys for settings storage.
const (
	keyEnabled           = "axchat.enabled"
	keyProvider          = "axchat.provider"
	keyModel             = "axchat.model"
	keyHost              = "axchat.host"
	keyAPIKey            = "axchat.api_key"
	keyTimeoutMS         = "axchat.timeout_ms"
	keyTopK              = "axchat.top_k"
	keyChunkSize         = "axchat.chunk_size"
	keyChunkOverlap      = "axchat.chunk_overlap"
	keyIndexPath         = "axchat.index_path"
	keyCorpusRoot        = "axchat.corpus_root"
	keyHeartbeat         = "axchat.heartbeat"
	keyRequestsPerMinute = "axchat.requests_per_minute"
	keyZonesPublic       = "axchat.zones.public"
	keyZonesCreator      = "axchat.zones.creator"
	keyZonesAdmin        = "axchat.zones.admin"
)

// Settings is the resolved axchat configuration.
type Settings struct {
	// Enabled is the deploy gate; when false every endpoint answers
	// with a disabled error.
	Enabled bool

	// Provider selects the generation backend (default: ollama).
	Provider string

	Model             string
	Host              string
	APIKey            string
	Timeout           time.Duration
	TopK              int
	ChunkSize         int
	ChunkOverlap      int
	IndexPath         string
	CorpusRoot        string
	Heartbeat         bool
	RequestsPerMinute int
	Zones             domain.ZoneConfig
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Enabled:      true,
		Provider:     "ollama",
		Model:        "llama3.2",
		Host:         "http://localhost:11434",
		Timeout:      60 * time.Second,
		TopK:         4,
		ChunkSize:    1000,
		ChunkOverlap: 120,
		Heartbeat:    false,
		Zones: domain.ZoneConfig{
			Public:  []string{"export"},
			Creator: []string{"export", "content-src", "content"},
			Admin:   []string{"export", "content"},
		},
	}
}

// LoadSettings reads axchat configuration from the store, falling back
// to defaults for absent keys.
func LoadSettings(store driven.ConfigStore) Settings {
	s := DefaultSettings()

	if _, ok := store.Get(keyEnabled); ok {
		s.Enabled = store.GetBool(keyEnabled)
	}
	if v := store.GetString(keyProvider); v != "" {
		s.Provider = v
	}
	if v := store.GetString(keyModel); v != "" {
		s.Model = v
	}
	if v := store.GetString(keyHost); v != "" {
		s.Host = v
	}
	if v := store.GetString(keyAPIKey); v != "" {
		s.APIKey = v
	}
	if v := store.GetInt(keyTimeoutMS); v > 0 {
		s.Timeout = time.Duration(v) * time.Millisecond
	}
	if v := store.GetInt(keyTopK); v > 0 {
		s.TopK = v
	}
	if v := store.GetInt(keyChunkSize); v > 0 {
		s.ChunkSize = v
	}
	if v := store.GetInt(keyChunkOverlap); v >= 0 {
		if _, ok := store.Get(keyChunkOverlap); ok {
			s.ChunkOverlap = v
		}
	}
	if v := store.GetString(keyIndexPath); v != "" {
		s.IndexPath = v
	}
	if v := store.GetString(keyCorpusRoot); v != "" {
		s.CorpusRoot = v
	}
	if _, ok := store.Get(keyHeartbeat); ok {
		s.Heartbeat = store.GetBool(keyHeartbeat)
	}
	if v := store.GetInt(keyRequestsPerMinute); v > 0 {
		s.RequestsPerMinute = v
	}
	if v := store.GetStringSlice(keyZonesPublic); v != nil {
		s.Zones.Public = v
	}
	if v := store.GetStringSlice(keyZonesCreator); v != nil {
		s.Zones.Creator = v
	}
	if v := store.GetStringSlice(keyZonesAdmin); v != nil {
		s.Zones.Admin = v
	}

	// Overlap must leave room for forward progress.
	if s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = s.ChunkSize / 4
	}

	return s
}
