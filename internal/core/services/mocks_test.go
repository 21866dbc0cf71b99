package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockIndex implements driven.RetrievalIndex for testing. Results are
// keyed by exact query string; unkeyed queries return nothing.
type mockIndex struct {
	results     map[string][]domain.Reference
	searchErr   error
	replaceErr  error
	status      domain.IndexStatus
	statusErr   error
	searchCalls []string
	replaced    []domain.Chunk
	lastBuild   domain.BuildResult
	lastSources []string
}

func (m *mockIndex) Replace(_ context.Context, chunks []domain.Chunk, build domain.BuildResult) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = chunks
	m.lastBuild = build
	return nil
}

func (m *mockIndex) Search(_ context.Context, query string, _ int, allowedSources []string) ([]domain.Reference, error) {
	m.searchCalls = append(m.searchCalls, query)
	m.lastSources = allowedSources
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results[query], nil
}

func (m *mockIndex) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.statusErr
}

func (m *mockIndex) Close() error { return nil }

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	reply     string
	chatErr   error
	probe     domain.ModelStatus
	model     string
	chatCalls int
	lastMsgs  []driven.ChatMessage
}

func (m *mockGenerator) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.GenerateOptions) (string, error) {
	m.chatCalls++
	m.lastMsgs = messages
	return m.reply, m.chatErr
}

func (m *mockGenerator) Probe(_ context.Context) domain.ModelStatus {
	return m.probe
}

func (m *mockGenerator) ModelName() string {
	if m.model == "" {
		return "llama3.2"
	}
	return m.model
}

func (m *mockGenerator) Host() string { return "http://localhost:11434" }

func (m *mockGenerator) Close() error { return nil }

// mockPrompts implements driven.PromptStore for testing.
type mockPrompts struct{}

func (mockPrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptChatSystem:
		return "системный промпт", nil
	case driven.PromptAnswer:
		return "CONTEXT:\n%s\n\nQUESTION:\n%s\n\nANSWER:", nil
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}

func (mockPrompts) Reload() {}

// mockCorpus implements driven.Corpus for testing.
type mockCorpus struct {
	files     map[string]string // relPath -> content
	order     []string
	listErr   error
	readErr   map[string]error
	listZones []string
}

func (m *mockCorpus) ListFiles(_ context.Context, zones []string) ([]driven.CorpusFile, error) {
	m.listZones = zones
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []driven.CorpusFile
	for _, rel := range m.order {
		out = append(out, driven.CorpusFile{RelPath: rel})
	}
	return out, nil
}

func (m *mockCorpus) ReadFile(_ context.Context, relPath string) ([]byte, error) {
	if err := m.readErr[relPath]; err != nil {
		return nil, err
	}
	content, ok := m.files[relPath]
	if !ok {
		return nil, fmt.Errorf("no such file %q", relPath)
	}
	return []byte(content), nil
}

func (m *mockCorpus) Root() string { return "/corpus" }

// mockWatcher implements driven.CorpusWatcher for testing.
type mockWatcher struct {
	dirty      bool
	watchCalls int
	watchErr   error
}

func (m *mockWatcher) Watch(_ []string) error {
	m.watchCalls++
	if m.watchErr != nil {
		return m.watchErr
	}
	m.dirty = false
	return nil
}

func (m *mockWatcher) Dirty() bool { return m.dirty }

func (m *mockWatcher) Close() error { return nil }

// --- Shared fixtures ---

func creatorScope() domain.AccessScope {
	return domain.AccessScope{
		Role:           domain.RoleCreator,
		AllowedSources: []string{"export", "content"},
		RevealPaths:    true,
		CanReindex:     true,
	}
}

func publicScope() domain.AccessScope {
	return domain.AccessScope{
		Role:           domain.RolePublic,
		AllowedSources: []string{"export"},
	}
}

func ref(path string) domain.Reference {
	score := 1.5
	return domain.Reference{
		Title:   "Title",
		Path:    path,
		Route:   "/api/axchat/file?path=" + path,
		Anchor:  "section",
		Excerpt: "excerpt text",
		Score:   &score,
	}
}
