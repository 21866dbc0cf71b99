package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
)

func statusReport() *driving.StatusReport {
	return &driving.StatusReport{
		Model: driving.ModelReport{
			Name:      "llama3.2",
			Host:      "http://localhost:11434",
			Online:    true,
			Ready:     true,
			Available: []string{"llama3.2", "qwen2.5"},
		},
		Index: domain.IndexStatus{
			OK:        true,
			IndexedAt: "2026-03-14T09:00:00Z",
			Version:   "fts5-v1",
			Documents: 12,
			Chunks:    40,
		},
		Sources: []string{"export", "content"},
		Scope: driving.ScopeReport{
			Role:        domain.RoleCreator,
			RevealPaths: true,
			CanReindex:  true,
		},
		HeartbeatLines: []string{"индекс устарел, пересоберите"},
	}
}

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Use)
}

func TestStatusCmd_PrintsReport(t *testing.T) {
	chat := &mockChatService{report: statusReport()}
	cleanup := setupTestServices(chat, &mockIndexService{})
	defer cleanup()

	buf, err := execute(t, "status")

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Model: llama3.2 @ http://localhost:11434")
	assert.Contains(t, out, "online: true, ready: true")
	assert.Contains(t, out, "available: llama3.2, qwen2.5")
	assert.Contains(t, out, "Index: fts5-v1 (built 2026-03-14T09:00:00Z, 12 sections, 40 chunks)")
	assert.Contains(t, out, "Sources: export, content")
	assert.Contains(t, out, "Scope: CREATOR")
	assert.Contains(t, out, "индекс устарел")
}

func TestStatusCmd_UnbuiltIndex(t *testing.T) {
	report := statusReport()
	report.Index = domain.IndexStatus{}
	chat := &mockChatService{report: report}
	cleanup := setupTestServices(chat, &mockIndexService{})
	defer cleanup()

	buf, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Index: not built")
}

func TestStatusCmd_JSONOutput(t *testing.T) {
	chat := &mockChatService{report: statusReport()}
	cleanup := setupTestServices(chat, &mockIndexService{})
	defer cleanup()
	defer func() { statusJSON = false }()

	buf, err := execute(t, "status", "--json")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"version": "fts5-v1"`)
	assert.Contains(t, buf.String(), `"can_reindex": true`)
}
