package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

func TestReindexCmd_Use(t *testing.T) {
	assert.Equal(t, "reindex", reindexCmd.Use)
}

func TestReindexCmd_PrintsBuildSummary(t *testing.T) {
	index := &mockIndexService{
		result: &domain.BuildResult{
			IndexedAt: time.Now().UTC(),
			Documents: 12,
			Chunks:    40,
		},
	}
	cleanup := setupTestServices(&mockChatService{}, index)
	defer cleanup()

	buf, err := execute(t, "reindex")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleCreator, index.lastScope.Role)
	assert.Contains(t, buf.String(), "Indexed 12 sections, 40 chunks")
}

func TestReindexCmd_PropagatesForbidden(t *testing.T) {
	index := &mockIndexService{rebuildErr: domain.ErrForbidden}
	cleanup := setupTestServices(&mockChatService{}, index)
	defer cleanup()

	_, err := execute(t, "reindex", "--roles", "viewer")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	cleanup := setupTestServices(&mockChatService{}, &mockIndexService{})
	defer cleanup()

	oldVersion := version
	version = "1.2.3"
	defer func() { version = oldVersion }()

	buf, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "axchat version 1.2.3")
}
