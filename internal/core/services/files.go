package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// FileService serves raw corpus files to privileged scopes.
type FileService struct {
	corpus driven.Corpus
}

// NewFileService creates the file-fetch service.
func NewFileService(corpus driven.Corpus) *FileService {
	return &FileService{corpus: corpus}
}

// Fetch returns the raw text of a corpus-relative path. Traversal
// attempts are forbidden, as are paths whose top-level zone is outside
// the caller's allowed source set.
func (s *FileService) Fetch(ctx context.Context, scope domain.AccessScope, relPath string) (string, error) {
	if !scope.RevealPaths {
		return "", fmt.Errorf("%w: file access requires a privileged scope", domain.ErrForbidden)
	}

	path := sanitizeText(relPath, maxMessageLen)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidPath)
	}
	if strings.Contains(path, "..") || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return "", fmt.Errorf("%w: %q", domain.ErrForbidden, path)
	}

	zone, _, _ := strings.Cut(path, "/")
	if !zoneAllowed(zone, scope.AllowedSources) {
		return "", fmt.Errorf("%w: zone %q outside scope", domain.ErrForbidden, zone)
	}

	data, err := s.corpus.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return string(data), nil
}

func zoneAllowed(zone string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.TrimSpace(candidate) == zone {
			return true
		}
	}
	return false
}
