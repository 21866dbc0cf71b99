package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// ResolveLocalPath joins a corpus-relative path onto the root and
// rejects anything that would resolve outside it. Absolute paths,
// parent traversal, and backslash separators are all refused.
func ResolveLocalPath(root, relPath string) (string, error) {
	if relPath == "" ||
		strings.Contains(relPath, "..") ||
		strings.Contains(relPath, "\\") ||
		strings.HasPrefix(relPath, "/") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, relPath)
	}

	full := filepath.Join(root, filepath.FromSlash(relPath))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, relPath)
	}
	return full, nil
}
