// Package filesystem provides the local-disk corpus connector.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// Directory names never descended into during corpus walks.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
}

var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Corpus reads markdown files from a root directory on local disk.
// It implements the driven.Corpus interface.
type Corpus struct {
	root string
}

// New creates a corpus rooted at the given directory.
func New(root string) *Corpus {
	return &Corpus{root: filepath.Clean(root)}
}

// Root returns the corpus root directory.
func (c *Corpus) Root() string {
	return c.root
}

// ListFiles walks each zone directory under the root and returns every
// markdown file found, as slash-separated paths relative to the root.
// Hidden entries and build directories are skipped; zones that do not
// exist are ignored.
func (c *Corpus) ListFiles(ctx context.Context, zones []string) ([]driven.CorpusFile, error) {
	var files []driven.CorpusFile

	for _, zone := range resolveZones(c.root, zones) {
		zoneDir := filepath.Join(c.root, zone)
		err := filepath.WalkDir(zoneDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			name := entry.Name()
			if entry.IsDir() {
				if path != zoneDir && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return nil
			}
			if !markdownExts[strings.ToLower(filepath.Ext(name))] {
				return nil
			}

			rel, err := filepath.Rel(c.root, path)
			if err != nil {
				return fmt.Errorf("relativising corpus path: %w", err)
			}
			files = append(files, driven.CorpusFile{RelPath: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking corpus zone %q: %w", zone, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// ReadFile returns the contents of a corpus-relative path. Paths that
// escape the root are rejected.
func (c *Corpus) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := ResolveLocalPath(c.root, relPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %q: %w", relPath, err)
	}
	return data, nil
}

// resolveZones deduplicates the zone list and keeps only entries that
// exist as directories under the root, preserving order.
func resolveZones(root string, zones []string) []string {
	var resolved []string
	seen := make(map[string]bool)
	for _, zone := range zones {
		zone = strings.TrimSpace(zone)
		if zone == "" || seen[zone] {
			continue
		}
		seen[zone] = true
		info, err := os.Stat(filepath.Join(root, zone))
		if err != nil || !info.IsDir() {
			continue
		}
		resolved = append(resolved, zone)
	}
	return resolved
}

var _ driven.Corpus = (*Corpus)(nil)
