// Package connectors provides access to the document corpus. The
// filesystem connector walks the configured source zones for markdown
// files and watches them for changes between index builds.
package connectors
