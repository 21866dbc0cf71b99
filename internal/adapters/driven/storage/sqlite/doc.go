// Package sqlite provides the SQLite FTS5 implementation of the retrieval index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunk content lives in an FTS5 virtual
// table; reference metadata (path, title, anchor, route, excerpt, source) lives in a
// plain table joined by rowid. Searches are prefix-token MATCH queries ranked by
// bm25, lowest score first.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.axchat/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Replace runs in a single transaction, so readers never
// observe a half-built index.
package sqlite
