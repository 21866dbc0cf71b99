package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// Context keys
type contextKey string

const scopeContextKey contextKey = "access_scope"

// RolesHeader carries the caller's roles, resolved upstream. The value
// is a comma-separated list; absence means an anonymous public caller.
const RolesHeader = "X-Ax-Roles"

// ScopeMiddleware resolves the caller's access scope and enforces the
// deploy gate.
type ScopeMiddleware struct {
	enabled bool
	zones   domain.ZoneConfig
}

// NewScopeMiddleware creates a new ScopeMiddleware.
func NewScopeMiddleware(enabled bool, zones domain.ZoneConfig) *ScopeMiddleware {
	return &ScopeMiddleware{
		enabled: enabled,
		zones:   zones,
	}
}

// Resolve computes the access scope from the roles header and adds it
// to the request context. Missing or unknown roles resolve to PUBLIC,
// never to an error.
func (m *ScopeMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			writeError(w, http.StatusForbidden, "axchat_disabled")
			return
		}

		scope := domain.ResolveScope(parseRoles(r.Header.Get(RolesHeader)), m.zones)
		ctx := context.WithValue(r.Context(), scopeContextKey, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetScope retrieves the access scope from the request context. A
// request that skipped scope resolution gets the zero scope, which is
// PUBLIC with no allowed sources.
func GetScope(ctx context.Context) domain.AccessScope {
	if ctx == nil {
		return domain.AccessScope{Role: domain.RolePublic}
	}
	scope, ok := ctx.Value(scopeContextKey).(domain.AccessScope)
	if !ok {
		return domain.AccessScope{Role: domain.RolePublic}
	}
	return scope
}

// parseRoles splits the roles header into trimmed, non-empty tags.
func parseRoles(header string) []string {
	if header == "" {
		return nil
	}
	var roles []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, part)
		}
	}
	return roles
}

// Logging middleware

// LoggingMiddleware logs HTTP requests
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a new LoggingMiddleware
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Handler wraps an http.Handler with request logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recovery middleware

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Handler wraps an http.Handler with panic recovery
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				writeError(w, http.StatusInternalServerError, "internal_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
