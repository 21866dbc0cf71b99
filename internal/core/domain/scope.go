package domain

import (
	"fmt"
	"strings"
)

// Role is the resolved visibility tier of a caller.
type Role string

// Visibility tiers, most privileged last.
const (
	RolePublic  Role = "PUBLIC"
	RoleCreator Role = "CREATOR"
	RoleAdmin   Role = "ADMIN"
)

// ZoneConfig holds the independently configured source-tag sets per tier.
// A source tag is the first path segment of an indexed file.
type ZoneConfig struct {
	Public  []string
	Creator []string
	Admin   []string
}

// AllZones returns the ordered, de-duplicated union of every tier's zones.
// A rebuild walks this union so the index always covers every scope.
func (z ZoneConfig) AllZones() []string {
	var union []string
	seen := make(map[string]bool)
	for _, set := range [][]string{z.Creator, z.Admin, z.Public} {
		for _, zone := range set {
			zone = strings.TrimSpace(zone)
			if zone == "" || seen[zone] {
				continue
			}
			seen[zone] = true
			union = append(union, zone)
		}
	}
	return union
}

// AccessScope is the per-request visibility computed from caller roles.
// It is never persisted or cached across requests.
type AccessScope struct {
	// Role is the resolved tier.
	Role Role

	// AllowedSources is the ordered source-tag allow-list for retrieval.
	AllowedSources []string

	// RevealPaths permits disclosing real corpus paths in references.
	RevealPaths bool

	// CanReindex permits triggering a full rebuild.
	CanReindex bool
}

// ResolveScope maps caller roles to an access scope. Pure, no I/O.
// creator/test outrank admin/dev; anything else is PUBLIC.
func ResolveScope(roles []string, zones ZoneConfig) AccessScope {
	has := func(want ...string) bool {
		for _, role := range roles {
			role = strings.ToLower(strings.TrimSpace(role))
			for _, w := range want {
				if role == w {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("creator", "test"):
		return AccessScope{
			Role:           RoleCreator,
			AllowedSources: zones.Creator,
			RevealPaths:    true,
			CanReindex:     true,
		}
	case has("admin", "dev"):
		return AccessScope{
			Role:           RoleAdmin,
			AllowedSources: zones.Admin,
			RevealPaths:    true,
			CanReindex:     true,
		}
	default:
		return AccessScope{
			Role:           RolePublic,
			AllowedSources: zones.Public,
			RevealPaths:    false,
			CanReindex:     false,
		}
	}
}

// MapReferencesForScope applies disclosure rules to a reference set.
// When the scope does not reveal paths, each path becomes an ordinal
// placeholder, the route is cleared and the anchor dropped. The input
// slice is not mutated.
func MapReferencesForScope(refs []Reference, scope AccessScope) []Reference {
	if scope.RevealPaths {
		return refs
	}
	masked := make([]Reference, len(refs))
	for i, ref := range refs {
		ref.Path = fmt.Sprintf("Public card #%d", i+1)
		ref.Route = ""
		ref.Anchor = ""
		masked[i] = ref
	}
	return masked
}
