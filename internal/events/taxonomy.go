package events

import "strings"

// EntityType represents the canonical entity types the engine syncs.
type EntityType string

// Canonical entity types
const (
	EntityBookings EntityType = "bookings"
	EntityRoutes   EntityType = "routes"
	EntityProfile  EntityType = "profile"
)

// AllEntityTypes returns all valid entity types.
func AllEntityTypes() map[EntityType]bool {
	return map[EntityType]bool{
		EntityBookings: true,
		EntityRoutes:   true,
		EntityProfile:  true,
	}
}

// IsValidEntityType checks if the given entity type string is valid.
func IsValidEntityType(et string) bool {
	return AllEntityTypes()[EntityType(et)]
}

// NormalizeEntityType normalizes an entity type string to its canonical form.
// Returns the canonical entity type and true if valid.
func NormalizeEntityType(et string) (EntityType, bool) {
	switch strings.ToLower(strings.TrimSpace(et)) {
	case "booking", "bookings":
		return EntityBookings, true
	case "route", "routes":
		return EntityRoutes, true
	case "profile", "profiles":
		return EntityProfile, true
	default:
		return "", false
	}
}
