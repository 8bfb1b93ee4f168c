package auth

import "net/http"

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyActor is the key for the authenticated subject in the context
	ContextKeyActor ContextKey = "actor"
	// ContextKeyRole is the key for the subject's role in the context
	ContextKeyRole ContextKey = "role"
)

// RoleAdmin marks tokens allowed through the admin mutation surface.
const RoleAdmin = "admin"

// GetActor retrieves the authenticated subject from the request context.
func GetActor(r *http.Request) string {
	if actor, ok := r.Context().Value(ContextKeyActor).(string); ok {
		return actor
	}
	return ""
}

// GetRole retrieves the authenticated subject's role from the request context.
func GetRole(r *http.Request) string {
	if role, ok := r.Context().Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// IsAdmin checks whether the authenticated subject has the admin role.
func IsAdmin(r *http.Request) bool {
	return GetRole(r) == RoleAdmin
}
