// Package identity carries the authenticated actor through request contexts.
// Token issuance lives with the identity provider; this service only verifies
// role-tagged tokens and consumes the resulting (subject, role) pair.
package identity

import "context"

// Roles recognised by the platform.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Actor is the verified subject and permission class of a request.
type Actor struct {
	ID   string
	Role string
}

type ctxKey string

const actorKey ctxKey = "clinicore.actor"

// WithActor stores the actor in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the actor if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	actor, ok := val.(Actor)
	return actor, ok && actor.ID != ""
}

// ValidRole reports whether the role is one the platform understands.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
