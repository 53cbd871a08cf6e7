package ports

import "context"

// Actor usuario autenticado que origina la operación.
type Actor struct {
	UserID string
	Role   string
}

type actorKey struct{}

// WithActor guarda el actor en el contexto (lo hace el middleware de autenticación).
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext devuelve el actor, si existe.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
