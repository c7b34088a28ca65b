package format

import "context"

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the name recorded in created_by / updated_by.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the audit actor, or nil when none is set.
func ActorFromContext(ctx context.Context) *string {
	if a, ok := ctx.Value(actorKey).(string); ok && a != "" {
		return &a
	}
	return nil
}
