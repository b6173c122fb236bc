package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/scope"
)

var (
	// ErrUnauthorized indicates invalid or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Resolver resolves a principal from a bearer token.
type Resolver interface {
	ResolvePrincipal(ctx context.Context, token string) (Principal, error)
}

type principalKey struct{}

// WithPrincipal stores p in ctx and records it as the activity actor.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	actor := p.UserID
	if actor == "" {
		actor = p.Role
	}
	return activity.WithActor(ctx, actor)
}

// FromContext returns the principal from ctx, if present.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Scopes turns principals into scopes.
type Scopes struct {
	resolver *scope.Resolver
	strict   bool
}

// NewScopes creates a Scopes. With strict set, unknown roles are rejected
// instead of falling back to the limited scope.
func NewScopes(resolver *scope.Resolver, strict bool) *Scopes {
	return &Scopes{resolver: resolver, strict: strict}
}

// For resolves the scope of p.
func (s *Scopes) For(p Principal) (scope.Scope, error) {
	if s.strict {
		return s.resolver.ResolveStrict(p.Role)
	}
	return s.resolver.Resolve(p.Role), nil
}

// FromContext resolves the scope of the principal stored in ctx.
func (s *Scopes) FromContext(ctx context.Context) (scope.Scope, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return scope.Scope{}, fmt.Errorf("%w: no principal", ErrUnauthorized)
	}
	return s.For(p)
}

// StaticResolver maps fixed tokens to principals.
type StaticResolver map[string]Principal

// ResolvePrincipal implements Resolver.
func (r StaticResolver) ResolvePrincipal(_ context.Context, token string) (Principal, error) {
	p, ok := r[token]
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}
