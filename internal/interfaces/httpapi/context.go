package httpapi

import (
	"context"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/user"
)

type contextKey string

const (
	principalContextKey contextKey = "auth_principal"
	leagueContextKey    contextKey = "league_scope"
)

// LeagueScope is the validated tenant context for league-scoped routes. It is
// only ever constructed by RequireLeague after the membership check passed, so
// handlers can trust it without re-validating.
type LeagueScope struct {
	League     league.League
	Membership league.Membership
}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

func withLeagueScope(ctx context.Context, scope LeagueScope) context.Context {
	return context.WithValue(ctx, leagueContextKey, scope)
}

func leagueScopeFromContext(ctx context.Context) (LeagueScope, bool) {
	scope, ok := ctx.Value(leagueContextKey).(LeagueScope)
	return scope, ok
}
