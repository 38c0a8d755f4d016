package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

const leagueHeader = "x-league-id"

// AuthVerifier resolves a bearer token to its account. Implementations
// re-check the account on every call so deactivation takes effect
// immediately.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (user.User, error)
}

// LeagueResolver checks that a user belongs to a league and returns the
// league together with the caller's membership.
type LeagueResolver interface {
	Membership(ctx context.Context, userID, leagueID string) (league.League, league.Membership, error)
}

// RequireAuth verifies the bearer token and stores the principal in the
// request context.
func RequireAuth(verifier AuthVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireAuth")
		defer span.End()

		token, err := bearerToken(r)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		account, err := verifier.Verify(ctx, token)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		ctx = withPrincipal(ctx, user.Principal{UserID: account.ID, Username: account.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLeague validates the tenant header once and stores the resolved
// scope in the request context. It must run after RequireAuth.
func RequireLeague(resolver LeagueResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireLeague")
		defer span.End()

		principal, ok := principalFromContext(ctx)
		if !ok {
			writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrMissingToken))
			return
		}

		// A missing header is indistinguishable from a league the caller
		// does not belong to: both refuse with the same status.
		leagueID := strings.TrimSpace(r.Header.Get(leagueHeader))
		if leagueID == "" {
			writeError(ctx, w, fmt.Errorf("%w: %s header is required", usecase.ErrNotMember, leagueHeader))
			return
		}

		item, membership, err := resolver.Membership(ctx, principal.UserID, leagueID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		ctx = withLeagueScope(ctx, LeagueScope{League: item, Membership: membership})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("%w: authorization header is required", usecase.ErrMissingToken)
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("%w: authorization header must use the Bearer scheme", usecase.ErrMissingToken)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("%w: bearer token is empty", usecase.ErrMissingToken)
	}
	return token, nil
}

// RequestLogging emits one structured line per request.
func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequestLogging")
		defer span.End()

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.InfoContext(ctx, "http_request",
			"http_method", r.Method,
			"http_path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// RequestTracing wraps the mux with OpenTelemetry HTTP server spans. Health
// endpoints are excluded to keep the trace stream useful.
func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "fantacalcio-api-http",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			switch r.URL.Path {
			case "/healthz", "/health", "/livez", "/readyz":
				return false
			}
			return true
		}),
	)
}

// CORS handles cross-origin requests for the given origins. "*" allows all.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.CORS")
		defer span.End()

		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			_, ok := allowed[origin]
			if allowAll || ok {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+leagueHeader)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
