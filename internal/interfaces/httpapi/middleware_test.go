package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type stubVerifier struct {
	account user.User
	err     error
}

func (v stubVerifier) Verify(_ context.Context, _ string) (user.User, error) {
	return v.account, v.err
}

type stubResolver struct {
	league     league.League
	membership league.Membership
	err        error
}

func (r stubResolver) Membership(_ context.Context, _, _ string) (league.League, league.Membership, error) {
	return r.league, r.membership, r.err
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body failed: %v", err)
	}
	return body
}

func TestRequireAuth(t *testing.T) {
	verifier := stubVerifier{account: user.User{ID: "user-1", Username: "mario", Active: true}}

	var seen user.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			t.Fatalf("expected principal in context")
		}
		seen = principal
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(verifier, next)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}
	if code := decodeErrorBody(t, rec).Code; code != "MISSING_TOKEN" {
		t.Fatalf("expected MISSING_TOKEN, got %s", code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/leagues", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/leagues", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
	if seen.UserID != "user-1" || seen.Username != "mario" {
		t.Fatalf("unexpected principal %+v", seen)
	}
}

func TestRequireAuth_VerifierError(t *testing.T) {
	verifier := stubVerifier{err: fmt.Errorf("%w: signature mismatch", usecase.ErrInvalidToken)}
	handler := RequireAuth(verifier, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not run on a rejected token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if code := decodeErrorBody(t, rec).Code; code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN, got %s", code)
	}
}

func TestRequireLeague(t *testing.T) {
	resolver := stubResolver{
		league:     league.League{ID: "league-1", Name: "Lega", Budget: 500},
		membership: league.Membership{LeagueID: "league-1", UserID: "user-1", Role: league.RoleMaster},
	}

	var seen LeagueScope
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := leagueScopeFromContext(r.Context())
		if !ok {
			t.Fatalf("expected league scope in context")
		}
		seen = scope
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireLeague(resolver, next)

	// Without RequireAuth upstream there is no principal.
	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set(leagueHeader, "league-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}

	authed := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
		ctx := withPrincipal(r.Context(), user.Principal{UserID: "user-1", Username: "mario"})
		return r.WithContext(ctx)
	}

	// An absent tenant header refuses like any other non-membership.
	req = authed()
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without league header, got %d", rec.Code)
	}
	if code := decodeErrorBody(t, rec).Code; code != "NOT_MEMBER" {
		t.Fatalf("expected NOT_MEMBER, got %s", code)
	}

	req = authed()
	req.Header.Set(leagueHeader, "league-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.League.ID != "league-1" || seen.Membership.Role != league.RoleMaster {
		t.Fatalf("unexpected scope %+v", seen)
	}
}

func TestRequireLeague_NotMember(t *testing.T) {
	resolver := stubResolver{err: fmt.Errorf("%w: league=league-1", usecase.ErrNotMember)}
	handler := RequireLeague(resolver, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not run for non-members")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req = req.WithContext(withPrincipal(req.Context(), user.Principal{UserID: "user-9"}))
	req.Header.Set(leagueHeader, "league-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if code := decodeErrorBody(t, rec).Code; code != "NOT_MEMBER" {
		t.Fatalf("expected NOT_MEMBER, got %s", code)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := CORS([]string{"https://app.example.com"}, next)

	req := httptest.NewRequest(http.MethodOptions, "/v1/players", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Authorization, Content-Type, "+leagueHeader {
		t.Fatalf("unexpected allow headers %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS headers for unknown origin, got %q", got)
	}

	wildcard := CORS([]string{"*"}, next)
	req = httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec = httptest.NewRecorder()
	wildcard.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
