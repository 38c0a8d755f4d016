package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"golang.org/x/crypto/bcrypt"

	"github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/memory"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/token"
	"github.com/astatracker/fantacalcio-api/internal/platform/id"
	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

// testAPI wires the full router against in-memory storage so request flows
// run exactly as in production minus the database.
type testAPI struct {
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	userRepo := memory.NewUserRepository()
	catalogRepo := memory.NewCatalogRepository()
	rosterRepo := memory.NewRosterRepository(catalogRepo)
	participantRepo := memory.NewParticipantRepository()
	formationRepo := memory.NewFormationRepository()
	leagueRepo := memory.NewLeagueRepository(userRepo, rosterRepo, participantRepo, formationRepo)
	images := memory.NewImageStore()

	ids := id.NewRandomGenerator()
	logger := logging.NewNop()

	tokens, err := token.NewJWTService("test-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("create token service: %v", err)
	}

	authSvc := usecase.NewAuthService(userRepo, tokens, tokens, ids, bcrypt.MinCost)
	formationSvc := usecase.NewFormationService(formationRepo, rosterRepo, images, ids)
	leagueSvc := usecase.NewLeagueService(leagueRepo, userRepo, formationSvc, ids)
	rosterSvc := usecase.NewRosterService(rosterRepo)
	importSvc := usecase.NewImportService(catalogRepo, rosterRepo, ids, logger, 0, 0)
	participantSvc := usecase.NewParticipantService(participantRepo, rosterRepo, ids)

	handler := NewHandler(authSvc, leagueSvc, rosterSvc, importSvc, participantSvc, formationSvc, logger)
	return &testAPI{
		router: NewRouter(handler, authSvc, leagueSvc, logger, []string{"*"}),
	}
}

func (a *testAPI) do(t *testing.T, method, path, bearer, leagueID string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if leagueID != "" {
		req.Header.Set(leagueHeader, leagueID)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q failed: %v", rec.Body.String(), err)
	}
	return out
}

func (a *testAPI) register(t *testing.T, username string) authResultDTO {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "longenough",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}
	return decodeBody[authResultDTO](t, rec)
}

func TestServer_Healthz(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestServer_AuctionFlow(t *testing.T) {
	api := newTestAPI(t)

	mario := api.register(t, "mario")

	rec := api.do(t, http.MethodGet, "/v1/auth/verify", mario.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if account := decodeBody[userDTO](t, rec); account.Username != "mario" {
		t.Fatalf("verify resolved wrong account %+v", account)
	}

	rec = api.do(t, http.MethodPost, "/v1/leagues", mario.Token, "", map[string]any{
		"name":      "Lega Storica",
		"team_name": "Team Mario",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create league: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[leagueDTO](t, rec)
	if created.Budget != 500 || len(created.JoinCode) != 8 {
		t.Fatalf("unexpected league defaults %+v", created)
	}

	rec = api.do(t, http.MethodPost, "/v1/players/import", mario.Token, created.ID, map[string]any{
		"rows": []map[string]any{
			{"name": "Rossi Mario", "club": "Milan", "role": "A", "list_price": 30},
			{"name": "Bianchi Luca", "club": "Inter", "role": "C", "list_price": 12},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	imported := decodeBody[usecase.ImportResult](t, rec)
	if imported.Imported != 2 {
		t.Fatalf("expected 2 imported players, got %+v", imported)
	}

	rec = api.do(t, http.MethodGet, "/v1/players?status=available", mario.Token, created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list players: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	players := decodeBody[[]playerEntryDTO](t, rec)
	if len(players) != 2 {
		t.Fatalf("expected 2 available players, got %d", len(players))
	}

	rec = api.do(t, http.MethodPatch, "/v1/players/"+players[0].ID+"/status", mario.Token, created.ID, map[string]any{
		"status":     "owned",
		"paid_price": 30,
		"buyer":      "Team Mario",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	bought := decodeBody[playerEntryDTO](t, rec)
	if bought.Status != "owned" || bought.PaidPrice != 30 {
		t.Fatalf("unexpected player after purchase %+v", bought)
	}

	rec = api.do(t, http.MethodGet, "/v1/players/stats", mario.Token, created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stats := decodeBody[rosterStatsDTO](t, rec)
	if stats.Owned != 1 || stats.BudgetUsed != 30 || stats.BudgetRemaining != 470 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	// A second account cannot see the league until it joins.
	luigi := api.register(t, "luigi")
	rec = api.do(t, http.MethodGet, "/v1/players", luigi.Token, created.ID, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before joining, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeBody[errorBody](t, rec).Code; code != "NOT_MEMBER" {
		t.Fatalf("expected NOT_MEMBER, got %s", code)
	}

	rec = api.do(t, http.MethodPost, "/v1/leagues/join", luigi.Token, "", map[string]any{"join_code": created.JoinCode})
	if rec.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/v1/players", luigi.Token, created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after joining, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/v1/leagues/"+created.ID+"/members", luigi.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("members: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	members := decodeBody[[]memberDTO](t, rec)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Username != "mario" || members[0].PlayersOwned != 1 || members[0].BudgetUsed != 30 {
		t.Fatalf("unexpected owner overview %+v", members[0])
	}
}

func TestServer_ProfileAndVerify(t *testing.T) {
	api := newTestAPI(t)

	mario := api.register(t, "mario")

	// Verification answers on POST as well as GET.
	rec := api.do(t, http.MethodPost, "/v1/auth/verify", mario.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify via POST: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if account := decodeBody[userDTO](t, rec); account.Username != "mario" {
		t.Fatalf("verify resolved wrong account %+v", account)
	}

	rec = api.do(t, http.MethodPut, "/v1/auth/profile", mario.Token, "", map[string]any{
		"display_name": "Super Mario",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decodeBody[userDTO](t, rec); updated.DisplayName != "Super Mario" {
		t.Fatalf("unexpected profile after update %+v", updated)
	}

	rec = api.do(t, http.MethodGet, "/v1/auth/verify", mario.Token, "", nil)
	if account := decodeBody[userDTO](t, rec); account.DisplayName != "Super Mario" {
		t.Fatalf("expected display name to persist, got %+v", account)
	}

	rec = api.do(t, http.MethodPut, "/v1/auth/profile", "", "", map[string]any{
		"display_name": "Anonymous",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestServer_AuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/leagues", "", "", map[string]any{"name": "Lega"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/v1/players", "", "league-1", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on scoped route without token, got %d", rec.Code)
	}

	// A valid token without the tenant header is refused like a
	// non-member, not like a malformed request.
	mario := api.register(t, "mario")
	rec = api.do(t, http.MethodGet, "/v1/players", mario.Token, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without league header, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeBody[errorBody](t, rec).Code; code != "NOT_MEMBER" {
		t.Fatalf("expected NOT_MEMBER, got %s", code)
	}
}

func TestServer_RequestValidation(t *testing.T) {
	api := newTestAPI(t)

	// Unknown fields are rejected, not silently dropped.
	rec := api.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]any{
		"username": "mario",
		"email":    "mario@example.com",
		"password": "longenough",
		"is_admin": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeBody[errorBody](t, rec).Code; code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %s", code)
	}

	rec = api.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]any{
		"username": "mario",
		"email":    "not-an-email",
		"password": "longenough",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}

	mario := api.register(t, "mario")
	rec = api.do(t, http.MethodPost, "/v1/leagues/join", mario.Token, "", map[string]any{"join_code": "SHORT"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short join code, got %d: %s", rec.Code, rec.Body.String())
	}
}
