package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type Handler struct {
	authService        *usecase.AuthService
	leagueService      *usecase.LeagueService
	rosterService      *usecase.RosterService
	importService      *usecase.ImportService
	participantService *usecase.ParticipantService
	formationService   *usecase.FormationService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	leagueService *usecase.LeagueService,
	rosterService *usecase.RosterService,
	importService *usecase.ImportService,
	participantService *usecase.ParticipantService,
	formationService *usecase.FormationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authService:        authService,
		leagueService:      leagueService,
		rosterService:      rosterService,
		importService:      importService,
		participantService: participantService,
		formationService:   formationService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, body io.Reader, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// requireLeagueScope fetches the tenant scope RequireLeague stored. A miss
// means the route was registered outside the scoped chain.
func requireLeagueScope(ctx context.Context, w http.ResponseWriter) (LeagueScope, bool) {
	scope, ok := leagueScopeFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: league scope is missing from request context", usecase.ErrInvalidInput))
	}
	return scope, ok
}

func requirePrincipal(ctx context.Context, w http.ResponseWriter) (string, bool) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrMissingToken))
		return "", false
	}
	return principal.UserID, true
}
