package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type updatePlayerStatusRequest struct {
	Status        string  `json:"status" validate:"omitempty,oneof=available owned removed taken_by_other"`
	Interesting   *bool   `json:"interesting"`
	ExpectedPrice *int    `json:"expected_price" validate:"omitempty,min=0"`
	PaidPrice     *int    `json:"paid_price" validate:"omitempty,min=0"`
	Buyer         *string `json:"buyer"`
	Notes         *string `json:"notes"`
}

type importPlayersRequest struct {
	Rows       []usecase.ImportRow `json:"rows" validate:"required,min=1,dive"`
	MaxWorkers int                 `json:"max_workers" validate:"omitempty,min=1,max=16"`
}

type importSheet struct {
	Name string              `json:"name"`
	Rows []usecase.ImportRow `json:"rows" validate:"required,min=1,dive"`
}

type importPlayersBatchRequest struct {
	Sheets     []importSheet `json:"sheets" validate:"required,min=1,dive"`
	MaxWorkers int           `json:"max_workers" validate:"omitempty,min=1,max=16"`
}

type importSheetResultDTO struct {
	Name   string               `json:"name"`
	Result usecase.ImportResult `json:"result"`
}

type importBatchResultDTO struct {
	Total  usecase.ImportResult   `json:"total"`
	Sheets []importSheetResultDTO `json:"sheets"`
}

type playerEntryDTO struct {
	ID             string   `json:"id"`
	MasterPlayerID string   `json:"master_player_id"`
	Name           string   `json:"name"`
	Club           string   `json:"club"`
	ClassicRole    string   `json:"classic_role"`
	MantraRoles    []string `json:"mantra_roles"`
	ListPrice      int      `json:"list_price"`
	FVM            int      `json:"fvm"`
	Status         string   `json:"status"`
	Interesting    bool     `json:"interesting"`
	ExpectedPrice  int      `json:"expected_price"`
	PaidPrice      int      `json:"paid_price"`
	Buyer          string   `json:"buyer"`
	Notes          string   `json:"notes"`
	UpdatedAt      string   `json:"updated_at"`
}

type rosterStatsDTO struct {
	Total           int            `json:"total"`
	Available       int            `json:"available"`
	Owned           int            `json:"owned"`
	Removed         int            `json:"removed"`
	TakenByOther    int            `json:"taken_by_other"`
	BudgetUsed      int            `json:"budget_used"`
	Budget          int            `json:"budget"`
	BudgetRemaining int            `json:"budget_remaining"`
	OwnedByRole     map[string]int `json:"owned_by_role"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := roster.Filter{
		Status:      roster.Status(strings.TrimSpace(query.Get("status"))),
		Role:        strings.TrimSpace(query.Get("role")),
		Search:      strings.TrimSpace(query.Get("search")),
		Interesting: query.Get("interesting") == "true",
	}

	entries, err := h.rosterService.List(ctx, scope.League.ID, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entryToDTO(ctx, entry))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpdatePlayerStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayerStatus")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req updatePlayerStatusRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := r.PathValue("playerID")
	entry, err := h.rosterService.UpdateStatus(ctx, usecase.UpdatePlayerStatusInput{
		LeagueID:      scope.League.ID,
		PlayerID:      playerID,
		Status:        req.Status,
		Interesting:   req.Interesting,
		ExpectedPrice: req.ExpectedPrice,
		PaidPrice:     req.PaidPrice,
		Buyer:         req.Buyer,
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player status failed", "league_id", scope.League.ID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, entryToDTO(ctx, entry))
}

func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayers")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req importPlayersRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.importService.Import(ctx, usecase.ImportInput{
		LeagueID:   scope.League.ID,
		Rows:       req.Rows,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "import players failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// ImportPlayersBatch imports several sheets in one call, one result per
// sheet. Sheets run sequentially so their results stay attributable; rows
// inside a sheet still run on the worker pool.
func (h *Handler) ImportPlayersBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayersBatch")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req importPlayersBatchRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	out := importBatchResultDTO{Sheets: make([]importSheetResultDTO, 0, len(req.Sheets))}
	for _, sheet := range req.Sheets {
		result, err := h.importService.Import(ctx, usecase.ImportInput{
			LeagueID:   scope.League.ID,
			Rows:       sheet.Rows,
			MaxWorkers: req.MaxWorkers,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "import sheet failed", "league_id", scope.League.ID, "sheet", sheet.Name, "error", err)
			writeError(ctx, w, err)
			return
		}
		out.Sheets = append(out.Sheets, importSheetResultDTO{Name: sheet.Name, Result: result})
		out.Total.Imported += result.Imported
		out.Total.Updated += result.Updated
		out.Total.Skipped += result.Skipped
		out.Total.Failed += result.Failed
	}

	writeJSON(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetRosterStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRosterStats")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	stats, err := h.rosterService.Stats(ctx, scope.League.ID, scope.League.Budget)
	if err != nil {
		h.logger.WarnContext(ctx, "roster stats failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, rosterStatsDTO{
		Total:           stats.Total,
		Available:       stats.Available,
		Owned:           stats.Owned,
		Removed:         stats.Removed,
		TakenByOther:    stats.TakenByOther,
		BudgetUsed:      stats.BudgetUsed,
		Budget:          stats.Budget,
		BudgetRemaining: stats.BudgetRemaining,
		OwnedByRole:     stats.OwnedByRole,
	})
}

func entryToDTO(ctx context.Context, v roster.Entry) playerEntryDTO {
	ctx, span := startSpan(ctx, "httpapi.entryToDTO")
	defer span.End()

	return playerEntryDTO{
		ID:             v.ID,
		MasterPlayerID: v.MasterPlayerID,
		Name:           v.Master.Name,
		Club:           v.Master.Club,
		ClassicRole:    v.Master.ClassicRole,
		MantraRoles:    append([]string(nil), v.Master.MantraRoles...),
		ListPrice:      v.Master.ListPrice,
		FVM:            v.Master.FVM,
		Status:         string(v.Status),
		Interesting:    v.Interesting,
		ExpectedPrice:  v.ExpectedPrice,
		PaidPrice:      v.PaidPrice,
		Buyer:          v.Buyer,
		Notes:          v.Notes,
		UpdatedAt:      v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
