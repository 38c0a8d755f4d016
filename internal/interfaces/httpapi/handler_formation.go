package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

const maxImageBytes = 5 << 20

type saveFormationRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Schema    string   `json:"schema" validate:"required"`
	PlayerIDs []string `json:"player_ids" validate:"max=11,dive,required"`
	Notes     string   `json:"notes" validate:"max=1000"`
}

type formationDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Schema    string   `json:"schema"`
	PlayerIDs []string `json:"player_ids"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func (h *Handler) ListFormations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFormations")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	formations, err := h.formationService.List(ctx, scope.League.ID, scope.Membership.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list formations failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]formationDTO, 0, len(formations))
	for _, item := range formations {
		items = append(items, formationToDTO(ctx, item))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFormation")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req saveFormationRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.formationService.Create(ctx, usecase.SaveFormationInput{
		LeagueID:  scope.League.ID,
		UserID:    scope.Membership.UserID,
		Name:      req.Name,
		Schema:    req.Schema,
		PlayerIDs: req.PlayerIDs,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create formation failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, formationToDTO(ctx, item))
}

func (h *Handler) UpdateFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateFormation")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req saveFormationRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	formationID := r.PathValue("formationID")
	item, err := h.formationService.Update(ctx, usecase.SaveFormationInput{
		LeagueID:    scope.League.ID,
		UserID:      scope.Membership.UserID,
		FormationID: formationID,
		Name:        req.Name,
		Schema:      req.Schema,
		PlayerIDs:   req.PlayerIDs,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update formation failed", "league_id", scope.League.ID, "formation_id", formationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, formationToDTO(ctx, item))
}

func (h *Handler) DeleteFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteFormation")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	formationID := r.PathValue("formationID")
	if err := h.formationService.Delete(ctx, scope.League.ID, scope.Membership.UserID, formationID); err != nil {
		h.logger.WarnContext(ctx, "delete formation failed", "league_id", scope.League.ID, "formation_id", formationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadFormationImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadFormationImage")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	limited := http.MaxBytesReader(w, r.Body, maxImageBytes)
	if _, err := io.Copy(buf, limited); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read image body: %v", usecase.ErrInvalidInput, err))
		return
	}

	formationID := r.PathValue("formationID")
	key, err := h.formationService.UploadImage(ctx, scope.Membership.UserID, usecase.UploadFormationImageInput{
		LeagueID:    scope.League.ID,
		FormationID: formationID,
		ContentType: r.Header.Get("Content-Type"),
		Body:        append([]byte(nil), buf.B...),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upload formation image failed", "league_id", scope.League.ID, "formation_id", formationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, map[string]string{"key": key})
}

func (h *Handler) ListFormationImages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFormationImages")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	formationID := r.PathValue("formationID")
	keys, err := h.formationService.ListImages(ctx, scope.League.ID, scope.Membership.UserID, formationID)
	if err != nil {
		h.logger.WarnContext(ctx, "list formation images failed", "league_id", scope.League.ID, "formation_id", formationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string][]string{"images": keys})
}

func (h *Handler) DeleteFormationImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteFormationImage")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	formationID := r.PathValue("formationID")
	imageKey := r.PathValue("imageKey")
	if err := h.formationService.DeleteImage(ctx, scope.League.ID, scope.Membership.UserID, formationID, imageKey); err != nil {
		h.logger.WarnContext(ctx, "delete formation image failed", "league_id", scope.League.ID, "formation_id", formationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func formationToDTO(ctx context.Context, v formation.Formation) formationDTO {
	ctx, span := startSpan(ctx, "httpapi.formationToDTO")
	defer span.End()

	return formationDTO{
		ID:        v.ID,
		Name:      v.Name,
		Schema:    v.Schema,
		PlayerIDs: append([]string(nil), v.PlayerIDs...),
		Notes:     v.Notes,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
