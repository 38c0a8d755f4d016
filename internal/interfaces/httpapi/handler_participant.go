package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/participant"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type createParticipantRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Budget int    `json:"budget" validate:"omitempty,min=0"`
}

type updateParticipantRequest struct {
	Name   string `json:"name" validate:"max=100"`
	Budget *int   `json:"budget" validate:"omitempty,min=0"`
}

type assignPlayerRequest struct {
	PlayerID  string `json:"player_id" validate:"required"`
	PaidPrice int    `json:"paid_price" validate:"min=0"`
}

type participantDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Budget    int    `json:"budget"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListParticipants")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	participants, err := h.participantService.List(ctx, scope.League.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "list participants failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantDTO, 0, len(participants))
	for _, item := range participants {
		items = append(items, participantToDTO(ctx, item))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateParticipant")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req createParticipantRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.participantService.Create(ctx, usecase.CreateParticipantInput{
		LeagueID: scope.League.ID,
		Name:     req.Name,
		Budget:   req.Budget,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create participant failed", "league_id", scope.League.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, participantToDTO(ctx, item))
}

func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateParticipant")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req updateParticipantRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	participantID := r.PathValue("participantID")
	item, err := h.participantService.Update(ctx, usecase.UpdateParticipantInput{
		LeagueID:      scope.League.ID,
		ParticipantID: participantID,
		Name:          req.Name,
		Budget:        req.Budget,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update participant failed", "league_id", scope.League.ID, "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, participantToDTO(ctx, item))
}

func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteParticipant")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	participantID := r.PathValue("participantID")
	if err := h.participantService.Delete(ctx, scope.League.ID, participantID); err != nil {
		h.logger.WarnContext(ctx, "delete participant failed", "league_id", scope.League.ID, "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AssignPlayerToParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignPlayerToParticipant")
	defer span.End()

	scope, ok := requireLeagueScope(ctx, w)
	if !ok {
		return
	}

	var req assignPlayerRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	participantID := r.PathValue("participantID")
	entry, err := h.participantService.AssignPlayer(ctx, usecase.AssignPlayerInput{
		LeagueID:      scope.League.ID,
		ParticipantID: participantID,
		PlayerID:      req.PlayerID,
		PaidPrice:     req.PaidPrice,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "assign player failed", "league_id", scope.League.ID, "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, entryToDTO(ctx, entry))
}

func participantToDTO(ctx context.Context, v participant.Participant) participantDTO {
	ctx, span := startSpan(ctx, "httpapi.participantToDTO")
	defer span.End()

	return participantDTO{
		ID:        v.ID,
		Name:      v.Name,
		Budget:    v.Budget,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}
