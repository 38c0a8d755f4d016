package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type createLeagueRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	GameMode   string `json:"game_mode" validate:"omitempty,oneof=classic mantra"`
	Budget     int    `json:"budget" validate:"omitempty,min=1"`
	MaxPlayers int    `json:"max_players" validate:"omitempty,min=1"`
	MaxMembers int    `json:"max_members" validate:"omitempty,min=1,max=100"`
	TeamName   string `json:"team_name" validate:"max=100"`
}

type updateLeagueRequest struct {
	Name       string `json:"name" validate:"max=100"`
	Budget     int    `json:"budget" validate:"omitempty,min=1"`
	MaxPlayers int    `json:"max_players" validate:"omitempty,min=1"`
	MaxMembers int    `json:"max_members" validate:"omitempty,min=1,max=100"`
	Status     string `json:"status" validate:"omitempty,oneof=active archived"`
}

type joinLeagueRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=8"`
	TeamName string `json:"team_name" validate:"max=100"`
}

type leagueDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	JoinCode    string `json:"join_code"`
	GameMode    string `json:"game_mode"`
	Budget      int    `json:"budget"`
	MaxPlayers  int    `json:"max_players"`
	MaxMembers  int    `json:"max_members"`
	Status      string `json:"status"`
	OwnerUserID string `json:"owner_user_id"`
	CreatedAt   string `json:"created_at"`
}

type membershipDTO struct {
	LeagueID string `json:"league_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TeamName string `json:"team_name"`
	JoinedAt string `json:"joined_at"`
}

type memberDTO struct {
	membershipDTO
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	BudgetUsed   int    `json:"budget_used"`
	PlayersOwned int    `json:"players_owned"`
}

type leaveResultDTO struct {
	Removed  bool           `json:"removed"`
	NewOwner *membershipDTO `json:"new_owner,omitempty"`
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	var req createLeagueRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Create(ctx, usecase.CreateLeagueInput{
		OwnerUserID: userID,
		Name:        req.Name,
		GameMode:    req.GameMode,
		Budget:      req.Budget,
		MaxPlayers:  req.MaxPlayers,
		MaxMembers:  req.MaxMembers,
		TeamName:    req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, leagueToDTO(ctx, item))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeagues")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagues, err := h.leagueService.ListMine(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, item := range leagues {
		items = append(items, leagueToDTO(ctx, item))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.Get(ctx, userID, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) UpdateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	var req updateLeagueRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.UpdateSettings(ctx, usecase.UpdateLeagueInput{
		UserID:     userID,
		LeagueID:   leagueID,
		Name:       req.Name,
		Budget:     req.Budget,
		MaxPlayers: req.MaxPlayers,
		MaxMembers: req.MaxMembers,
		Status:     req.Status,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagueID := r.PathValue("leagueID")
	if err := h.leagueService.Delete(ctx, userID, leagueID); err != nil {
		h.logger.WarnContext(ctx, "delete league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	var req joinLeagueRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Join(ctx, usecase.JoinLeagueInput{
		UserID:   userID,
		JoinCode: req.JoinCode,
		TeamName: req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) LeaveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveLeague")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagueID := r.PathValue("leagueID")
	result, err := h.leagueService.Leave(ctx, userID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "leave league failed", "league_id", leagueID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := leaveResultDTO{Removed: result.Removed}
	if result.NewOwner != nil {
		owner := membershipToDTO(ctx, *result.NewOwner)
		out.NewOwner = &owner
	}
	writeJSON(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListLeagueMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMembers")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagueID := r.PathValue("leagueID")
	members, err := h.leagueService.Members(ctx, userID, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, memberToDTO(ctx, member))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InviteMember")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	leagueID := r.PathValue("leagueID")
	username := r.PathValue("username")
	membership, err := h.leagueService.Invite(ctx, userID, leagueID, username)
	if err != nil {
		h.logger.WarnContext(ctx, "invite member failed", "league_id", leagueID, "username", username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, membershipToDTO(ctx, membership))
}

func leagueToDTO(ctx context.Context, v league.League) leagueDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	return leagueDTO{
		ID:          v.ID,
		Name:        v.Name,
		JoinCode:    v.JoinCode,
		GameMode:    string(v.GameMode),
		Budget:      v.Budget,
		MaxPlayers:  v.MaxPlayers,
		MaxMembers:  v.MaxMembers,
		Status:      string(v.Status),
		OwnerUserID: v.OwnerUserID,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func membershipToDTO(ctx context.Context, v league.Membership) membershipDTO {
	ctx, span := startSpan(ctx, "httpapi.membershipToDTO")
	defer span.End()

	return membershipDTO{
		LeagueID: v.LeagueID,
		UserID:   v.UserID,
		Role:     string(v.Role),
		TeamName: v.TeamName,
		JoinedAt: v.JoinedAt.UTC().Format(time.RFC3339),
	}
}

func memberToDTO(ctx context.Context, v league.MemberOverview) memberDTO {
	ctx, span := startSpan(ctx, "httpapi.memberToDTO")
	defer span.End()

	return memberDTO{
		membershipDTO: membershipToDTO(ctx, v.Membership),
		Username:      v.Username,
		DisplayName:   v.DisplayName,
		BudgetUsed:    v.BudgetUsed,
		PlayersOwned:  v.PlayersOwned,
	}
}
