package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

type userDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

type authResultDTO struct {
	User      userDTO `json:"user"`
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Register(ctx, usecase.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, authResultToDTO(ctx, result))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Login(ctx, usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, authResultToDTO(ctx, result))
}

func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyToken")
	defer span.End()

	token, err := bearerToken(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	account, err := h.authService.Verify(ctx, token)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(ctx, account))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateProfile")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	account, err := h.authService.UpdateProfile(ctx, userID, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "update profile failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(ctx, account))
}

func userToDTO(ctx context.Context, v user.User) userDTO {
	ctx, span := startSpan(ctx, "httpapi.userToDTO")
	defer span.End()

	return userDTO{
		ID:          v.ID,
		Username:    v.Username,
		Email:       v.Email,
		DisplayName: v.DisplayName,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func authResultToDTO(ctx context.Context, v usecase.AuthResult) authResultDTO {
	ctx, span := startSpan(ctx, "httpapi.authResultToDTO")
	defer span.End()

	return authResultDTO{
		User:      userToDTO(ctx, v.User),
		Token:     v.Token,
		ExpiresAt: v.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
