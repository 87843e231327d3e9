package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/match-analysis/internal/usecase"
)

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterUser")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req registerUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.userService.Register(ctx, principal, usecase.RegisterUserInput{
		UID:      req.UID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "uid", principal.UID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, "user registered", userToDTO(created))
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	uid, err := requirePrincipalUID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.GetProfile(ctx, uid)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "uid", uid, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "user fetched", userToDTO(u))
}
