package httpapi

import (
	"net/http"

	"github.com/riskibarqy/match-analysis/internal/domain/playerprofile"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

func (h *Handler) ListPlayerProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerProfiles")
	defer span.End()

	items, err := h.profileService.ListProfiles(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list player profiles failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "player profiles fetched", profilesToDTO(items))
}

func (h *Handler) SearchPlayerProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayerProfiles")
	defer span.End()

	query := r.URL.Query()
	input := usecase.SearchPlayerProfilesInput{
		FirstName:   query.Get("firstName"),
		LastName:    query.Get("lastName"),
		DateOfBirth: query.Get("dateOfBirth"),
		Country:     query.Get("country"),
	}

	items, err := h.profileService.SearchProfiles(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "search player profiles failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "player profiles fetched", profilesToDTO(items))
}

func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProfile")
	defer span.End()

	profileID := r.PathValue("id")
	p, err := h.profileService.GetProfile(ctx, profileID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player profile failed", "profile_id", profileID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "player profile fetched", playerProfileToDTO(p))
}

func (h *Handler) UpdatePlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayerProfile")
	defer span.End()

	profileID := r.PathValue("id")
	var req updatePlayerProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.profileService.UpdateProfile(ctx, profileID, usecase.UpdatePlayerProfileInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DateOfBirth:     req.DateOfBirth,
		Country:         req.Country,
		Avatar:          req.Avatar,
		PrimaryPosition: req.PrimaryPosition,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player profile failed", "profile_id", profileID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "player profile updated", playerProfileToDTO(updated))
}

func profilesToDTO(items []playerprofile.Profile) []playerProfileDTO {
	out := make([]playerProfileDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerProfileToDTO(p))
	}
	return out
}
