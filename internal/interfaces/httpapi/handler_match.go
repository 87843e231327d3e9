package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/riskibarqy/match-analysis/internal/usecase"
)

const lineupImageField = "file"

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	uid, err := requirePrincipalUID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createMatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.matchService.CreateMatch(ctx, req.toInput(uid))
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "uid", uid, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeEnvelope(ctx, w, http.StatusCreated, responseEnvelope{
		Message: "match analysis request created",
		MatchID: created.ID,
	})
}

func (h *Handler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyMatches")
	defer span.End()

	uid, err := requirePrincipalUID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchService.ListMyMatches(ctx, uid)
	if err != nil {
		h.logger.WarnContext(ctx, "list my matches failed", "uid", uid, "error", err)
		writeError(ctx, w, err)
		return
	}

	data := make([]matchSummaryDTO, 0, len(items))
	for _, m := range items {
		data = append(data, matchSummaryToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, "matches fetched", data)
}

func (h *Handler) ListAllMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllMatches")
	defer span.End()

	verr := &usecase.ValidationError{}
	req := usecase.PageRequest{
		Page:  parsePageParam(r, "page", verr),
		Limit: parsePageParam(r, "limit", verr),
	}
	if len(verr.Fields) > 0 {
		writeError(ctx, w, verr)
		return
	}

	items, page, err := h.matchService.ListMatches(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "list all matches failed", "page", req.Page, "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	data := make([]matchDTO, 0, len(items))
	for _, m := range items {
		data = append(data, matchToDTO(m))
	}
	writeEnvelope(ctx, w, http.StatusOK, responseEnvelope{
		Message:    "matches fetched",
		Pagination: &paginationDTO{Page: page.Page, Limit: page.Limit},
		Data:       data,
	})
}

func (h *Handler) GetMatchDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDetail")
	defer span.End()

	matchID := r.PathValue("matchId")
	detail, err := h.matchService.GetMatchDetail(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match detail failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "match fetched", matchDetailToDTO(detail))
}

func (h *Handler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatchStatus")
	defer span.End()

	h.updateStatus(w, r.WithContext(ctx))
}

// ReportMatchStatus is the worker-facing twin of UpdateMatchStatus.
func (h *Handler) ReportMatchStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportMatchStatus")
	defer span.End()

	h.updateStatus(w, r.WithContext(ctx))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := r.PathValue("matchId")

	var req updateMatchStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.matchService.UpdateMatchStatus(ctx, matchID, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "update match status failed", "match_id", matchID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fmt.Sprintf("match status updated to %s", status), nil)
}

func (h *Handler) UploadLineupImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadLineupImage")
	defer span.End()

	uid, err := requirePrincipalUID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID := r.PathValue("matchId")

	r.Body = http.MaxBytesReader(w, r.Body, maxLineupImageBytes+maxJSONBodyBytes)
	if err := r.ParseMultipartForm(maxLineupImageBytes); err != nil {
		writeError(ctx, w, lineupFormError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(lineupImageField)
	if err != nil {
		writeError(ctx, w, lineupFormError(err))
		return
	}
	defer file.Close()

	if header.Size > maxLineupImageBytes {
		writeError(ctx, w, lineupFormError(&http.MaxBytesError{Limit: maxLineupImageBytes}))
		return
	}

	body, contentType, err := sniffContentType(file, header)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read lineup image: %v", usecase.ErrInvalidInput, err))
		return
	}

	url, err := h.matchService.AttachLineupImage(ctx, usecase.AttachLineupImageInput{
		CallerUID:   uid,
		MatchID:     matchID,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        body,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upload lineup image failed", "uid", uid, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "lineup image uploaded", lineupImageDTO{LineupImage: url})
}

func lineupFormError(err error) error {
	verr := &usecase.ValidationError{}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		verr.Add(lineupImageField, "file must be at most 10 MiB")
	case errors.Is(err, http.ErrMissingFile):
		verr.Add(lineupImageField, "file is required")
	default:
		verr.Add(lineupImageField, "request must be multipart/form-data with a file field")
	}
	return verr
}

// sniffContentType trusts the part header unless it is missing or generic,
// then falls back to content sniffing. The returned reader replays the
// sniffed prefix.
func sniffContentType(file multipart.File, header *multipart.FileHeader) (io.Reader, string, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" {
		return file, contentType, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), file), http.DetectContentType(head), nil
}
