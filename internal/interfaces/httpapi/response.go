package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type responseEnvelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	MatchID    string          `json:"matchId,omitempty"`
	Pagination *paginationDTO  `json:"pagination,omitempty"`
	Data       any             `json:"data,omitempty"`
	Errors     []fieldErrorDTO `json:"errors,omitempty"`
}

type paginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type fieldErrorDTO struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	// Message replaces err.Error() in the response when set.
	Message string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(ctx, w, status, responseEnvelope{Message: message, Data: data})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, status int, env responseEnvelope) {
	ctx, span := startSpan(ctx, "httpapi.writeEnvelope")
	defer span.End()

	env.Status = statusSuccess
	writeJSON(ctx, w, status, env)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	message := mapped.Message
	if message == "" {
		message = err.Error()
	}

	env := responseEnvelope{Status: statusError, Message: message}
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		env.Message = "validation failed"
		for _, f := range verr.Fields {
			env.Errors = append(env.Errors, fieldErrorDTO{Path: f.Path, Message: f.Message})
		}
	}
	writeJSON(ctx, w, mapped.HTTPStatus, env)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, responseEnvelope{
		Status:  statusError,
		Message: "internal server error",
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized}
	case errors.Is(err, usecase.ErrForbidden):
		return mappedError{HTTPStatus: http.StatusForbidden}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{HTTPStatus: http.StatusConflict}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Message: "dependency unavailable"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Message: "internal server error"}
	}
}
