package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/domain"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// confirmationResponse is returned when a classified payment needs an
// explicit operator confirmation. It carries the computed split so the UI
// can render the dialog and resubmit with confirm=true.
type confirmationResponse struct {
	Error                string           `json:"error"`
	RequiresConfirmation bool             `json:"requiresConfirmation"`
	Decision             *domain.Decision `json:"decision"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var businessRule *domain.ErrBusinessRule
	var confirmation *domain.ErrConfirmationRequired
	var stale *domain.ErrStaleState
	var inconsistent *domain.ErrInconsistentState
	var unauthorized *domain.ErrUnauthorized
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &businessRule):
		logger.Debug("business rule rejected", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, businessRule.Message)
	case errors.As(err, &confirmation):
		logger.Debug("confirmation required")
		writeJSON(w, http.StatusConflict, confirmationResponse{
			Error:                err.Error(),
			RequiresConfirmation: true,
			Decision:             confirmation.Decision,
		})
	case errors.As(err, &stale):
		logger.Warn("stale state", zap.String("error", err.Error()))
		writeError(w, http.StatusPreconditionFailed, err.Error())
	case errors.As(err, &inconsistent):
		logger.Error("inconsistent state after partial write", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("external service error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "data store unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
