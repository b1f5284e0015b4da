package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func listRequestsHandler(svc *service.RequestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loan-requests")
		defer span.End()

		requests, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
	}
}

func approveRequestHandler(svc *service.RequestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loan-requests/{requestId}/approve")
		defer span.End()

		requestID := chi.URLParam(r, "requestId")
		span.SetAttributes(attribute.String("request.id", requestID))

		request, err := svc.Approve(ctx, requestID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, request)
	}
}

func rejectRequestHandler(svc *service.RequestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loan-requests/{requestId}/reject")
		defer span.End()

		requestID := chi.URLParam(r, "requestId")
		span.SetAttributes(attribute.String("request.id", requestID))

		var body struct {
			Reason string `json:"reason,omitempty"`
		}
		if r.Body != nil {
			// Body is optional; a bare reject carries no reason.
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		request, err := svc.Reject(ctx, requestID, body.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, request)
	}
}

func listReceiptsHandler(svc *service.ReceiptService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/receipts")
		defer span.End()

		status := domain.ReceiptStatus(r.URL.Query().Get("status"))
		receipts, err := svc.List(ctx, status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
	}
}

func approveReceiptHandler(svc *service.ReceiptService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/receipts/{receiptId}/approve")
		defer span.End()

		receiptID := chi.URLParam(r, "receiptId")
		span.SetAttributes(attribute.String("receipt.id", receiptID))

		var req service.ApproveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Approve(ctx, receiptID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func rejectReceiptHandler(svc *service.ReceiptService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/receipts/{receiptId}/reject")
		defer span.End()

		receiptID := chi.URLParam(r, "receiptId")
		span.SetAttributes(attribute.String("receipt.id", receiptID))

		receipt, err := svc.Reject(ctx, receiptID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}

func telegramCheckHandler(svc *service.RequestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/telegram/check")
		defer span.End()

		info, err := svc.CheckBot(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
