package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func listMembersHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/members")
		defer span.End()

		members, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	}
}

func getMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/members/{memberId}")
		defer span.End()

		memberID := chi.URLParam(r, "memberId")
		span.SetAttributes(attribute.String("member.id", memberID))

		member, err := svc.Get(ctx, memberID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, member)
	}
}

func createMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/members")
		defer span.End()

		var in service.MemberInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		member, err := svc.Create(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, member)
	}
}

func updateMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/members/{memberId}")
		defer span.End()

		memberID := chi.URLParam(r, "memberId")
		span.SetAttributes(attribute.String("member.id", memberID))

		var in service.MemberInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		member, err := svc.Update(ctx, memberID, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, member)
	}
}

func deactivateMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/members/{memberId}/deactivate")
		defer span.End()

		memberID := chi.URLParam(r, "memberId")
		span.SetAttributes(attribute.String("member.id", memberID))

		member, err := svc.Deactivate(ctx, memberID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, member)
	}
}
