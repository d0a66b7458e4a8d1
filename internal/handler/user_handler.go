package handler

import (
	"net/http"

	"go-forum/internal/middleware"
	"go-forum/internal/model"
	"go-forum/internal/service"
	"go-forum/pkg/apierror"
)

// UserHandler serves the signed-in caller's own resources under /me.
type UserHandler struct {
	auth   *service.AuthService
	topics *service.TopicService
	audit  *service.AuditService
}

func NewUserHandler(auth *service.AuthService, topics *service.TopicService, audit *service.AuditService) *UserHandler {
	return &UserHandler{auth: auth, topics: topics, audit: audit}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated("authentication required"))
		return
	}

	user, err := h.auth.Me(r.Context(), identity.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateProfileRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ChangePasswordRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), actorFromRequest(r), payload); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "password updated"})
}

func (h *UserHandler) Topics(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	query := r.URL.Query()

	topics, meta, err := h.topics.List(r.Context(), model.TopicQuery{
		Owner: actor.Username,
		Page:  parseIntOrDefault(query.Get("page"), 1),
		Limit: parseIntOrDefault(query.Get("limit"), 20),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.TopicListData{Topics: topics}, &meta)
}

func (h *UserHandler) Activity(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	query := r.URL.Query()

	entries, meta, err := h.audit.Query(r.Context(), model.AuditQuery{
		ActorUsername: actor.Username,
		Page:          parseIntOrDefault(query.Get("page"), 1),
		Limit:         parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: entries}, &meta)
}
