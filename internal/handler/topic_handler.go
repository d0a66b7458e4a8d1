package handler

import (
	"net/http"

	"go-forum/internal/model"
	"go-forum/internal/service"
)

type TopicHandler struct {
	service *service.TopicService
}

func NewTopicHandler(service *service.TopicService) *TopicHandler {
	return &TopicHandler{service: service}
}

func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	topics, meta, err := h.service.List(r.Context(), model.TopicQuery{
		Page:  parseIntOrDefault(query.Get("page"), 1),
		Limit: parseIntOrDefault(query.Get("limit"), 20),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.TopicListData{Topics: topics}, &meta)
}

func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateTopicRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	topic, err := h.service.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, topic, nil)
}

func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	topic, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, topic, nil)
}

// Update authorizes before decoding so a non-owner sees 403 even for a
// malformed body.
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	actor := actorFromRequest(r)
	if _, err := h.service.Authorize(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateTopicRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	topic, err := h.service.Update(r.Context(), actor, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, topic, nil)
}

func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), actorFromRequest(r), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
