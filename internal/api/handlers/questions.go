package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oralquiz/grader/internal/questions"
)

type QuestionsHandler struct {
	store questions.Store
}

func NewQuestionsHandler(store questions.Store) *QuestionsHandler {
	return &QuestionsHandler{store: store}
}

func (h *QuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	qs, err := h.store.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": qs, "count": len(qs)})
}

func (h *QuestionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question id must be an integer")
		return
	}

	q, err := h.store.Get(r.Context(), id)
	if errors.Is(err, questions.ErrNotFound) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load question")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionsHandler) Random(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.Random(r.Context())
	if errors.Is(err, questions.ErrNotFound) {
		writeError(w, http.StatusNotFound, "question bank is empty")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to pick question")
		return
	}
	writeJSON(w, http.StatusOK, q)
}
