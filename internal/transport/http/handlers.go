package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"awareness-quiz-service/internal/app"
	"awareness-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Handler exposes the quiz delivery REST surface.
type Handler struct {
	service *app.AttemptService
}

func NewHandler(service *app.AttemptService) *Handler {
	return &Handler{service: service}
}

// Register wires the delivery routes into mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes/url/{slug}", h.getQuiz)
	mux.HandleFunc("POST /attempts", h.startAttempt)
	mux.HandleFunc("GET /attempts/{key}", h.getAttempt)
	mux.HandleFunc("POST /attempts/{key}/answers", h.answer)
	mux.HandleFunc("POST /attempts/{key}/advance", h.advance)
	mux.HandleFunc("POST /attempts/{key}/retreat", h.retreat)
	mux.HandleFunc("POST /attempts/{key}/submit", h.submit)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Quiz(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(quiz))
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("quiz")
	if slug == "" {
		http.Error(w, "missing quiz slug", http.StatusBadRequest)
		return
	}
	// The tracking id is optional until submission; anonymous delivery
	// pages get a generated attempt key instead.
	uid := r.URL.Query().Get("uid")
	key := uid
	if key == "" {
		key = uuid.NewString()
	}

	_, attempt, err := h.service.Start(r.Context(), slug, key, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptView(key, attempt))
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	attempt, err := h.service.Progress(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptView(key, attempt))
}

type answerRequest struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

type answerResponse struct {
	Attempt  attemptView  `json:"attempt"`
	Feedback app.Feedback `json:"feedback"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid answer payload", http.StatusBadRequest)
		return
	}
	attempt, feedback, err := h.service.SelectAnswer(r.Context(), key, req.Question, req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Attempt: newAttemptView(key, attempt), Feedback: feedback})
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Advance)
}

func (h *Handler) retreat(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Retreat)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, key string) (domain.Attempt, error)) {
	key := r.PathValue("key")
	attempt, err := step(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptView(key, attempt))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	result, err := h.service.Submit(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAnswerRequired),
		errors.Is(err, domain.ErrIncompleteAttempt),
		errors.Is(err, domain.ErrQuestionOutOfRange),
		errors.Is(err, domain.ErrOptionOutOfRange),
		errors.Is(err, domain.ErrMissingTrackingID):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAttemptSubmitted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCompletionTransport):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
