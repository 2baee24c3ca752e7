package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"awareness-quiz-service/internal/app"
	"awareness-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler drives a quiz attempt over a single websocket connection: the
// server pushes the current question, the client sends answer/advance/
// retreat/submit messages. The tracking id comes from the delivery URL and
// is only enforced at submission.
type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the delivery page connection and walks the recipient
// through the quiz.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("quiz")
	if slug == "" {
		http.Error(w, "missing quiz slug", http.StatusBadRequest)
		return
	}
	uid := r.URL.Query().Get("uid")
	key := uid
	if key == "" {
		key = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	quiz, attempt, err := h.service.Start(r.Context(), slug, key, uid)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	h.sendQuestion(conn, quiz, attempt)
	h.sendProgress(conn, key, attempt)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload wsAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, errors.New("invalid answer payload"))
				continue
			}
			updated, feedback, err := h.service.SelectAnswer(r.Context(), key, payload.Question, payload.Option)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			attempt = updated
			_ = conn.WriteJSON(outboundMessage[app.Feedback]{Type: "feedback", Payload: feedback})
			h.sendProgress(conn, key, attempt)
		case "advance":
			updated, err := h.service.Advance(r.Context(), key)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			attempt = updated
			h.sendQuestion(conn, quiz, attempt)
			h.sendProgress(conn, key, attempt)
		case "retreat":
			updated, err := h.service.Retreat(r.Context(), key)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			attempt = updated
			h.sendQuestion(conn, quiz, attempt)
			h.sendProgress(conn, key, attempt)
		case "submit":
			result, err := h.service.Submit(r.Context(), key)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			attempt.Submitted = true
			_ = conn.WriteJSON(outboundMessage[domain.ScoreResult]{Type: "result", Payload: result})
		default:
			h.sendError(conn, errors.New("unsupported message type"))
		}
	}
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, quiz domain.Quiz, attempt domain.Attempt) {
	if len(quiz.Questions) == 0 {
		return
	}
	view := newQuestionView(attempt.Current, quiz.Questions[attempt.Current])
	_ = conn.WriteJSON(outboundMessage[questionView]{Type: "question", Payload: view})
}

func (h *WSHandler) sendProgress(conn *websocket.Conn, key string, attempt domain.Attempt) {
	_ = conn.WriteJSON(outboundMessage[attemptView]{Type: "progress", Payload: newAttemptView(key, attempt)})
}

func (h *WSHandler) sendError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}
