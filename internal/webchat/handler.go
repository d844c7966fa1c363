// Package webchat exposes the booking dialog to browsers over HTTP and WebSocket.
// The client holds the dialog state and sends it back with every message.
package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/salon-booking-assistant/internal/conversation"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// TurnProcessor runs one dialog turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, message string, state conversation.DialogState) (conversation.Turn, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string                    `json:"message"`
	State   *conversation.DialogState `json:"state,omitempty"`
}

// ChatResponse carries the formatted reply and the state to send next time.
type ChatResponse struct {
	Reply string                   `json:"reply"`
	State conversation.DialogState `json:"state"`
}

// Frame is a WebSocket message in either direction.
type Frame struct {
	Type    string                    `json:"type"` // "message", "ping" inbound; "reply", "pong", "error" outbound
	Message string                    `json:"message,omitempty"`
	Reply   string                    `json:"reply,omitempty"`
	State   *conversation.DialogState `json:"state,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

const (
	errInvalidRequest = "Invalid request"
	errInvalidState   = "Invalid state"
	errInternal       = "Something went wrong"

	maxBodyBytes = 1 << 20
)

// Handler serves the chat endpoints.
type Handler struct {
	turns  TurnProcessor
	logger *logging.Logger
}

// NewHandler creates a web chat handler.
func NewHandler(turns TurnProcessor, logger *logging.Logger) *Handler {
	if turns == nil {
		panic("webchat: turn processor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{turns: turns, logger: logger}
}

// HandleChat serves POST /chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errInvalidRequest})
		return
	}
	resp, status, msg := h.turn(r.Context(), req.Message, req.State)
	if status != http.StatusOK {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// turn runs the dialog and maps failures to an HTTP status and public message.
func (h *Handler) turn(ctx context.Context, message string, state *conversation.DialogState) (ChatResponse, int, string) {
	if strings.TrimSpace(message) == "" {
		return ChatResponse{}, http.StatusBadRequest, errInvalidRequest
	}
	current := conversation.DialogState{Messages: []conversation.ChatMessage{}}
	if state != nil {
		current = *state
	}

	turn, err := h.turns.ProcessTurn(ctx, message, current)
	switch {
	case err == nil:
	case errors.Is(err, conversation.ErrEmptyMessage):
		return ChatResponse{}, http.StatusBadRequest, errInvalidRequest
	case errors.Is(err, conversation.ErrInvalidState):
		h.logger.Warn("webchat: rejected dialog state", "error", err)
		return ChatResponse{}, http.StatusBadRequest, errInvalidState
	default:
		h.logger.Error("webchat: turn failed", "error", err)
		return ChatResponse{}, http.StatusInternalServerError, errInternal
	}
	return ChatResponse{Reply: FormatReply(turn.Reply), State: turn.State}, http.StatusOK, ""
}

// HandleWebSocket serves GET /chat/ws. Each inbound message frame gets exactly one reply or error frame.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(r.Context(), conn)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(ctx context.Context, conn *websocket.Conn) {
	h.logger.Debug("webchat: connection opened", "remote", conn.Request().RemoteAddr)
	for {
		var in Frame
		if err := websocket.JSON.Receive(conn, &in); err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Debug("webchat: connection closed", "error", err)
			}
			return
		}

		var out Frame
		switch in.Type {
		case "ping":
			out = Frame{Type: "pong"}
		case "message", "":
			resp, status, msg := h.turn(ctx, in.Message, in.State)
			if status != http.StatusOK {
				out = Frame{Type: "error", Error: msg}
				break
			}
			out = Frame{Type: "reply", Reply: resp.Reply, State: &resp.State}
		default:
			out = Frame{Type: "error", Error: errInvalidRequest}
		}
		if err := websocket.JSON.Send(conn, out); err != nil {
			h.logger.Debug("webchat: send failed", "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
