package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/math-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/math-quiz/pkg/http/ws"
)

// Handler manages WebSocket connections and routes session messages.
type Handler struct {
	service *Service
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewHandler creates a quiz WebSocket handler.
func NewHandler(service *Service, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger.With().Str("component", "quiz_ws").Logger(),
	}
}

// HandleConnection serves one socket watching sessionID. The session must
// exist; the caller checks that before upgrading.
func (h *Handler) HandleConnection(conn *websocket.Conn, sessionID string) {
	connID := uuid.New()
	wsConn := ws.NewConnection(conn, h.logger.With().Str("conn_id", connID.String()).Logger())
	h.hub.RegisterConnection(connID, wsConn)
	h.hub.JoinSession(sessionID, connID)

	go wsConn.WritePump()

	ctx := context.Background()
	if err := h.sendView(ctx, connID, sessionID, ""); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sessionID).Msg("initial view failed")
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(ctx, connID, sessionID, msg)
	})

	h.hub.UnregisterConnection(connID)
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(ctx context.Context, connID uuid.UUID, sessionID string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeAction:
		return h.handleAction(ctx, connID, sessionID, msg)
	case ws.TypeRequestView:
		return h.sendView(ctx, connID, sessionID, msg.RequestID)
	case ws.TypePing:
		return h.hub.SendTo(connID, ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleAction(ctx context.Context, connID uuid.UUID, sessionID string, msg ws.Message) error {
	var req ws.ActionPayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Type == "" {
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid action payload")
	}

	view, err := h.service.Apply(ctx, sessionID, Action{
		Type:    req.Type,
		Subject: req.Subject,
		Index:   req.Index,
		Choice:  req.Choice,
	})
	if err != nil {
		if sendErr := h.sendError(connID, msg.RequestID, ErrorCode(err), err.Error()); sendErr != nil {
			return sendErr
		}
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionBusy) {
			return nil
		}
		return h.send(connID, msg.RequestID, ws.TypeView, view)
	}

	pushView(h.hub, view, h.logger)
	return nil
}

func (h *Handler) sendView(ctx context.Context, connID uuid.UUID, sessionID, requestID string) error {
	view, err := h.service.View(ctx, sessionID)
	if err != nil {
		return h.sendError(connID, requestID, ErrorCode(err), err.Error())
	}
	return h.send(connID, requestID, ws.TypeView, view)
}

func (h *Handler) send(connID uuid.UUID, requestID, msgType string, payload interface{}) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return h.hub.SendTo(connID, msg)
}

func (h *Handler) sendError(connID uuid.UUID, requestID, code, message string) error {
	return h.send(connID, requestID, ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
}

// pushView sends a session's new view to all of its viewers.
func pushView(hub *ws.Hub, view View, logger zerolog.Logger) {
	if hub == nil {
		return
	}
	msg, err := ws.NewMessage(ws.TypeView, view)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to marshal view")
		return
	}
	if err := hub.BroadcastToSession(view.SessionID, msg); err != nil {
		logger.Debug().Err(err).Str("session_id", view.SessionID).Msg("view push incomplete")
	}
}
