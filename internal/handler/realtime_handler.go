package handler

import (
	"context"
	"time"

	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/internal/pkg/serverutils"
	internalWS "ai-study-assist-be/internal/websocket"
	"ai-study-assist-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const EventSystemBroadcast = "system.broadcast"

// EventPublisher puts events on the study event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type RealtimeHandler struct {
	publisher EventPublisher
	hub       *internalWS.Hub
	logger    logger.ILogger
}

// NewRealtimeHandler serves the push channel. publisher may be nil when the
// event bus is unavailable.
func NewRealtimeHandler(pub EventPublisher, hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		publisher: pub,
		hub:       hub,
		logger:    log,
	}
}

// ServeWs upgrades an authenticated request. Browsers pass the token as the
// "token" query parameter, other clients use the Authorization header.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')")
	}

	studentID, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("RealtimeHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"student_id": studentID})
		internalWS.ServeWs(h.hub, conn, studentID)
		h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"student_id": studentID})
	})(c)
}

type triggerEventRequest struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// DebugTriggerEvent publishes an arbitrary event for the caller so the
// activity feed can be exercised end to end.
func (h *RealtimeHandler) DebugTriggerEvent(c *fiber.Ctx) error {
	studentID, err := serverutils.StudentID(c)
	if err != nil {
		return err
	}

	var req triggerEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Type == "" {
		req.Type = "TEST_EVENT"
	}
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}
	req.Payload["student_id"] = studentID

	if h.publisher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Event publisher not configured")
	}

	evt := events.BaseEvent{
		Type:       req.Type,
		Data:       req.Payload,
		OccurredAt: time.Now(),
	}
	if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Event published", fiber.Map{"type": evt.Type}))
}

type broadcastRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Broadcast pushes a system notice to every connected page.
func (h *RealtimeHandler) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	h.hub.Broadcast(EventSystemBroadcast, fiber.Map{
		"title":   req.Title,
		"message": req.Message,
	})
	return c.JSON(serverutils.SuccessResponse[any]("Broadcast queued", nil))
}

// RegisterRoutes mounts the websocket. The broadcast and debug routes are
// only mounted when debug is set.
func (h *RealtimeHandler) RegisterRoutes(router fiber.Router, debug bool) {
	router.Get("/ws", h.ServeWs)
	if !debug {
		return
	}

	rt := router.Group("/realtime/v1")
	rt.Use(serverutils.JwtMiddleware)
	rt.Post("/broadcast", h.Broadcast)
	rt.Post("/debug/trigger-event", h.DebugTriggerEvent)
}
