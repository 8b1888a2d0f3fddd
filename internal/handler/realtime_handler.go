package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/realtime"
)

// RealtimeHandler wires the websocket upgrade for event subscriptions.
type RealtimeHandler struct {
	hub    *realtime.Hub
	logger zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler instance.
func NewRealtimeHandler(hub *realtime.Hub, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
// Clients subscribe with ?channel=<type>&id=<id>; unknown types land on
// the general channel.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	role := fmt.Sprint(conn.Locals("user_role"))
	channel := realtime.ResolveChannel(conn.Query("channel"), conn.Query("id"))

	if channel.Admin() && !isPrivilegedRole(role) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusForbidden, "admin channel requires elevated role"))
		_ = conn.Close()
		return
	}

	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	h.hub.ServeConnection(conn, realtime.ConnectionOptions{
		UserID:  userID,
		Role:    role,
		Channel: channel,
		Context: baseCtx,
	})
}

func isPrivilegedRole(role string) bool {
	switch strings.ToLower(role) {
	case "admin", "tutor", "teacher":
		return true
	default:
		return false
	}
}

// websocketUserID extracts the authenticated user ID stashed by the JWT
// middleware before the upgrade.
func websocketUserID(conn *websocket.Conn) string {
	switch value := conn.Locals("user_id").(type) {
	case uint:
		return fmt.Sprintf("%d", value)
	case string:
		return strings.TrimSpace(value)
	default:
		return ""
	}
}
