package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"mikromatter/internal/cache"
	"mikromatter/internal/middleware"
	"mikromatter/internal/models"
	"mikromatter/internal/notifications"
)

// IssueWSTicket issues a short-lived, single-use ticket for the websocket
// upgrade. Browsers cannot set an Authorization header on the upgrade request,
// so the client passes the ticket as a query parameter instead.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Real-time feed is not available"))
	}

	ticket := uuid.NewString()
	key := cache.WSTicketKey(ticket)
	if err := s.redis.Set(c.Context(), key, currentUserID(c), cache.WSTicketTTL).Err(); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// WebsocketHandler handles feed connections. Clients receive new_post events
// as they happen; the only inbound message type is a ping for liveness checks.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		// Set by AuthRequired before the upgrade
		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(string)
		if !ok || userID == "" {
			middleware.Logger.Warn("websocket upgrade without authenticated user")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"unauthorized"}}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", "user_id", userID)

		client.IncomingHandler = func(cl *notifications.Client, message []byte) {
			var incoming FeedEvent
			if err := json.Unmarshal(message, &incoming); err != nil {
				return
			}
			if incoming.Type == "ping" {
				if pong, err := json.Marshal(FeedEvent{Type: "pong"}); err == nil {
					cl.TrySend(pong)
				}
			}
		}

		if welcome, err := json.Marshal(FeedEvent{
			Type:    "connected",
			Payload: map[string]string{"user_id": userID},
		}); err == nil {
			client.TrySend(welcome)
		}

		// Write pump in a goroutine; read pump blocks until disconnect and
		// unregisters the client on exit.
		go client.WritePump()
		client.ReadPump()

		middleware.Logger.Info("websocket disconnected", "user_id", userID)
	})
}
