package server

import (
	"context"
	"encoding/json"

	"mikromatter/internal/middleware"
	"mikromatter/internal/models"
	"mikromatter/internal/observability"
)

// FeedEvent is the envelope for every message pushed over the feed socket.
type FeedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// broadcastNewPost fans a freshly created post out to every connected client.
// With Redis available the event goes through the Notifier so all server
// instances deliver it; otherwise it is delivered to local connections only.
func (s *Server) broadcastNewPost(ctx context.Context, post *models.Post) {
	event := FeedEvent{Type: "new_post", Payload: post}
	data, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("failed to marshal feed event", "error", err, "post_id", post.ID)
		return
	}

	observability.BroadcastEvents.WithLabelValues(event.Type).Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(ctx, string(data)); err != nil {
			middleware.Logger.Error("failed to publish feed event", "error", err, "post_id", post.ID)
		}
		return
	}

	s.hub.BroadcastAll(string(data))
}
