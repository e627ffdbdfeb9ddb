package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/tilekeeper/internal/api/response"
	"github.com/mcoot/tilekeeper/internal/model"
)

// Broadcaster turns game events into SSE messages for the game's watchers
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends the event to everyone watching the game. Games nobody is
// watching have no hub and the event is dropped. A deleted game's hub is
// closed after the event goes out.
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.hubManager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))

	if event.Type == model.EventGameDeleted {
		b.hubManager.RemoveHub(event.GameID)
	}
}
