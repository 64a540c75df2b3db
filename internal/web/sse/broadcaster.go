package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/registrar/internal/model"
)

// RosterSource lists the current roster
type RosterSource interface {
	List(ctx context.Context) ([]model.Registrant, error)
}

// Broadcaster pushes roster changes to SSE clients
type Broadcaster struct {
	hub      *Hub
	roster   RosterSource
	renderer *Renderer
	logger   *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, roster RosterSource, renderer *Renderer, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		roster:   roster,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// RegistrantAdded re-renders the roster and broadcasts it
func (b *Broadcaster) RegistrantAdded(ctx context.Context, added model.Registrant) {
	if b.hub.ClientCount() == 0 {
		return
	}

	roster, err := b.roster.List(ctx)
	if err != nil {
		b.logger.Error("sse failed to load roster", slog.Any("error", err))
		return
	}

	events, err := b.renderer.RenderRegistrantAdded(ctx, added, roster)
	if err != nil {
		b.logger.Error("sse failed to render roster", slog.Any("error", err))
		return
	}

	for _, e := range events {
		b.hub.BroadcastEvent(e.EventName, e.Data)
	}
}
