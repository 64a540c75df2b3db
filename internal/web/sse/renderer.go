package sse

import (
	"context"
	"encoding/json"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/web/templates/components"
	"github.com/mcoot/registrar/internal/web/templates/render"
)

// Event names sent on the roster stream
const (
	EventRosterUpdate    = "roster-update"
	EventRegistrantAdded = "registrant-added"
)

// EventData is one named SSE event ready to broadcast
type EventData struct {
	EventName string
	Data      string
}

// RegistrantAddedPayload is the JSON body of a registrant-added event
type RegistrantAddedPayload struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Position    int    `json:"position"`
	RosterCount int    `json:"roster_count"`
}

// Renderer turns roster changes into SSE events
type Renderer struct {
	showPasswords bool
}

// NewRenderer creates a new Renderer
func NewRenderer(showPasswords bool) *Renderer {
	return &Renderer{showPasswords: showPasswords}
}

// RenderRoster renders the registrant table fragment
func (r *Renderer) RenderRoster(ctx context.Context, registrants []model.Registrant) (string, error) {
	return render.ToString(ctx, components.RegistrantTable(registrants, r.showPasswords))
}

// RenderRegistrantAdded returns the table refresh for browsers and a JSON
// summary for programmatic listeners
func (r *Renderer) RenderRegistrantAdded(ctx context.Context, added model.Registrant, roster []model.Registrant) ([]EventData, error) {
	html, err := r.RenderRoster(ctx, roster)
	if err != nil {
		return nil, err
	}

	position := -1
	for i := range roster {
		if roster[i].ID == added.ID {
			position = i
			break
		}
	}
	payload, err := json.Marshal(RegistrantAddedPayload{
		ID:          string(added.ID),
		FirstName:   added.FirstName,
		LastName:    added.LastName,
		Email:       added.Email,
		Position:    position,
		RosterCount: len(roster),
	})
	if err != nil {
		return nil, err
	}

	return []EventData{
		{EventName: EventRosterUpdate, Data: html},
		{EventName: EventRegistrantAdded, Data: string(payload)},
	}, nil
}
