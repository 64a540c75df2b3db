package sse

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/testutil"
)

type fakeRoster struct {
	registrants []model.Registrant
	err         error
}

func (f *fakeRoster) List(context.Context) ([]model.Registrant, error) {
	return f.registrants, f.err
}

func roster() []model.Registrant {
	dob := time.Date(1999, 3, 4, 0, 0, 0, 0, time.UTC)
	return []model.Registrant{
		{ID: "r-1", FirstName: "Avi", LastName: "Adams", Email: "avi@tau.ac.il", DateOfBirth: dob, Gender: model.GenderMale},
		{ID: "r-2", FirstName: "Dana", LastName: "Levi", Email: "dana@huji.ac.il", DateOfBirth: dob, Gender: model.GenderFemale,
			Password: "Secret123", PasswordStorage: model.PasswordStorageInsecurePlaintext},
	}
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestRenderer_RenderRegistrantAdded(t *testing.T) {
	r := NewRenderer(false)
	list := roster()

	events, err := r.RenderRegistrantAdded(context.Background(), list[1], list)
	if err != nil {
		t.Fatalf("RenderRegistrantAdded() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].EventName != EventRosterUpdate {
		t.Errorf("first event = %q, want %q", events[0].EventName, EventRosterUpdate)
	}
	if !strings.Contains(events[0].Data, "Levi") || !strings.Contains(events[0].Data, "Adams") {
		t.Errorf("roster html missing rows: %s", events[0].Data)
	}
	if strings.Contains(events[0].Data, "Secret123") {
		t.Errorf("password leaked into roster html: %s", events[0].Data)
	}

	var payload RegistrantAddedPayload
	if err := json.Unmarshal([]byte(events[1].Data), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.ID != "r-2" || payload.Position != 1 || payload.RosterCount != 2 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestRenderer_ShowsPasswordsWhenEnabled(t *testing.T) {
	html, err := NewRenderer(true).RenderRoster(context.Background(), roster())
	if err != nil {
		t.Fatalf("RenderRoster() error = %v", err)
	}
	if !strings.Contains(html, "Secret123") {
		t.Errorf("expected plaintext password column: %s", html)
	}
}

func TestBroadcaster_RegistrantAdded(t *testing.T) {
	hub := newRunningHub(t)
	list := roster()
	broadcaster := NewBroadcaster(hub, &fakeRoster{registrants: list}, NewRenderer(false), testutil.NopLogger())

	client := NewClient("client1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	broadcaster.RegistrantAdded(context.Background(), list[0])

	first := receive(t, client)
	if !strings.HasPrefix(first, "event: roster-update\n") {
		t.Errorf("first message = %q, want roster-update", first)
	}
	if !strings.Contains(first, "Adams") {
		t.Errorf("roster-update missing registrant: %s", first)
	}

	second := receive(t, client)
	if !strings.HasPrefix(second, "event: registrant-added\n") {
		t.Errorf("second message = %q, want registrant-added", second)
	}
	if !strings.Contains(second, `"position":0`) {
		t.Errorf("registrant-added missing position: %s", second)
	}
}

func TestBroadcaster_RosterErrorSendsNothing(t *testing.T) {
	hub := newRunningHub(t)
	broadcaster := NewBroadcaster(hub, &fakeRoster{err: errors.New("boom")}, NewRenderer(false), testutil.NopLogger())

	client := NewClient("client1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	broadcaster.RegistrantAdded(context.Background(), roster()[0])

	select {
	case msg := <-client.send:
		t.Errorf("unexpected message %q", string(msg))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_NoClientsSkipsWork(t *testing.T) {
	hub := newRunningHub(t)
	source := &fakeRoster{err: errors.New("should not be called")}
	broadcaster := NewBroadcaster(hub, source, NewRenderer(false), testutil.NopLogger())

	// Nothing connected: returns without listing
	broadcaster.RegistrantAdded(context.Background(), roster()[0])
}
