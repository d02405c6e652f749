// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/house"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/lib/sqlitepool"
	"github.com/foyer-foundation/foyer/overmind"
	"github.com/foyer-foundation/foyer/prompter"
	"github.com/foyer-foundation/foyer/room"
	"github.com/foyer-foundation/foyer/rooms/analysis"
	"github.com/foyer-foundation/foyer/rooms/history"
	"github.com/foyer-foundation/foyer/rooms/interpret"
	"github.com/foyer-foundation/foyer/rooms/prompt"
	"github.com/foyer-foundation/foyer/session"
	"github.com/foyer-foundation/foyer/transport"
)

const hubID dialog.ClientID = 1

// hub is a fully assembled in-process hub: sqlite-backed stores,
// memory channels, websocket gateway, built-in rooms plus any extra
// test rooms, coordinator, and house, driven by a fake clock.
type hub struct {
	house   *house.House
	gateway *transport.WSGateway
	history *history.Room
	clock   *clock.FakeClock
}

func startHub(t *testing.T, extraRooms ...room.Room) *hub {
	t.Helper()
	ctx := context.Background()

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path: filepath.Join(t.TempDir(), "foyer.db"),
	})
	if err != nil {
		t.Fatalf("sqlitepool.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	fakeClock := clock.Fake(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	sessions, err := session.OpenStore(ctx, session.StoreConfig{Pool: pool, Clock: fakeClock})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	historyRoom, err := history.Open(ctx, history.Config{Pool: pool, Clock: fakeClock})
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}

	registry := room.NewRegistry(nil)
	registry.Register(interpret.New())
	registry.Register(analysis.New([]analysis.Rule{
		{Intent: "light-on", Confidence: 0.9, Triggers: []string{"light", "lamp"}},
		{Intent: "greeting", Confidence: 0.5, Triggers: []string{"hello", "hi"}},
	}))
	registry.Register(historyRoom)
	registry.Register(prompt.New(""))
	for _, extra := range extraRooms {
		registry.Register(extra)
	}

	inbound := transport.NewMemoryChannel(nil)
	outbound := transport.NewMemoryChannel(nil)
	t.Cleanup(func() { inbound.Close() })
	t.Cleanup(func() { outbound.Close() })

	h := &house.House{
		Hub:             hubID,
		WorkingLanguage: "eng",
		Inbound:         inbound,
		Outbound:        outbound,
		Sessions:        sessions,
		Clock:           fakeClock,
	}
	h.Pipeline = &overmind.Coordinator{
		Hub:             hubID,
		WorkingLanguage: "eng",
		Registry:        registry,
		Outbound:        h,
	}
	h.Prompter = prompter.New(prompter.Config{
		Enabled:      true,
		InitialDelay: 2 * time.Minute,
		RepeatDelay:  time.Minute,
	}, fakeClock, hubID, h.InjectRequest, nil)

	if err := h.Start(ctx); err != nil {
		t.Fatalf("house Start: %v", err)
	}
	t.Cleanup(h.Stop)

	gateway := &transport.WSGateway{
		ListenAddr: "127.0.0.1:0",
		Inbound:    inbound,
		Outbound:   outbound,
		IssueID:    sessions.NextClientID,
	}
	if err := gateway.Start(ctx); err != nil {
		t.Fatalf("gateway Start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gateway.Stop(stopCtx)
	})

	return &hub{house: h, gateway: gateway, history: historyRoom, clock: fakeClock}
}

// station is one websocket client attached to the hub's gateway.
type station struct {
	t  *testing.T
	ws *websocket.Conn
	id dialog.ClientID
}

func (h *hub) connect(t *testing.T, id dialog.ClientID) *station {
	t.Helper()
	url := fmt.Sprintf("ws://%s/channel?client_id=%s", h.gateway.Addr(), id)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing gateway: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return &station{t: t, ws: ws, id: id}
}

func (s *station) sendRequest(request dialog.Request) {
	s.t.Helper()
	frame, err := dialog.EncodeRequest(&request)
	if err != nil {
		s.t.Fatalf("EncodeRequest: %v", err)
	}
	if err := s.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		s.t.Fatalf("WriteMessage: %v", err)
	}
}

func (s *station) sendLine(text string) {
	s.t.Helper()
	line := dialog.FormatText(s.id, text)
	if err := s.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		s.t.Fatalf("WriteMessage: %v", err)
	}
}

// readResponse blocks until the station receives a decoded binary
// response frame.
func (s *station) readResponse(timeout time.Duration) dialog.Response {
	s.t.Helper()
	s.ws.SetReadDeadline(time.Now().Add(timeout))
	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			s.t.Fatalf("ReadMessage: %v", err)
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		envelope, err := dialog.DecodeEnvelope(data)
		if err != nil {
			s.t.Fatalf("DecodeEnvelope: %v", err)
		}
		response, err := envelope.DecodeResponse()
		if err != nil {
			s.t.Fatalf("DecodeResponse: %v", err)
		}
		return response
	}
}

// readLine blocks until the station receives a text-channel line and
// returns its payload.
func (s *station) readLine(timeout time.Duration) string {
	s.t.Helper()
	s.ws.SetReadDeadline(time.Now().Add(timeout))
	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			s.t.Fatalf("ReadMessage: %v", err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_, text, err := dialog.ParseText(string(data))
		if err != nil {
			s.t.Fatalf("ParseText: %v", err)
		}
		return text
	}
}

// expectSilence fails if any frame arrives within the window.
func (s *station) expectSilence(window time.Duration) {
	s.t.Helper()
	s.ws.SetReadDeadline(time.Now().Add(window))
	if _, data, err := s.ws.ReadMessage(); err == nil {
		s.t.Fatalf("unexpected frame: %q", data)
	}
}

// scriptedRoom answers a single intent with a fixed message.
type scriptedRoom struct {
	name    string
	intent  dialog.Intent
	message string
}

func (r *scriptedRoom) Name() string             { return r.name }
func (r *scriptedRoom) Intents() []dialog.Intent { return []dialog.Intent{r.intent} }

func (r *scriptedRoom) Act(ctx context.Context, intent dialog.Intent, request dialog.Request) ([]dialog.ActionPackage, error) {
	return []dialog.ActionPackage{{Intent: intent, Message: r.message}}, nil
}
