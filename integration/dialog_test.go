// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/rooms/prompt"
	"github.com/foyer-foundation/foyer/session"
)

// waitFor polls until the condition holds or the deadline passes.
// Inbound frames travel through the house's worker pool, so state
// changes are observed, not awaited.
func waitFor(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (h *hub) waitForSession(t *testing.T, id dialog.ClientID) {
	t.Helper()
	waitFor(t, "session", func() bool {
		_, err := h.house.Sessions.Get(context.Background(), id)
		return err == nil
	})
}

// TestBinaryStationRoundTrip walks the full path: a station announces
// itself over the websocket, speaks one utterance, and receives
// exactly one reply composed by the room its words resolve to, with
// the exchange recorded in the history table.
func TestBinaryStationRoundTrip(t *testing.T) {
	h := startHub(t, &scriptedRoom{name: "lights", intent: "light-on", message: "Light is on."})
	s := h.connect(t, 7)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		PersonID: "p-1",
		Intents:  []dialog.Intent{dialog.IntentClientStartup},
	})
	h.waitForSession(t, 7)
	s.expectSilence(300 * time.Millisecond)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		PersonID: "p-1", Message: "turn on the light.",
	})

	response := s.readResponse(5 * time.Second)
	if response.To != 7 || response.Message != "Light is on." {
		t.Errorf("response = %+v", response)
	}
	s.expectSilence(300 * time.Millisecond)

	// The history side request runs in its own goroutine.
	var entries []dialog.HistoryRecord
	waitFor(t, "history entry", func() bool {
		stored, err := h.history.Recent(context.Background(), 7, 10)
		if err != nil || len(stored) == 0 {
			return false
		}
		entries = nil
		for _, entry := range stored {
			entries = append(entries, dialog.HistoryRecord{
				TicketID: entry.TicketID,
				Client:   entry.Client,
				PersonID: entry.PersonID,
				Message:  entry.Message,
				Reply:    entry.Reply,
			})
		}
		return true
	})
	if len(entries) != 1 {
		t.Fatalf("history = %+v, want one entry", entries)
	}
	entry := entries[0]
	if entry.TicketID == "" {
		t.Error("history entry has no ticket id")
	}
	if entry.Message != "turn on the light." || entry.Reply != "Light is on." || entry.PersonID != "p-1" {
		t.Errorf("history entry = %+v", entry)
	}
}

// TestUnknownUtteranceGetsProxyReply checks the fallback: words no
// rule matches resolve to nothing-to-do, which no room serves, so the
// hub answers with the proxy apology rather than staying silent.
func TestUnknownUtteranceGetsProxyReply(t *testing.T) {
	h := startHub(t)
	s := h.connect(t, 7)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		Intents: []dialog.Intent{dialog.IntentClientStartup},
	})
	h.waitForSession(t, 7)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		Message: "xyzzy frobnicate.",
	})

	response := s.readResponse(5 * time.Second)
	if response.Message != "Sorry, I have no answer for that." {
		t.Errorf("Message = %q, want proxy reply", response.Message)
	}
}

// TestTextStationLifecycle drives the simplified text channel end to
// end: bare command words for startup and shutdown, a greeting in
// between answered on the same channel.
func TestTextStationLifecycle(t *testing.T) {
	h := startHub(t, &scriptedRoom{name: "greeter", intent: "greeting", message: "Hello to you too."})
	s := h.connect(t, 8)

	s.sendLine("client-startup")
	h.waitForSession(t, 8)

	s.sendLine("hello there")
	if reply := s.readLine(5 * time.Second); reply != "Hello to you too." {
		t.Errorf("reply = %q", reply)
	}

	s.sendLine("client-shutdown")
	waitFor(t, "session removal", func() bool {
		_, err := h.house.Sessions.Get(context.Background(), 8)
		return errors.Is(err, session.ErrNotFound)
	})
}

// TestIdleNagReachesStation advances the fake clock past the idle
// threshold and expects the prompter's synthetic request to produce
// the built-in prompt room's reply at the station.
func TestIdleNagReachesStation(t *testing.T) {
	h := startHub(t)
	s := h.connect(t, 7)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		Intents: []dialog.Intent{dialog.IntentClientStartup},
	})
	h.waitForSession(t, 7)

	s.sendRequest(dialog.Request{
		From: 7, To: hubID, Language: "eng", Kind: dialog.KindBinary,
		Message: "xyzzy.",
	})
	// The first reply proves the request was processed and the
	// prompter armed.
	s.readResponse(5 * time.Second)

	h.clock.Advance(2 * time.Minute)

	nag := s.readResponse(5 * time.Second)
	if nag.To != 7 || nag.Message != prompt.DefaultMessage {
		t.Errorf("nag = %+v", nag)
	}
}

// TestIssuedIDStationCanTalk connects without a client id, adopts the
// id the gateway assigns, and completes a normal exchange with it.
func TestIssuedIDStationCanTalk(t *testing.T) {
	h := startHub(t, &scriptedRoom{name: "greeter", intent: "greeting", message: "Welcome."})

	url := fmt.Sprintf("ws://%s/channel", h.gateway.Addr())
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing gateway: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	id, text, err := dialog.ParseText(string(data))
	if err != nil || text != "client-id" {
		t.Fatalf("assignment frame = %q (%v)", data, err)
	}
	if id < 2 {
		t.Fatalf("issued id = %v, collides with the hub's reserved id", id)
	}

	s := &station{t: t, ws: ws, id: id}
	s.sendLine("client-startup")
	h.waitForSession(t, id)

	s.sendLine("hello")
	if reply := s.readLine(5 * time.Second); reply != "Welcome." {
		t.Errorf("reply = %q", reply)
	}
}
