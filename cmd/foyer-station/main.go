// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// foyer-station is a minimal interactive station client. It connects
// to the hub's websocket gateway, announces itself, forwards stdin
// lines as requests, and prints the hub's responses. With --text it
// speaks the simplified text channel instead of encoded frames.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var hubURL string
	var clientID int64
	var hubID int64
	var language string
	var stationID string
	var personID string
	var textMode bool

	flagSet := pflag.NewFlagSet("foyer-station", pflag.ContinueOnError)
	flagSet.StringVar(&hubURL, "hub", "ws://127.0.0.1:7311", "websocket URL of the hub gateway")
	flagSet.Int64Var(&clientID, "id", 0, "this station's client id (required)")
	flagSet.Int64Var(&hubID, "hub-id", 1, "the hub's client id")
	flagSet.StringVar(&language, "language", "eng", "station language (ISO 639)")
	flagSet.StringVar(&stationID, "station", "", "catalog station id to announce")
	flagSet.StringVar(&personID, "person", "", "person id to stamp on requests")
	flagSet.BoolVar(&textMode, "text", false, "speak the simplified text channel")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("foyer-station")
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if clientID <= 0 {
		return fmt.Errorf("--id is required and must be positive")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	endpoint, err := url.Parse(hubURL)
	if err != nil {
		return fmt.Errorf("parsing hub url: %w", err)
	}
	endpoint.Path = "/channel"
	endpoint.RawQuery = url.Values{"client_id": {dialog.ClientID(clientID).String()}}.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", endpoint.String(), err)
	}
	defer ws.Close()

	s := &stationClient{
		ws:       ws,
		id:       dialog.ClientID(clientID),
		hub:      dialog.ClientID(hubID),
		language: dialog.Language(language),
		station:  stationID,
		person:   personID,
		textMode: textMode,
	}

	if err := s.sendLifecycle(dialog.IntentClientStartup); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "connected to %s as client %d, type to talk\n", hubURL, clientID)

	go s.printResponses()

	// Shutdown on stdin EOF or an interrupt, whichever comes first.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return s.sendLifecycle(dialog.IntentClientShutdown)
			}
			if line == "" {
				continue
			}
			if err := s.sendMessage(line); err != nil {
				return err
			}
		case <-sigChan:
			return s.sendLifecycle(dialog.IntentClientShutdown)
		}
	}
}

type stationClient struct {
	ws       *websocket.Conn
	id       dialog.ClientID
	hub      dialog.ClientID
	language dialog.Language
	station  string
	person   string
	textMode bool
}

// sendLifecycle announces startup or shutdown. On the text channel the
// lifecycle travels as a bare command word.
func (s *stationClient) sendLifecycle(intent dialog.Intent) error {
	if s.textMode {
		return s.ws.WriteMessage(websocket.TextMessage,
			[]byte(dialog.FormatText(s.id, string(intent))))
	}
	return s.sendRequest(dialog.Request{
		From:      s.id,
		To:        s.hub,
		Language:  s.language,
		Kind:      dialog.KindBinary,
		StationID: s.station,
		PersonID:  s.person,
		Intents:   []dialog.Intent{intent},
	})
}

func (s *stationClient) sendMessage(text string) error {
	if s.textMode {
		return s.ws.WriteMessage(websocket.TextMessage,
			[]byte(dialog.FormatText(s.id, text)))
	}
	return s.sendRequest(dialog.Request{
		From:      s.id,
		To:        s.hub,
		Language:  s.language,
		Kind:      dialog.KindBinary,
		StationID: s.station,
		PersonID:  s.person,
		Message:   text,
	})
}

func (s *stationClient) sendRequest(request dialog.Request) error {
	frame, err := dialog.EncodeRequest(&request)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return s.ws.WriteMessage(websocket.BinaryMessage, frame)
}

// printResponses pumps hub frames to stdout until the socket closes.
func (s *stationClient) printResponses() {
	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			return
		}
		switch messageType {
		case websocket.TextMessage:
			_, text, err := dialog.ParseText(string(data))
			if err != nil {
				slog.Debug("undecodable text line", "error", err)
				continue
			}
			fmt.Println(text)
		case websocket.BinaryMessage:
			envelope, err := dialog.DecodeEnvelope(data)
			if err != nil {
				slog.Debug("undecodable frame", "error", err)
				continue
			}
			response, err := envelope.DecodeResponse()
			if err != nil {
				slog.Debug("frame is not a response", "error", err)
				continue
			}
			fmt.Println(response.Message)
			if response.Explanation != "" {
				fmt.Printf("  (%s)\n", response.Explanation)
			}
		}
	}
}
