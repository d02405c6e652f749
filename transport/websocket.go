// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foyer-foundation/foyer/dialog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSGateway attaches websocket stations to the hub's channel pair. A
// station connects to /channel?client_id=N; binary frames from its
// socket are published on the inbound byte channel, text frames on
// the inbound string channel. In the other direction, the gateway
// subscribes to both outbound streams and forwards each frame to the
// station(s) its routing header names.
type WSGateway struct {
	// ListenAddr is the TCP address to serve websocket upgrades on
	// (e.g. "127.0.0.1:7311").
	ListenAddr string

	// Inbound is the fabric station frames are published on.
	Inbound Channel

	// Outbound is the fabric hub responses arrive on.
	Outbound Channel

	// MaxFrameBytes caps a single inbound websocket frame. Zero
	// means 1 MiB.
	MaxFrameBytes int64

	// IssueID mints a client id for a station that connects without
	// one. Optional; without it such connections are rejected with
	// HTTP 400. The assigned id is announced to the station as the
	// text frame "<id>::client-id" before any other traffic.
	IssueID func(ctx context.Context) (dialog.ClientID, error)

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	listener  net.Listener
	server    *http.Server
	binarySub *Subscription[[]byte]
	textSub   *Subscription[string]
	forwards  sync.WaitGroup

	mu       sync.Mutex
	stations map[dialog.ClientID]map[*stationConn]struct{}
}

// stationConn is one connected websocket station. gorilla/websocket
// allows a single concurrent writer, hence the write mutex.
type stationConn struct {
	id      dialog.ClientID
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *stationConn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

func (g *WSGateway) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Start binds the listener, subscribes to both channel streams, and
// begins serving station connections. Returns once the listener is
// accepting.
func (g *WSGateway) Start(ctx context.Context) error {
	if g.ListenAddr == "" {
		return fmt.Errorf("transport: ListenAddr is required")
	}
	if g.Inbound == nil || g.Outbound == nil {
		return fmt.Errorf("transport: Inbound and Outbound channels are required")
	}

	listener, err := net.Listen("tcp", g.ListenAddr)
	if err != nil {
		return fmt.Errorf("transport: listening on %s: %w", g.ListenAddr, err)
	}
	g.listener = listener
	g.stations = make(map[dialog.ClientID]map[*stationConn]struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/channel", g.handleStation)
	g.server = &http.Server{Handler: mux}

	g.binarySub = g.Outbound.SubscribeBinary()
	g.textSub = g.Outbound.SubscribeText()

	g.forwards.Add(2)
	go g.forwardBinary()
	go g.forwardText()

	go func() {
		if err := g.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			g.logger().Error("gateway serve failed", "error", err)
		}
	}()

	g.logger().Info("websocket gateway started", "listen_addr", listener.Addr().String())
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
func (g *WSGateway) Addr() net.Addr {
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Stop unsubscribes from the channel, closes the listener, and drops
// all station connections.
func (g *WSGateway) Stop(ctx context.Context) error {
	if g.binarySub != nil {
		g.binarySub.Cancel()
	}
	if g.textSub != nil {
		g.textSub.Cancel()
	}
	g.forwards.Wait()

	var err error
	if g.server != nil {
		err = g.server.Shutdown(ctx)
	}

	g.mu.Lock()
	for _, conns := range g.stations {
		for conn := range conns {
			conn.ws.Close()
		}
	}
	g.stations = make(map[dialog.ClientID]map[*stationConn]struct{})
	g.mu.Unlock()

	g.logger().Info("websocket gateway stopped")
	return err
}

// handleStation upgrades one station connection and pumps its frames
// onto the channel until the socket closes.
func (g *WSGateway) handleStation(w http.ResponseWriter, r *http.Request) {
	id, err := dialog.ParseClientID(r.URL.Query().Get("client_id"))
	issued := false
	if err != nil || !id.IsSet() {
		if g.IssueID == nil {
			http.Error(w, "client_id query parameter required", http.StatusBadRequest)
			return
		}
		id, err = g.IssueID(r.Context())
		if err != nil {
			g.logger().Error("client id issuance failed", "error", err)
			http.Error(w, "cannot issue client id", http.StatusInternalServerError)
			return
		}
		issued = true
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	conn := &stationConn{id: id, ws: ws}
	if issued {
		assignment := dialog.FormatText(id, "client-id")
		if err := conn.write(websocket.TextMessage, []byte(assignment)); err != nil {
			ws.Close()
			return
		}
		g.logger().Info("issued client id", "client_id", id, "remote_addr", ws.RemoteAddr())
	}
	g.register(conn)
	defer func() {
		g.unregister(conn)
		ws.Close()
	}()

	maxFrame := g.MaxFrameBytes
	if maxFrame <= 0 {
		maxFrame = 1 << 20
	}
	ws.SetReadLimit(maxFrame)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.write(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	g.logger().Debug("station connected", "client_id", id, "remote_addr", ws.RemoteAddr())

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			g.logger().Debug("station disconnected", "client_id", id, "error", err)
			return
		}
		switch messageType {
		case websocket.BinaryMessage:
			if err := g.Inbound.PublishBinary(r.Context(), data); err != nil {
				g.logger().Warn("publish binary failed", "client_id", id, "error", err)
			}
		case websocket.TextMessage:
			if err := g.Inbound.PublishText(r.Context(), string(data)); err != nil {
				g.logger().Warn("publish text failed", "client_id", id, "error", err)
			}
		}
	}
}

func (g *WSGateway) register(conn *stationConn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stations[conn.id] == nil {
		g.stations[conn.id] = make(map[*stationConn]struct{})
	}
	g.stations[conn.id][conn] = struct{}{}
}

func (g *WSGateway) unregister(conn *stationConn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.stations[conn.id]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(g.stations, conn.id)
	}
}

// targets snapshots the connections a frame addressed to id should
// reach. Broadcast frames reach every connected station.
func (g *WSGateway) targets(id dialog.ClientID) []*stationConn {
	g.mu.Lock()
	defer g.mu.Unlock()

	var conns []*stationConn
	if id == dialog.Broadcast {
		for _, set := range g.stations {
			for conn := range set {
				conns = append(conns, conn)
			}
		}
		return conns
	}
	for conn := range g.stations[id] {
		conns = append(conns, conn)
	}
	return conns
}

// forwardBinary routes outbound byte-channel frames to the stations
// their envelope header names. Frames addressed to ids with no
// connected station are dropped here.
func (g *WSGateway) forwardBinary() {
	defer g.forwards.Done()
	for frame := range g.binarySub.C {
		envelope, err := dialog.DecodeEnvelope(frame)
		if err != nil {
			g.logger().Debug("undecodable frame on byte channel", "error", err)
			continue
		}
		for _, conn := range g.targets(envelope.To) {
			if err := conn.write(websocket.BinaryMessage, frame); err != nil {
				g.logger().Debug("station write failed", "client_id", conn.id, "error", err)
			}
		}
	}
}

// forwardText routes outbound string-channel lines by their
// "clientID::" prefix.
func (g *WSGateway) forwardText() {
	defer g.forwards.Done()
	for line := range g.textSub.C {
		id, _, err := dialog.ParseText(line)
		if err != nil {
			g.logger().Debug("undecodable line on text channel", "error", err)
			continue
		}
		for _, conn := range g.targets(id) {
			if err := conn.write(websocket.TextMessage, []byte(line)); err != nil {
				g.logger().Debug("station write failed", "client_id", conn.id, "error", err)
			}
		}
	}
}
