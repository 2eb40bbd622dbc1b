package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const (
	wsDefaultWriteTimeout = 5 * time.Second

	// Origin policy defaults: origin is checked, and only localhost is
	// allowed out of the box (secure-by-default for dev).
	wsDefaultAllowedOrigins = "localhost,127.0.0.1"
)

// Gateway is the websocket entrypoint for the post-event feed.
type Gateway struct {
	log *slog.Logger
	hub *Hub

	originPatterns []string
	writeTimeout   time.Duration
}

// NewGateway constructs a gateway. allowedOrigins is a comma-separated list
// of origin host patterns; empty means the localhost defaults.
func NewGateway(log *slog.Logger, hub *Hub, allowedOrigins string) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if hub == nil {
		hub = NewHub(log)
	}
	if strings.TrimSpace(allowedOrigins) == "" {
		allowedOrigins = wsDefaultAllowedOrigins
	}

	patterns := make([]string, 0, 4)
	for _, p := range strings.Split(allowedOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	return &Gateway{
		log:            log,
		hub:            hub,
		originPatterns: patterns,
		writeTimeout:   wsDefaultWriteTimeout,
	}
}

// HandleWS upgrades the connection and streams events until the client
// disconnects or the server shuts down.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Warn("feed.ws.accept.fail", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	// CloseRead drains incoming frames (the feed is one-way) and cancels the
	// returned context when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	id, events := g.hub.Subscribe()
	defer g.hub.Unsubscribe(id)

	g.log.Info("feed.ws.open", "subscriber", id, "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			g.log.Info("feed.ws.close", "subscriber", id)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "hub closed")
				return
			}
			if err := g.write(ctx, conn, ev); err != nil {
				g.log.Warn("feed.ws.write.fail", "subscriber", id, "err", err)
				return
			}
		}
	}
}

func (g *Gateway) write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()

	return conn.Write(wctx, websocket.MessageText, data)
}
