package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	formatJSON  = "json"
	formatProto = "proto"

	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveConn writes stream frames in the format the client asked for.
type liveConn struct {
	conn   *websocket.Conn
	format string
}

func (lc *liveConn) send(msg streamMsg) error {
	_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if lc.format == formatProto {
		data, err := encodeProto(msg)
		if err != nil {
			return err
		}
		return lc.conn.WriteMessage(websocket.BinaryMessage, data)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return lc.conn.WriteMessage(websocket.TextMessage, data)
}

// serveWS streams snapshots of one battle until it ends or the client goes
// away. The last frame carries the result.
func serveWS(h *Hub, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format := strings.ToLower(query.Get("format"))
	if format != formatProto {
		format = formatJSON
	}
	lb, err := h.Get(query.Get("battle"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	lc := &liveConn{conn: conn, format: format}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client only talks to close the stream
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshots, unsubscribe := lb.Subscribe()
	defer unsubscribe()

	first := lb.Battle.Snapshot()
	if err := lc.send(streamMsg{Type: msgSnapshot, Battle: lb.ID, Snapshot: &first}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snapshots:
			if err := lc.send(streamMsg{Type: msgSnapshot, Battle: lb.ID, Snapshot: &snap}); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Debug("stream closed", "battle", lb.ID, "error", err)
				}
				return
			}
		case <-lb.Done():
			res := lb.Result()
			_ = lc.send(streamMsg{Type: msgResult, Battle: lb.ID, Result: &res})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle over"),
				time.Now().Add(writeWait))
			return
		}
	}
}
