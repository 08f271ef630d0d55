// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/arcade/internal/middleware"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
	readLimit    = 64 << 10
)

// WSOptions configures the websocket endpoint.
type WSOptions struct {
	OriginPatterns []string
	OutboxSize     int
}

// WSHandler upgrades the request and attaches the socket to the hub. The
// client authenticates with its first auth event; until then every other
// event is rejected by the hub with NotAuthenticated.
func WSHandler(logger logrus.FieldLogger, hub *session.Hub, opts WSOptions) http.HandlerFunc {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 32
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept failed")
			return
		}
		ws.SetReadLimit(readLimit)

		conn := session.NewConn(r.RemoteAddr, opts.OutboxSize, logger)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			writePump(ctx, ws, conn, logger)
		}()

		err = readPump(ctx, ws, conn, hub)
		hub.Disconnect(conn)
		cancel()
		<-writerDone
		ws.CloseNow()

		if s := websocket.CloseStatus(err); s == websocket.StatusNormalClosure || s == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
			err = nil
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readPump forwards text frames to the hub until the socket fails.
func readPump(ctx context.Context, ws *websocket.Conn, conn *session.Conn, hub *session.Hub) error {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			conn.WriteError(models.CodeInvalidPayload, "only text frames are accepted")
			continue
		}
		hub.Dispatch(conn, data)
	}
}

// writePump drains the connection's outbox onto the socket and keeps it
// alive with pings. When the hub closes the connection, queued frames are
// flushed before the close frame is sent.
func writePump(ctx context.Context, ws *websocket.Conn, conn *session.Conn, logger logrus.FieldLogger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			flush(ctx, ws, conn, logger)
			code, reason := conn.CloseReason()
			_ = ws.Close(closeStatus(code), reason)
			return
		case msg := <-conn.OutChan:
			if err := writeMessage(ctx, ws, msg); err != nil {
				logger.WithFields(logrus.Fields{"conn": conn.ID, "type": msg.Type}).WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).WithError(err).Debug("websocket ping failed")
				return
			}
		}
	}
}

func flush(ctx context.Context, ws *websocket.Conn, conn *session.Conn, logger logrus.FieldLogger) {
	for {
		select {
		case msg := <-conn.OutChan:
			if err := writeMessage(ctx, ws, msg); err != nil {
				logger.WithField("conn", conn.ID).WithError(err).Debug("websocket flush failed")
				return
			}
		default:
			return
		}
	}
}

func writeMessage(ctx context.Context, ws *websocket.Conn, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}
