package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "campus/internal/delivery/context"
	"campus/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10

	messageTypeSnapshot = "snapshot"
)

// StreamMessage is the envelope of every websocket frame.
type StreamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StreamHandler pushes store snapshots to websocket clients.
type StreamHandler struct {
	store    usecase.StoreUsecase
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler is the constructor for StreamHandler, injected by Fx.
func NewStreamHandler(store usecase.StoreUsecase, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The API listens on loopback for a local presentation layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream sends the current snapshot on connect and a fresh one after every change.
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("Websocket upgrade failed", slog.Any("error", err))

		return nil
	}
	defer conn.Close()

	logger := h.logger.With(slog.String("request_id", deliverycontext.GetRequestID(c)))

	updates, cancel := h.store.Subscribe()
	defer cancel()

	// The client never sends data; reading only surfaces pongs and the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn, h.store.Snapshot()); err != nil {
		logger.Debug("Stream closed before first snapshot", slog.Any("error", err))

		return nil
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return nil
			}
			if err := h.send(conn, snapshot); err != nil {
				logger.Debug("Stream write failed", slog.Any("error", err))

				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			logger.Debug("Stream client disconnected")

			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn, snapshot usecase.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

	return conn.WriteJSON(StreamMessage{Type: messageTypeSnapshot, Data: newSnapshotView(snapshot)})
}
