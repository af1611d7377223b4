package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"longevity-frame/internal/app"
	"longevity-frame/internal/domain"
)

const wsWriteTimeout = 10 * time.Second

type WSHandler struct {
	scores   *app.ScoreService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(scores *app.ScoreService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		scores: scores,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type wsErrorPayload struct {
	Message string `json:"message"`
}

// ServeWS streams the leaderboard: one snapshot on connect and another after
// every saved score. Inbound messages are read only to notice the close.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", app.DefaultLeaderboardLimit)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.scores.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					return
				}
				msg := h.snapshot(r, limit)
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) snapshot(r *http.Request, limit int) outboundMessage[any] {
	entries, err := h.scores.Leaderboard(r.Context(), limit)
	if err != nil {
		h.log.Warn("ws leaderboard", zap.Error(err))
		return outboundMessage[any]{Type: "error", Payload: wsErrorPayload{Message: "leaderboard unavailable"}}
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return outboundMessage[any]{Type: "leaderboard", Payload: entries}
}
