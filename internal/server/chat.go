package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/render"
)

const socketWriteWait = 10 * time.Second

// Socket payload types.
const (
	socketMessage = "message"
	socketPending = "pending"
	socketError   = "error"
)

type socketPayload struct {
	Type    string              `json:"type"`
	Message *render.ChatMessage `json:"message,omitempty"`
	Pending bool                `json:"pending"`
	Error   string              `json:"error,omitempty"`
}

type socketInput struct {
	Text string `json:"text"`
}

// handleChatSocket streams the visitor's conversation. Each message the bot
// appends is pushed with the pending flag that follows it; incoming frames
// are sent to the bot.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessions.lookup(r)
	if !ok {
		http.Error(w, "session required", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	bot := s.sessions.bot(v)
	messages, unsubscribe := v.subscribe()
	defer unsubscribe()

	var writeMu sync.Mutex
	write := func(payload socketPayload) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		return conn.WriteJSON(payload)
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		for {
			var in socketInput
			if err := conn.ReadJSON(&in); err != nil {
				return err
			}
			if _, err := bot.Send(ctx, in.Text); err != nil {
				if err := write(socketPayload{Type: socketError, Error: err.Error()}); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-s.closing:
				writeMu.Lock()
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(time.Second))
				writeMu.Unlock()
				return nil
			case msg := <-messages:
				view := render.NewChatView([]chat.Message{msg}, false, "").Messages[0]
				if err := write(socketPayload{Type: socketMessage, Message: &view}); err != nil {
					return err
				}
				if err := write(socketPayload{Type: socketPending, Pending: bot.Pending()}); err != nil {
					return err
				}
			}
		}
	})
	if err := g.Wait(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Debug("chat socket closed", zap.String("visitor", v.id), zap.Error(err))
	}
}
