package conversation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/wolfman30/survey-assistant/internal/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wsOutbound struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Stage   session.Stage `json:"stage,omitempty"`
	Code    string        `json:"code,omitempty"`
}

// ServeWS handles GET /ws/chat/{sessionID}. Each inbound message frame
// advances the conversation by one turn.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		h.logger.Warn("websocket set read deadline failed", "session_id", sessionID, "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	push := func(out wsOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	sess, err := h.service.Snapshot(ctx, sessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		push(wsOutbound{Type: "greeting", Message: h.service.Greeting(), Stage: session.StageLanguageSelect})
	case err != nil:
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		push(wsOutbound{Type: "error", Code: "internal", Message: "failed to load session"})
	default:
		push(wsOutbound{Type: "resumed", Stage: sess.Stage})
	}

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(wsOutbound{Type: "pong"})
		case "message":
			reply, err := h.service.ProcessTurn(ctx, sessionID, in.Text)
			if err != nil {
				h.logger.Error("failed to process message", "session_id", sessionID, "error", err)
				failure := ClassifyError(err)
				push(wsOutbound{Type: "error", Code: failure.Code, Message: failure.Message})
				continue
			}
			push(wsOutbound{Type: "reply", Message: reply.Message, Stage: reply.Stage})
		default:
			push(wsOutbound{Type: "error", Code: "invalid_argument", Message: "type must be message or ping"})
		}
	}
}
