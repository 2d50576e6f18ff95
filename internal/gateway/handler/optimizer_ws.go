package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"workshophub/internal/gateway/middleware"
	"workshophub/internal/optimizer"
)

const (
	optimizerWSWriteWait = 10 * time.Second
	optimizerWSPongWait  = 60 * time.Second
	optimizerWSPingEvery = (optimizerWSPongWait * 9) / 10
)

// newOptimizerWSUpgrader admits the same browser origins as the CORS
// middleware. Requests without an Origin header come from non-browser clients.
func newOptimizerWSUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
		},
	}
}

type optimizerWSInbound struct {
	Type       string `json:"type"`
	APIKey     string `json:"apiKey,omitempty"`
	Workflow   string `json:"workflow,omitempty"`
	PainPoints string `json:"painPoints,omitempty"`
}

type optimizerWSOutbound struct {
	Type     string              `json:"type"`
	Snapshot *optimizer.Snapshot `json:"snapshot,omitempty"`
	Code     string              `json:"code,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// HandleWS streams snapshots of the session's machine and accepts the same
// actions as the JSON endpoints.
func (h *OptimizerHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(optimizerWSPongWait)); err != nil {
		slog.WarnContext(ctx, "optimizer ws set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(optimizerWSPongWait))
	})

	writeCh := make(chan optimizerWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(optimizerWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(optimizerWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(optimizerWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	subCh, subErr := h.svc.Subscribe(ctx, sessionID)
	if subErr != nil {
		pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "error", Code: "internal", Message: subErr.Error()})
		cancel()
		<-writerDone
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-subCh:
				if !ok {
					cancel()
					_ = conn.Close()
					return
				}
				pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "snapshot", Snapshot: &snap})
			}
		}
	}()

	for {
		var in optimizerWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		var actErr error
		switch msgType := strings.ToLower(strings.TrimSpace(in.Type)); msgType {
		case "ping":
			pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "pong"})
			continue
		case "select_credential":
			_, actErr = h.svc.SelectCredential(ctx, sessionID, in.APIKey)
		case "reset_credential":
			_, actErr = h.svc.ResetCredential(ctx, sessionID)
		case "submit":
			// Submit blocks for the model call; snapshots keep flowing meanwhile.
			go func(in optimizerWSInbound) {
				if _, err := h.svc.Submit(ctx, sessionID, in.Workflow, in.PainPoints); err != nil {
					pushOptimizerError(writeCh, err)
				}
			}(in)
			continue
		case "":
			pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
			continue
		default:
			pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + msgType})
			continue
		}
		if actErr != nil {
			pushOptimizerError(writeCh, actErr)
		}
	}
}

func pushOptimizerError(writeCh chan optimizerWSOutbound, err error) {
	_, code := optimizerStatus(err)
	pushOptimizerWS(writeCh, optimizerWSOutbound{Type: "error", Code: code, Message: optimizerErrorMessage(err)})
}

func pushOptimizerWS(writeCh chan optimizerWSOutbound, out optimizerWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
