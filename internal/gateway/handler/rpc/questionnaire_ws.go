package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"

	qn "proposalflow/internal/questionnaire"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type       string          `json:"type"`
	QuestionID string          `json:"questionId,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Index      int             `json:"index,omitempty"`
}

type sessionWSOutbound struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId,omitempty"`
	Session   *qn.Snapshot `json:"session,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// HandleSessionWS streams snapshots of one questionnaire session and accepts
// navigation and answer commands over the same socket.
func (h *QuestionnaireHandler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		log.Printf("session ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
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
		pushSessionWS(writeCh, wsError(subErr))
		cancel()
		<-writerDone
		return
	}

	pushSessionWS(writeCh, sessionWSOutbound{Type: "subscribed", SessionID: sessionID})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-subCh:
				if !ok {
					return
				}
				pushSessionWS(writeCh, sessionWSOutbound{
					Type:      "snapshot",
					SessionID: sessionID,
					Session:   &snap,
				})
			}
		}
	}()

	for {
		var in sessionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		if msgType == "" {
			pushSessionWS(writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    connect.CodeInvalidArgument.String(),
				Message: "type is required",
			})
			continue
		}

		var opErr error
		switch msgType {
		case "ping":
			pushSessionWS(writeCh, sessionWSOutbound{Type: "pong"})
			continue
		case "answer":
			var answer any
			if answer, opErr = decodeAnswer(in.Answer); opErr == nil {
				if id := strings.TrimSpace(in.QuestionID); id != "" {
					_, opErr = h.svc.RecordAnswer(sessionID, id, answer, qn.SourceUser)
				} else {
					_, opErr = h.svc.Answer(sessionID, answer)
				}
			}
		case "accept":
			_, opErr = h.svc.AcceptSuggestion(sessionID)
		case "next":
			_, opErr = h.svc.Next(sessionID)
		case "previous":
			_, opErr = h.svc.Previous(sessionID)
		case "goto":
			_, opErr = h.svc.GoTo(sessionID, in.Index)
		case "complete":
			_, opErr = h.svc.Complete(ctx, sessionID)
		case "close":
			opErr = h.svc.Close(sessionID)
		default:
			pushSessionWS(writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    connect.CodeInvalidArgument.String(),
				Message: "unsupported type: " + msgType,
			})
			continue
		}
		if opErr != nil {
			pushSessionWS(writeCh, wsError(opErr))
			continue
		}
		pushSessionWS(writeCh, sessionWSOutbound{Type: msgType + "_ack", SessionID: sessionID})
	}
}

func wsError(err error) sessionWSOutbound {
	cerr := toConnectError(err)
	out := sessionWSOutbound{Type: "error", Code: connect.CodeOf(cerr).String(), Message: err.Error()}
	var ce *connect.Error
	if errors.As(cerr, &ce) {
		out.Message = ce.Message()
	}
	return out
}

func pushSessionWS(writeCh chan sessionWSOutbound, out sessionWSOutbound) {
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
