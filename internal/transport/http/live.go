package http

import (
	"net/http"

	"exam-grading-service/internal/app"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveResultsHandler streams newly recorded results of a paper over a websocket.
type LiveResultsHandler struct {
	results  *app.ResultsService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewLiveResultsHandler(results *app.ResultsService, log *zap.Logger) *LiveResultsHandler {
	return &LiveResultsHandler{
		results: results,
		log:     log,
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

type subscribedPayload struct {
	PaperID int64 `json:"paper_id"`
}

// ServeWS upgrades the request and forwards results until the client goes away.
func (h *LiveResultsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	paperID, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	// Subscribe before upgrading so an unknown paper is a plain 404.
	updates, cancel, err := h.results.Subscribe(r.Context(), paperID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.Int64("paper_id", paperID), zap.Error(err))
				// Unblock the reader so the handler can finish.
				conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case result, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "result", Payload: result}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "subscribed", Payload: subscribedPayload{PaperID: paperID}}

	// The stream is one-way; reading only detects the client closing.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

