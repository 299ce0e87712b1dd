package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

const eventWriteTimeout = 10 * time.Second

// EventsHandler streams change events to progress pages over a websocket.
// Events are advisory: clients re-fetch the entity on receipt instead of
// trusting the payload, so a dropped event only delays the refresh until the
// next one.
type EventsHandler struct {
	notifier *services.Notifier
	upgrader websocket.Upgrader
}

func NewEventsHandler(notifier *services.Notifier) *EventsHandler {
	return &EventsHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The donation pages are served from a separate origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and forwards events for the requested
// topics (?topics=campaigns,donations). No topics means all topics.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var topics []string
	if raw := r.URL.Query().Get("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade events connection: %v", err)
		return
	}
	defer conn.Close()

	sub := h.notifier.Subscribe(topics...)
	defer h.notifier.Unsubscribe(sub)

	// The read loop only exists to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				log.Printf("Dropping events subscriber: %v", err)
				return
			}
		}
	}
}
