// Package statusapi is a small read-only HTTP+WS surface reporting the
// show's current playback status — sequence/executor state and dirty
// universe counts — for external UI collaborators. It is the thin read
// side of that collaborator interface, not the editor itself: there is no
// write path here.
package statusapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/demexconsole/console/internal/services/pubsub"
	"github.com/demexconsole/console/internal/show"
)

// ExecutorStatus is one executor's playback state, for JSON reporting.
type ExecutorStatus struct {
	ID         uint32 `json:"id"`
	Name       string `json:"name"`
	IsStarted  bool   `json:"isStarted"`
	SequenceID uint32 `json:"sequenceId,omitempty"`
	HasCue     bool   `json:"-"`
	CueIdx     int    `json:"cueIndex,omitempty"`
}

// GlobalPlaybackStatus is the status surface's full JSON snapshot.
type GlobalPlaybackStatus struct {
	Executors      []ExecutorStatus `json:"executors"`
	DirtyUniverses []uint16         `json:"dirtyUniverses"`
	TickMillis     float64          `json:"tickMillis"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// Hub serves the current status over REST and fans out updates to
// connected websocket clients every time the show ticks.
type Hub struct {
	s  *show.Show
	ps *pubsub.PubSub

	upgrader websocket.Upgrader
}

// NewHub builds a Hub reporting s's status, registering itself as s's tick
// callback so every render tick publishes a fresh broadcast.
func NewHub(s *show.Show) *Hub {
	h := &Hub{
		s:  s,
		ps: pubsub.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.SetTickCallback(h.HandleTick)
	return h
}

// HandleTick publishes a fresh status snapshot to subscribers. It is
// registered as s's tick callback by NewHub, and exported so a caller that
// needs to chain additional tick observers (e.g. structured logging) can
// reinstall a wrapping callback via Show.SetTickCallback.
func (h *Hub) HandleTick(dirty []uint16, elapsed time.Duration) {
	h.ps.PublishAll(pubsub.TopicPlaybackStatus, h.snapshot(dirty, elapsed))
}

func (h *Hub) snapshot(dirty []uint16, elapsed time.Duration) GlobalPlaybackStatus {
	h.s.RLock()
	defer h.s.RUnlock()

	status := GlobalPlaybackStatus{
		DirtyUniverses: dirty,
		TickMillis:     float64(elapsed.Microseconds()) / 1000,
		GeneratedAt:    time.Now(),
	}
	for _, e := range h.s.Executors.Executors() {
		es := ExecutorStatus{ID: e.ID(), Name: e.Name(), IsStarted: e.IsStarted()}
		if seqID, ok := e.SequenceID(); ok {
			es.SequenceID = seqID
		}
		if cueIdx, ok := e.CurrentCue(); ok {
			es.HasCue = true
			es.CueIdx = cueIdx
		}
		status.Executors = append(status.Executors, es)
	}
	return status
}

// Router builds the chi router serving GET /status and GET /ws, with a
// request-id/real-ip/logger/recoverer/timeout middleware stack and a
// permissive CORS policy for corsOrigin.
func (h *Hub) Router(corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(corsMiddleware.Handler)

	r.Get("/status", h.handleStatus)
	r.Get("/ws", h.handleWebSocket)
	return r
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.snapshot(nil, 0)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("statusapi: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := h.ps.Subscribe(pubsub.TopicPlaybackStatus, "", 8)
	defer h.ps.Unsubscribe(sub)

	if initial, err := json.Marshal(h.snapshot(nil, 0)); err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, initial)
	}

	// Drain (and discard) client reads so a closed connection is detected;
	// this surface has no write path for clients to send. Unsubscribing here
	// too unblocks the write loop below as soon as the socket drops instead
	// of waiting on the next tick.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.ps.Unsubscribe(sub)
				return
			}
		}
	}()

	for msg := range sub.Channel {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("statusapi: marshal status: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
