package stream

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SSEHandler exposes the broadcaster as a Server-Sent Events endpoint.
// Each request holds one subscription for as long as the connection
// stays open; closing the connection deregisters the subscriber.
type SSEHandler struct {
	broadcaster *Broadcaster
}

func NewSSEHandler(b *Broadcaster) *SSEHandler {
	return &SSEHandler{broadcaster: b}
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Register before acknowledging so an event published right after the
	// viewer sees the open ack is never missed.
	sub := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Open acknowledgment so the viewer can tell a live connection from a
	// stalled one before the first event arrives.
	fmt.Fprint(w, "\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				// Broadcaster shut down.
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data); err != nil {
				log.Debug().Err(err).Msg("stream: sse write failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}
