package viewer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/feastline/orderhub/internal/order"
	"github.com/feastline/orderhub/internal/stream"
	"github.com/rs/zerolog/log"
)

// Fetcher is the poll side of a viewer: a full filtered re-fetch from
// the order query API.
type Fetcher interface {
	FetchOrders(ctx context.Context) ([]order.Order, error)
}

// Syncer runs one viewer's reconciliation loop. The poll and the event
// stream are two producers feeding the same merge functions; losing the
// event stream silently degrades the viewer to poll-only.
type Syncer struct {
	fetcher   Fetcher
	events    <-chan stream.Event
	relevance Relevance
	interval  time.Duration

	mu     sync.Mutex
	view   []Display
	sticky Overrides
}

func NewSyncer(fetcher Fetcher, events <-chan stream.Event, rel Relevance, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Syncer{
		fetcher:   fetcher,
		events:    events,
		relevance: rel,
		interval:  interval,
		sticky:    make(Overrides),
	}
}

// Run blocks until ctx is cancelled, polling on the interval and
// applying stream events as they arrive.
func (s *Syncer) Run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	events := s.events
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		case ev, ok := <-events:
			if !ok {
				// Stream gone: a nil channel blocks forever, leaving the
				// ticker as the only input.
				log.Warn().Msg("viewer: event stream closed, falling back to poll-only")
				events = nil
				continue
			}
			s.apply(ev)
		}
	}
}

func (s *Syncer) poll(ctx context.Context) {
	fetched, err := s.fetcher.FetchOrders(ctx)
	if err != nil {
		// Stale data beats no data: keep the last known view and retry on
		// the next tick.
		log.Warn().Err(err).Msg("viewer: poll failed, keeping last known view")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range fetched {
		if want, ok := s.sticky[o.ID]; ok && o.Status == want {
			delete(s.sticky, o.ID)
		}
	}
	s.view = MergePoll(s.view, fetched, s.relevance, s.sticky)
}

func (s *Syncer) apply(ev stream.Event) {
	var o order.Order
	if err := json.Unmarshal(ev.Data, &o); err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Msg("viewer: failed to decode event payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Name {
	case order.EventOrderCreated:
		s.view = ApplyCreated(s.view, o, s.relevance)
	case order.EventOrderUpdated:
		if want, ok := s.sticky[o.ID]; ok && o.Status == want {
			delete(s.sticky, o.ID)
		}
		s.view = ApplyUpdated(s.view, o, s.relevance, s.sticky)
	}
}

// MarkServed records a locally-applied terminal status so polls that
// have not caught up with the write do not visually revert it.
func (s *Syncer) MarkServed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sticky[id] = order.StatusServed
	for i := range s.view {
		if s.view[i].ID == id {
			s.view[i].Status = titleStatus(order.StatusServed)
		}
	}
}

// Snapshot returns a copy of the current display list.
func (s *Syncer) Snapshot() []Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Display, len(s.view))
	copy(out, s.view)
	return out
}
