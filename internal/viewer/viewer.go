// Package viewer reconciles a local, display-ready list of orders from
// two converging inputs: a periodic full re-fetch of the query API and
// the live event stream. Local state is advisory only; the order store
// stays authoritative.
package viewer

import (
	"sort"
	"strings"
	"time"

	"github.com/feastline/orderhub/internal/order"
)

// Display is the shape a viewer renders. Status is title-cased the way
// the boards show it ("Pending", "Preparing", "Served").
type Display struct {
	ID            string
	CustomerName  string
	Items         []order.Item
	Total         float64
	Status        string
	PaymentStatus order.PaymentStatus
	CreatedAt     time.Time
}

// Relevance decides which orders a given viewer role displays.
type Relevance func(o order.Order) bool

// KitchenRelevance shows only paid orders on the kitchen board.
func KitchenRelevance(o order.Order) bool {
	return o.PaymentStatus == order.PaymentPaid
}

// DashboardRelevance shows every order to admins.
func DashboardRelevance(order.Order) bool {
	return true
}

// TrackerRelevance shows a customer their own orders.
func TrackerRelevance(userID string) Relevance {
	return func(o order.Order) bool {
		return o.UserID == userID
	}
}

// Overrides records locally-applied terminal statuses that a poll
// response has not caught up with yet, keyed by order id. Purely a UI
// anti-flicker measure.
type Overrides map[string]order.Status

// MapOrder converts a stored order to its display shape.
func MapOrder(o order.Order) Display {
	name := "Guest"
	if o.UserID != "" {
		name = o.UserID
	}
	return Display{
		ID:            o.ID,
		CustomerName:  name,
		Items:         o.Items,
		Total:         o.Total,
		Status:        titleStatus(o.Status),
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
}

func titleStatus(s order.Status) string {
	if s == "" {
		return "Pending"
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// MergePoll folds a full poll response into the local view. Fetched
// orders are filtered by relevance and sorted newest-first; sticky
// overrides win over a stale server status; local-only entries (not in
// this response) are retained and prepended rather than discarded.
func MergePoll(local []Display, fetched []order.Order, rel Relevance, sticky Overrides) []Display {
	merged := make([]Display, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))

	for _, o := range fetched {
		if !rel(o) {
			continue
		}
		d := MapOrder(o)
		if want, ok := sticky[o.ID]; ok && o.Status != want {
			d.Status = titleStatus(want)
		}
		merged = append(merged, d)
		seen[o.ID] = struct{}{}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	// Keep anything the backend did not return this cycle so a transient
	// outage never blanks the board.
	var retained []Display
	for _, d := range local {
		if _, ok := seen[d.ID]; !ok {
			retained = append(retained, d)
		}
	}

	return append(retained, merged...)
}

// ApplyCreated inserts a newly announced order, ignoring duplicates and
// orders the viewer does not display.
func ApplyCreated(local []Display, o order.Order, rel Relevance) []Display {
	if !rel(o) {
		return local
	}
	for _, d := range local {
		if d.ID == o.ID {
			return local
		}
	}

	next := append([]Display{MapOrder(o)}, local...)
	sort.Slice(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})
	return next
}

// ApplyUpdated merges an updated order into the view: unseen-but-now
// relevant orders are inserted, no-longer-relevant ones removed, and the
// rest replaced in place.
func ApplyUpdated(local []Display, o order.Order, rel Relevance, sticky Overrides) []Display {
	idx := -1
	for i, d := range local {
		if d.ID == o.ID {
			idx = i
			break
		}
	}

	if idx == -1 {
		if !rel(o) {
			return local
		}
		return append([]Display{MapOrder(o)}, local...)
	}

	if !rel(o) {
		return append(local[:idx:idx], local[idx+1:]...)
	}

	d := MapOrder(o)
	if want, ok := sticky[o.ID]; ok && o.Status != want {
		d.Status = titleStatus(want)
	}

	next := make([]Display, len(local))
	copy(next, local)
	next[idx] = d
	sort.Slice(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})
	return next
}
