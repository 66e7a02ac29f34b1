package viewer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feastline/orderhub/internal/order"
	"github.com/feastline/orderhub/internal/viewer"
)

var base = time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC)

func paidOrder(id string, age time.Duration) order.Order {
	return order.Order{
		ID:            id,
		RestaurantID:  "r1",
		Items:         []order.Item{{Name: "Pizza", Quantity: 1, Price: 10}},
		Total:         10,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPaid,
		CreatedAt:     base.Add(-age),
		UpdatedAt:     base.Add(-age),
	}
}

func ids(view []viewer.Display) []string {
	out := make([]string, 0, len(view))
	for _, d := range view {
		out = append(out, d.ID)
	}
	return out
}

func TestMapOrder(t *testing.T) {
	d := viewer.MapOrder(paidOrder("o1", 0))
	assert.Equal(t, "Guest", d.CustomerName)
	assert.Equal(t, "Pending", d.Status)

	o := paidOrder("o2", 0)
	o.UserID = "u1"
	o.Status = order.StatusServed
	d = viewer.MapOrder(o)
	assert.Equal(t, "u1", d.CustomerName)
	assert.Equal(t, "Served", d.Status)
}

func TestMergePoll_FiltersAndSortsNewestFirst(t *testing.T) {
	unpaid := paidOrder("o3", 3*time.Minute)
	unpaid.PaymentStatus = order.PaymentPending

	fetched := []order.Order{
		paidOrder("o1", 2*time.Minute),
		paidOrder("o2", time.Minute),
		unpaid,
	}

	view := viewer.MergePoll(nil, fetched, viewer.KitchenRelevance, viewer.Overrides{})
	assert.Equal(t, []string{"o2", "o1"}, ids(view))
}

func TestMergePoll_RetainsLocalOnlyOrders(t *testing.T) {
	local := []viewer.Display{
		viewer.MapOrder(paidOrder("local-1", 0)),
		viewer.MapOrder(paidOrder("o1", 2*time.Minute)),
	}
	fetched := []order.Order{paidOrder("o1", 2*time.Minute)}

	view := viewer.MergePoll(local, fetched, viewer.KitchenRelevance, viewer.Overrides{})

	// The order the backend did not return survives, prepended.
	assert.Equal(t, []string{"local-1", "o1"}, ids(view))
}

func TestMergePoll_StickyStatusWinsOverStalePoll(t *testing.T) {
	// Order was locally marked served; this poll response has not caught
	// up yet and still says pending.
	fetched := []order.Order{paidOrder("o1", 0)}
	sticky := viewer.Overrides{"o1": order.StatusServed}

	view := viewer.MergePoll(nil, fetched, viewer.KitchenRelevance, sticky)
	assert.Equal(t, "Served", view[0].Status)

	// Once the server reports served, the override has nothing to do.
	caught := paidOrder("o1", 0)
	caught.Status = order.StatusServed
	view = viewer.MergePoll(nil, []order.Order{caught}, viewer.KitchenRelevance, sticky)
	assert.Equal(t, "Served", view[0].Status)
}

func TestApplyCreated(t *testing.T) {
	view := viewer.ApplyCreated(nil, paidOrder("o1", time.Minute), viewer.KitchenRelevance)
	assert.Equal(t, []string{"o1"}, ids(view))

	// Duplicate by id is ignored.
	view = viewer.ApplyCreated(view, paidOrder("o1", time.Minute), viewer.KitchenRelevance)
	assert.Equal(t, []string{"o1"}, ids(view))

	// Newer order sorts first.
	view = viewer.ApplyCreated(view, paidOrder("o2", 0), viewer.KitchenRelevance)
	assert.Equal(t, []string{"o2", "o1"}, ids(view))

	// Irrelevant order is not inserted.
	unpaid := paidOrder("o3", 0)
	unpaid.PaymentStatus = order.PaymentPending
	view = viewer.ApplyCreated(view, unpaid, viewer.KitchenRelevance)
	assert.Equal(t, []string{"o2", "o1"}, ids(view))
}

func TestApplyUpdated(t *testing.T) {
	view := []viewer.Display{viewer.MapOrder(paidOrder("o1", time.Minute))}

	// In-place merge.
	served := paidOrder("o1", time.Minute)
	served.Status = order.StatusServed
	view = viewer.ApplyUpdated(view, served, viewer.KitchenRelevance, viewer.Overrides{})
	assert.Equal(t, "Served", view[0].Status)

	// Previously unseen order that is now relevant gets inserted.
	view = viewer.ApplyUpdated(view, paidOrder("o2", 0), viewer.KitchenRelevance, viewer.Overrides{})
	assert.Equal(t, []string{"o2", "o1"}, ids(view))

	// Payment falling through removes the order from a paid-only view.
	failed := paidOrder("o2", 0)
	failed.PaymentStatus = order.PaymentFailed
	view = viewer.ApplyUpdated(view, failed, viewer.KitchenRelevance, viewer.Overrides{})
	assert.Equal(t, []string{"o1"}, ids(view))

	// Unseen and irrelevant stays out.
	view = viewer.ApplyUpdated(view, failed, viewer.KitchenRelevance, viewer.Overrides{})
	assert.Equal(t, []string{"o1"}, ids(view))
}

func TestRelevancePredicates(t *testing.T) {
	paid := paidOrder("o1", 0)
	unpaid := paidOrder("o2", 0)
	unpaid.PaymentStatus = order.PaymentPending
	mine := paidOrder("o3", 0)
	mine.UserID = "u1"

	assert.True(t, viewer.KitchenRelevance(paid))
	assert.False(t, viewer.KitchenRelevance(unpaid))

	assert.True(t, viewer.DashboardRelevance(unpaid))

	tracker := viewer.TrackerRelevance("u1")
	assert.True(t, tracker(mine))
	assert.False(t, tracker(paid))
}
