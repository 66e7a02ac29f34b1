package viewer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/feastline/orderhub/internal/order"
	"github.com/feastline/orderhub/internal/stream"
	"github.com/rs/zerolog/log"
)

// HTTPFetcher polls the order query API over HTTP.
type HTTPFetcher struct {
	BaseURL      string
	RestaurantID string
	UserID       string
	Client       *http.Client
}

func (f *HTTPFetcher) FetchOrders(ctx context.Context) ([]order.Order, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	q := url.Values{}
	if f.RestaurantID != "" {
		q.Set("restaurantId", f.RestaurantID)
	}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}

	endpoint := f.BaseURL + "/api/orders"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("viewer: failed to build poll request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viewer: poll request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viewer: poll returned status %d", resp.StatusCode)
	}

	var body struct {
		Orders []order.Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("viewer: failed to decode poll response: %w", err)
	}

	return body.Orders, nil
}

// SubscribeSSE opens the push-event channel and returns a stream of
// decoded events. The returned channel closes when the connection drops
// or ctx is cancelled; callers fall back to poll-only at that point.
func SubscribeSSE(ctx context.Context, baseURL string) (<-chan stream.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/orders/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("viewer: failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viewer: stream request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("viewer: stream returned status %d", resp.StatusCode)
	}

	events := make(chan stream.Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		var ev stream.Event
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.Data = []byte(strings.TrimPrefix(line, "data: "))
			case line == "":
				if ev.Name != "" && ev.Data != nil {
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
				ev = stream.Event{}
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("viewer: event stream read failed")
		}
	}()

	return events, nil
}
