// kitchenboard is a terminal kitchen display: it runs the paid-orders
// viewer against an orderhub server, polling the query API and merging
// live stream events, and prints the reconciled board on every refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feastline/orderhub/internal/viewer"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "orderhub base URL")
	restaurantID := flag.String("restaurant", "", "restaurant id to display")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "kitchenboard").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fetcher := &viewer.HTTPFetcher{
		BaseURL:      *baseURL,
		RestaurantID: *restaurantID,
	}

	events, err := viewer.SubscribeSSE(ctx, *baseURL)
	if err != nil {
		// Poll-only mode still works; the board just updates on the tick.
		log.Warn().Err(err).Msg("live stream unavailable, running poll-only")
		events = nil
	}

	syncer := viewer.NewSyncer(fetcher, events, viewer.KitchenRelevance, *interval)
	go syncer.Run(ctx)

	render := time.NewTicker(*interval)
	defer render.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-render.C:
			board := syncer.Snapshot()
			fmt.Printf("\n=== Kitchen board (%d orders) ===\n", len(board))
			for _, d := range board {
				fmt.Printf("%-36s  %-10s  %6.2f  %s\n", d.ID, d.Status, d.Total, d.CreatedAt.Format(time.Kitchen))
			}
		}
	}
}
