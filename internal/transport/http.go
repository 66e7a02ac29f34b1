package transport

import (
	"net/http"

	"github.com/feastline/orderhub/internal/auth"
	"github.com/feastline/orderhub/internal/handler"
	"github.com/feastline/orderhub/internal/order"
	"github.com/feastline/orderhub/internal/stream"
	"github.com/go-chi/chi/v5"
)

// NewRouter wires the order lifecycle surface: REST reads/writes plus
// the SSE stream endpoint. The broadcaster instance is shared with the
// lifecycle service so every successful write reaches open viewers.
func NewRouter(svc order.Service, b *stream.Broadcaster, az auth.Authorizer) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	h := handler.NewOrderHandler(svc, az)
	sse := stream.NewSSEHandler(b)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/stream", sse.ServeHTTP)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/status", h.UpdateStatus)
	})

	return r
}
