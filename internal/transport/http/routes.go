package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "gigfinder/docs"
	"gigfinder/internal/metrics"
)

func Routes(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/worker", func(r chi.Router) {
		r.Get("/", h.GetWorker)
		r.Post("/search", h.Search)
		r.Post("/accept", h.Accept)
		r.Post("/decline", h.Decline)
		r.Post("/next", h.Next)
	})

	r.Get("/history", h.GetHistory)
	r.Get("/demand", h.GetDemand)
	r.Post("/demand/refresh", h.RefreshDemand)
	r.Get("/events", h.Events)

	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
