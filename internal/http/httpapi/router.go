package httpapi

import (
	"net/http"

	"photobooth/internal/http/handlers"
	"photobooth/internal/infra"
	appmw "photobooth/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.Logger(logger),
		appmw.CORS(cfg.CORSAllowedOrigins),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Post("/generate", app.Generate)
		r.Post("/stylize", app.Stylize)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
	})

	r.Method(http.MethodGet, "/metrics", app.MetricsHandler())

	return r
}
