package handlers

import "net/http"

// MetricsHandler serves the Prometheus exposition for the service registry.
func (a *App) MetricsHandler() http.Handler {
	return a.Metrics.Handler()
}
