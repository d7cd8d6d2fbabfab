package handlers

import (
	"net/http"
)

// Health answers the liveness probe at /api/health.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
