package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/buildconfig"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health pings the maintenance database.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildconfig.Info())
}
