package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Banner is the body of GET /.
const Banner = "Dental appointments voice bridge is running!"

// Pinger reports database reachability. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the banner and health routes.
type SystemHandler struct {
	db     Pinger
	logger *logging.Logger
}

func NewSystemHandler(db Pinger, logger *logging.Logger) *SystemHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SystemHandler{db: db, logger: logger}
}

// Root handles GET /.
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": Banner})
}

// Health handles GET /health. It answers 503 when the database does not respond.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check database ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
