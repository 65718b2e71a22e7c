package router

import (
	"net/http"
	"strings"

	"campaign-engine/internal/handler"
	"campaign-engine/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	campaignHandler *handler.CampaignHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Campaign handler function
	campaignRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")

		switch {
		case path == "/api/campaigns/available":
			campaignHandler.Available(w, r)
		case path == "/api/campaigns/redeem":
			campaignHandler.Redeem(w, r)
		case path == "/api/campaigns":
			switch r.Method {
			case http.MethodPost:
				campaignHandler.Create(w, r)
			case http.MethodGet:
				campaignHandler.List(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case strings.HasPrefix(path, "/api/campaigns/") && strings.HasSuffix(path, "/redemptions"):
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			campaignHandler.Redemptions(w, r)
		case strings.HasPrefix(path, "/api/campaigns/"):
			switch r.Method {
			case http.MethodGet:
				campaignHandler.GetByID(w, r)
			case http.MethodDelete:
				campaignHandler.Delete(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	// Register campaign routes (both with and without trailing slash)
	mux.HandleFunc("/api/campaigns", campaignRouteHandler)
	mux.HandleFunc("/api/campaigns/", campaignRouteHandler)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
