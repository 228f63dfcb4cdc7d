package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/neuroguard/backend/internal/handler/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/handler/live"
	"github.com/zhouzirui/neuroguard/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/neuroguard/backend/internal/middleware"
	checkinService "github.com/zhouzirui/neuroguard/backend/internal/service/checkin"
	sessionService "github.com/zhouzirui/neuroguard/backend/internal/service/session"
	"github.com/zhouzirui/neuroguard/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *sessionService.Service, checkins *checkinService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	checkinHandler := checkin.New(sessions, checkins)
	liveHandler := live.NewWebSocketHandler(sessions, checkins)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		checkinHandler.RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)
	})

	return r
}
