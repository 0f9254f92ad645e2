package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/config"
	authhandler "github.com/mingxw/aerochat/backend/internal/handler/auth"
	chathandler "github.com/mingxw/aerochat/backend/internal/handler/chat"
	flighthandler "github.com/mingxw/aerochat/backend/internal/handler/flight"
	historyhandler "github.com/mingxw/aerochat/backend/internal/handler/history"
	reservationhandler "github.com/mingxw/aerochat/backend/internal/handler/reservation"
	appmiddleware "github.com/mingxw/aerochat/backend/internal/middleware"
	authservice "github.com/mingxw/aerochat/backend/internal/service/auth"
	flightservice "github.com/mingxw/aerochat/backend/internal/service/flight"
	"github.com/mingxw/aerochat/backend/internal/service/title"
	"github.com/mingxw/aerochat/backend/internal/store"
	"github.com/mingxw/aerochat/backend/pkg/utils"
)

// Dependencies aggregates everything the router wires together.
type Dependencies struct {
	Store    store.Store
	Auth     *authservice.Service
	Streamer chathandler.Streamer
	Titles   *title.Service
	Flights  *flightservice.Generator
	CORS     config.CORSConfig
	Logger   *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{utils.StreamVersionHeader},
		MaxAge:         300,
	}))

	authHandler := authhandler.New(deps.Auth, deps.Logger)
	chatHandler := chathandler.New(deps.Streamer, deps.Titles, deps.Store, deps.Logger)
	historyHandler := historyhandler.New(deps.Store, deps.Logger)
	reservationHandler := reservationhandler.New(deps.Store, deps.Logger)
	flightHandler := flighthandler.New(deps.Flights, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth(deps.Store))

		authHandler.RegisterRoutes(api)
		flightHandler.RegisterRoutes(api)

		// Session-gated routes resolve the caller's identity once up front.
		// The middleware never rejects; each handler decides what an
		// anonymous request means.
		api.Group(func(protected chi.Router) {
			protected.Use(appmiddleware.Session(deps.Auth))

			chatHandler.RegisterRoutes(protected)
			historyHandler.RegisterRoutes(protected)
			reservationHandler.RegisterRoutes(protected)
		})
	})

	return r
}

// handleHealth reports process liveness and storage reachability.
func handleHealth(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "ok"
		if err := st.Ping(r.Context()); err != nil {
			database = "unreachable"
		}

		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": database,
		})
	}
}
