package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mboehm/chorequest/internal/config"
	"github.com/mboehm/chorequest/internal/gamification"
	"github.com/mboehm/chorequest/internal/handler"
	"github.com/mboehm/chorequest/internal/middleware"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/summary"
	ws "github.com/mboehm/chorequest/internal/websocket"
)

type Server struct {
	cfg         *config.Config
	hub         *ws.Hub
	userH       *handler.UserHandler
	roomH       *handler.RoomHandler
	choreH      *handler.ChoreHandler
	gamH        *handler.GamificationHandler
	summaryH    *handler.SummaryHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, hub *ws.Hub, service *gamification.Service, generator *summary.Generator, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	roomStore := store.NewRoomStore(db)
	choreStore := store.NewChoreStore(db)
	completionStore := store.NewCompletionStore(db)
	achievementStore := store.NewAchievementStore(db)
	summaryStore := store.NewSummaryStore(db)

	return &Server{
		cfg:         cfg,
		hub:         hub,
		userH:       handler.NewUserHandler(userStore, completionStore, achievementStore, logger.With("component", "user")),
		roomH:       handler.NewRoomHandler(roomStore, hub, logger.With("component", "room")),
		choreH:      handler.NewChoreHandler(choreStore, roomStore, userStore, service, hub, logger.With("component", "chore")),
		gamH:        handler.NewGamificationHandler(userStore, achievementStore, service, logger.With("component", "gamification")),
		summaryH:    handler.NewSummaryHandler(summaryStore, generator, logger.With("component", "summary")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public route, used by container healthchecks.
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires the API key.
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)

	protected := middleware.APIKey(s.cfg.APIKey)(
		middleware.RateLimit(s.rateLimiter, s.cfg.RateLimitRequests, s.cfg.RateLimitWindow)(apiMux))
	outerMux.Handle("/", protected)

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Users
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("POST /api/users/sync", s.userH.Sync)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("PATCH /api/users/{id}", s.userH.Update)
	mux.HandleFunc("GET /api/users/{id}/stats", s.userH.Stats)

	// Rooms
	mux.HandleFunc("GET /api/rooms", s.roomH.List)
	mux.HandleFunc("POST /api/rooms", s.roomH.Create)
	mux.HandleFunc("POST /api/rooms/sync", s.roomH.Sync)
	mux.HandleFunc("PATCH /api/rooms/{id}", s.roomH.Update)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.roomH.Delete)

	// Chore templates
	mux.HandleFunc("GET /api/tasks", s.choreH.List)
	mux.HandleFunc("POST /api/tasks", s.choreH.Create)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.choreH.Delete)

	// Chore instances
	mux.HandleFunc("GET /api/instances", s.choreH.ListInstances)
	mux.HandleFunc("GET /api/instances/today", s.choreH.Today)
	mux.HandleFunc("POST /api/instances/{id}/complete", s.choreH.Complete)
	mux.HandleFunc("POST /api/instances/{id}/skip", s.choreH.Skip)
	mux.HandleFunc("POST /api/instances/{id}/assign", s.choreH.Assign)

	// Gamification
	mux.HandleFunc("GET /api/leaderboard", s.gamH.Leaderboard)
	mux.HandleFunc("GET /api/leaderboard/weekly", s.gamH.WeeklyLeaderboard)
	mux.HandleFunc("GET /api/achievements", s.gamH.ListAchievements)
	mux.HandleFunc("GET /api/achievements/{id}", s.gamH.UserAchievements)
	mux.HandleFunc("GET /api/achievements/{id}/progress", s.gamH.Progress)

	// Summaries
	mux.HandleFunc("GET /api/summaries", s.summaryH.List)
	mux.HandleFunc("GET /api/summaries/latest", s.summaryH.Latest)
	mux.HandleFunc("POST /api/summaries/generate", s.summaryH.Generate)

	// Admin
	mux.HandleFunc("POST /api/admin/generate", s.choreH.Generate)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))
}
