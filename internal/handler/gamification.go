package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mboehm/chorequest/internal/gamification"
	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
)

type GamificationHandler struct {
	users        *store.UserStore
	achievements *store.AchievementStore
	service      *gamification.Service
	logger       *slog.Logger
}

func NewGamificationHandler(users *store.UserStore, achievements *store.AchievementStore, service *gamification.Service, logger *slog.Logger) *GamificationHandler {
	return &GamificationHandler{
		users:        users,
		achievements: achievements,
		service:      service,
		logger:       logger,
	}
}

func (h *GamificationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Leaderboard()
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *GamificationHandler) WeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.WeeklyLeaderboard()
	if err != nil {
		h.logger.Error("weekly leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *GamificationHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievements.List()
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}
	if achievements == nil {
		achievements = []model.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (h *GamificationHandler) UserAchievements(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	unlocks, err := h.achievements.ListUserUnlocks(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list unlocks")
		return
	}
	if unlocks == nil {
		unlocks = []store.UserUnlock{}
	}
	writeJSON(w, http.StatusOK, unlocks)
}

func (h *GamificationHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	progress, err := h.service.Progress(id)
	switch {
	case errors.Is(err, gamification.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.logger.Error("achievement progress", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute progress")
		return
	}
	if progress == nil {
		progress = []gamification.AchievementProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}
