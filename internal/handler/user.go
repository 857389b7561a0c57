package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
)

type UserHandler struct {
	users        *store.UserStore
	completions  *store.CompletionStore
	achievements *store.AchievementStore
	logger       *slog.Logger
}

func NewUserHandler(users *store.UserStore, completions *store.CompletionStore, achievements *store.AchievementStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:        users,
		completions:  completions,
		achievements: achievements,
		logger:       logger,
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string  `json:"username"`
		DisplayName string  `json:"display_name"`
		HAUserID    *string `json:"ha_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check username")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "username already exists")
		return
	}

	if req.DisplayName == "" {
		req.DisplayName = capitalize(req.Username)
	}

	user, err := h.users.Create(req.Username, req.DisplayName, req.HAUserID)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	displayName := existing.DisplayName
	if req.DisplayName != nil {
		displayName = strings.TrimSpace(*req.DisplayName)
	}
	avatarURL := existing.AvatarURL
	if req.AvatarURL != nil {
		avatarURL = *req.AvatarURL
	}
	if displayName == "" {
		writeError(w, http.StatusBadRequest, "display_name must not be empty")
		return
	}

	user, err := h.users.Update(id, displayName, avatarURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UserStatsResponse is the per-user activity overview.
type UserStatsResponse struct {
	User                   *model.User `json:"user"`
	TasksCompletedTotal    int         `json:"tasks_completed_total"`
	TasksCompletedThisWeek int         `json:"tasks_completed_this_week"`
	FavoriteRoom           string      `json:"favorite_room,omitempty"`
	AchievementsCount      int         `json:"achievements_count"`
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

	total, err := h.completions.CountByUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count completions")
		return
	}

	now := time.Now().UTC()
	offset := (int(now.Weekday()) + 6) % 7
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	thisWeek, err := h.completions.CountByUserSince(id, weekStart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count weekly completions")
		return
	}

	favorite, err := h.completions.FavoriteRoom(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to find favorite room")
		return
	}

	unlocks, err := h.achievements.CountUnlocks(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count achievements")
		return
	}

	writeJSON(w, http.StatusOK, UserStatsResponse{
		User:                   user,
		TasksCompletedTotal:    total,
		TasksCompletedThisWeek: thisWeek,
		FavoriteRoom:           favorite,
		AchievementsCount:      unlocks,
	})
}

// SyncRequest carries the person entities reported by Home Assistant.
type SyncRequest struct {
	Persons []struct {
		PersonID string `json:"person_id"`
		Name     string `json:"name"`
	} `json:"persons"`
}

// SyncResponse reports what the sync changed. Users are never deleted so
// their point history survives; vanished persons produce warnings instead.
type SyncResponse struct {
	Created  []model.User `json:"created"`
	Updated  []model.User `json:"updated"`
	Warnings []string     `json:"warnings"`
}

func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	resp := SyncResponse{Created: []model.User{}, Updated: []model.User{}, Warnings: []string{}}
	incoming := make(map[string]bool, len(req.Persons))

	for _, person := range req.Persons {
		if person.PersonID == "" {
			writeError(w, http.StatusBadRequest, "person_id is required")
			return
		}
		incoming[person.PersonID] = true

		existing, err := h.users.GetByHAUserID(person.PersonID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to look up user")
			return
		}

		if existing != nil {
			if existing.DisplayName != person.Name {
				updated, err := h.users.Update(existing.ID, person.Name, existing.AvatarURL)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "failed to rename user")
					return
				}
				resp.Updated = append(resp.Updated, *updated)
				h.logger.Info("user renamed from HA person", "username", updated.Username, "ha_user_id", person.PersonID)
			}
			continue
		}

		// Derive a username from the entity id, e.g. "person.lukas" -> "lukas".
		username := strings.ReplaceAll(strings.TrimPrefix(person.PersonID, "person."), ".", "_")
		taken, err := h.users.GetByUsername(username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check username")
			return
		}
		if taken != nil {
			username += "_ha"
		}

		personID := person.PersonID
		user, err := h.users.Create(username, person.Name, &personID)
		if err != nil {
			h.logger.Error("create synced user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		resp.Created = append(resp.Created, *user)
		h.logger.Info("user created from HA person", "username", username, "ha_user_id", person.PersonID)
	}

	// Warn about users whose HA person no longer exists.
	all, err := h.users.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	for _, u := range all {
		if u.HAUserID != nil && !incoming[*u.HAUserID] {
			resp.Warnings = append(resp.Warnings,
				"user '"+u.Name()+"' no longer exists in Home Assistant; kept to preserve point history")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
