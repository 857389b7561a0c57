package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mboehm/chorequest/internal/chore"
	"github.com/mboehm/chorequest/internal/gamification"
	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/recurrence"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/websocket"
)

type ChoreHandler struct {
	chores  *store.ChoreStore
	rooms   *store.RoomStore
	users   *store.UserStore
	service *gamification.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewChoreHandler(chores *store.ChoreStore, rooms *store.RoomStore, users *store.UserStore, service *gamification.Service, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		chores:  chores,
		rooms:   rooms,
		users:   users,
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	var roomID *int64
	if v := r.URL.Query().Get("room_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid room_id")
			return
		}
		roomID = &id
	}
	activeOnly := r.URL.Query().Get("is_active") == "true"

	chores, err := h.chores.List(roomID, activeOnly)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

type choreRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	RoomID           int64  `json:"room_id"`
	BasePoints       int    `json:"base_points"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Recurrence       string `json:"recurrence"`
	RecurrenceDay    *int   `json:"recurrence_day"`
}

func validateChore(req *choreRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.BasePoints <= 0 {
		return "base_points must be positive"
	}
	if _, err := recurrence.Parse(req.Recurrence, req.RecurrenceDay); err != nil {
		return err.Error()
	}
	return ""
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateChore(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	room, err := h.rooms.GetByID(req.RoomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	created, err := h.chores.Create(req.Title, req.Description, req.RoomID, req.BasePoints, req.EstimatedMinutes, req.Recurrence, req.RecurrenceDay)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "chore_created", Payload: created})
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req struct {
		Title            *string `json:"title"`
		Description      *string `json:"description"`
		RoomID           *int64  `json:"room_id"`
		BasePoints       *int    `json:"base_points"`
		EstimatedMinutes *int    `json:"estimated_minutes"`
		Recurrence       *string `json:"recurrence"`
		RecurrenceDay    *int    `json:"recurrence_day"`
		IsActive         *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	merged := choreRequest{
		Title:            existing.Title,
		Description:      existing.Description,
		RoomID:           existing.RoomID,
		BasePoints:       existing.BasePoints,
		EstimatedMinutes: existing.EstimatedMinutes,
		Recurrence:       existing.Recurrence,
		RecurrenceDay:    existing.RecurrenceDay,
	}
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.RoomID != nil {
		merged.RoomID = *req.RoomID
	}
	if req.BasePoints != nil {
		merged.BasePoints = *req.BasePoints
	}
	if req.EstimatedMinutes != nil {
		merged.EstimatedMinutes = *req.EstimatedMinutes
	}
	if req.Recurrence != nil {
		// Changing the recurrence kind replaces the day selector wholesale.
		merged.Recurrence = *req.Recurrence
		merged.RecurrenceDay = req.RecurrenceDay
	} else if req.RecurrenceDay != nil {
		merged.RecurrenceDay = req.RecurrenceDay
	}
	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if msg := validateChore(&merged); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.RoomID != nil {
		room, err := h.rooms.GetByID(merged.RoomID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get room")
			return
		}
		if room == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
	}

	updated, err := h.chores.Update(id, merged.Title, merged.Description, merged.RoomID, merged.BasePoints, merged.EstimatedMinutes, merged.Recurrence, merged.RecurrenceDay, isActive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "chore_updated", Payload: updated})
	writeJSON(w, http.StatusOK, updated)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	if err := h.chores.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "chore_deleted", Payload: map[string]int64{"id": id}})
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChoreHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	var filter store.InstanceFilter
	q := r.URL.Query()

	if v := q.Get("room_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid room_id")
			return
		}
		filter.RoomID = &id
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if v := q.Get("status"); v != "" {
		status := model.InstanceStatus(v)
		if status != model.StatusPending && !status.Terminal() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = &status
	}
	if v := q.Get("due_date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
			return
		}
		filter.DueDate = &date
	}

	instances, err := h.chores.ListInstances(filter)
	if err != nil {
		h.logger.Error("list instances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list instances")
		return
	}
	if instances == nil {
		instances = []model.ChoreInstanceDetail{}
	}
	writeJSON(w, http.StatusOK, instances)
}

// Today lists the pending instances due today.
func (h *ChoreHandler) Today(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC()
	status := model.StatusPending
	instances, err := h.chores.ListInstances(store.InstanceFilter{DueDate: &today, Status: &status})
	if err != nil {
		h.logger.Error("list today instances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list instances")
		return
	}
	if instances == nil {
		instances = []model.ChoreInstanceDetail{}
	}
	writeJSON(w, http.StatusOK, instances)
}

func (h *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	instance, err := h.chores.GetInstance(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get instance")
		return
	}
	if instance == nil {
		writeError(w, http.StatusNotFound, "instance not found")
		return
	}

	user, err := h.users.GetByID(req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.chores.AssignInstance(id, req.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to assign instance")
		return
	}

	instance, err = h.chores.GetInstance(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get instance")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "instance_assigned", Payload: instance})
	writeJSON(w, http.StatusOK, instance)
}

func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID int64  `json:"user_id"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := h.service.CompleteInstance(id, req.UserID, req.Notes)
	switch {
	case errors.Is(err, gamification.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, "instance not found")
		return
	case errors.Is(err, gamification.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, gamification.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "instance already resolved")
		return
	case err != nil:
		h.logger.Error("complete instance", "instance_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete instance")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ChoreHandler) Skip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.service.SkipInstance(id)
	switch {
	case errors.Is(err, gamification.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, "instance not found")
		return
	case errors.Is(err, gamification.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "instance already resolved")
		return
	case err != nil:
		h.logger.Error("skip instance", "instance_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to skip instance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "instance skipped"})
}

// Generate materializes instances for a date, defaulting to today. Used to
// backfill when the nightly job was down.
func (h *ChoreHandler) Generate(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	count, err := chore.GenerateInstances(h.chores, date)
	if err != nil {
		h.logger.Error("generate instances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate instances")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":    date.Format("2006-01-02"),
		"created": count,
	})
}
