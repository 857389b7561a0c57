package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/websocket"
)

// areaIcons maps a Home Assistant area name (lowercased) to a Material
// Design icon used when a room is created by sync.
var areaIcons = map[string]string{
	"kitchen":      "mdi:silverware-fork-knife",
	"kueche":       "mdi:silverware-fork-knife",
	"bathroom":     "mdi:shower",
	"bad":          "mdi:shower",
	"living_room":  "mdi:sofa",
	"wohnzimmer":   "mdi:sofa",
	"bedroom":      "mdi:bed",
	"schlafzimmer": "mdi:bed",
	"office":       "mdi:desk",
	"buero":        "mdi:desk",
	"hallway":      "mdi:door-open",
	"flur":         "mdi:door-open",
	"garage":       "mdi:garage",
	"basement":     "mdi:stairs-down",
	"keller":       "mdi:stairs-down",
	"garden":       "mdi:flower",
	"garten":       "mdi:flower",
	"balcony":      "mdi:balcony",
	"balkon":       "mdi:balcony",
	"laundry":      "mdi:washing-machine",
	"dining_room":  "mdi:table-furniture",
	"attic":        "mdi:home-roof",
	"wc":           "mdi:toilet",
}

func iconForArea(name string) string {
	if icon, ok := areaIcons[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return "mdi:room"
}

type RoomHandler struct {
	rooms  *store.RoomStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRoomHandler(rooms *store.RoomStore, hub *websocket.Hub, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, hub: hub, logger: logger}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List()
	if err != nil {
		h.logger.Error("list rooms", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string  `json:"name"`
		Icon            string  `json:"icon"`
		PointMultiplier float64 `json:"point_multiplier"`
		SortOrder       int     `json:"sort_order"`
		HAAreaID        *string `json:"ha_area_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Icon == "" {
		req.Icon = iconForArea(req.Name)
	}
	if req.PointMultiplier == 0 {
		req.PointMultiplier = 1.0
	}
	if req.PointMultiplier < 0 {
		writeError(w, http.StatusBadRequest, "point_multiplier must be positive")
		return
	}

	room, err := h.rooms.Create(req.Name, req.Icon, req.PointMultiplier, req.SortOrder, req.HAAreaID)
	if err != nil {
		h.logger.Error("create room", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "room_created", Payload: room})
	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rooms.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Icon            *string  `json:"icon"`
		PointMultiplier *float64 `json:"point_multiplier"`
		SortOrder       *int     `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := existing.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	icon := existing.Icon
	if req.Icon != nil {
		icon = *req.Icon
	}
	multiplier := existing.PointMultiplier
	if req.PointMultiplier != nil {
		multiplier = *req.PointMultiplier
	}
	if multiplier <= 0 {
		writeError(w, http.StatusBadRequest, "point_multiplier must be positive")
		return
	}
	sortOrder := existing.SortOrder
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	room, err := h.rooms.Update(id, name, icon, multiplier, sortOrder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update room")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "room_updated", Payload: room})
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rooms.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	if err := h.rooms.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete room")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: "room_deleted", Payload: map[string]int64{"id": id}})
	w.WriteHeader(http.StatusNoContent)
}

// RoomSyncRequest carries the areas reported by Home Assistant.
type RoomSyncRequest struct {
	Areas []struct {
		AreaID string `json:"area_id"`
		Name   string `json:"name"`
	} `json:"areas"`
}

// RoomSyncResponse reports what the sync changed. Rooms are never deleted
// automatically; vanished areas produce warnings.
type RoomSyncResponse struct {
	Created  []model.Room `json:"created"`
	Updated  []model.Room `json:"updated"`
	Warnings []string     `json:"warnings"`
}

func (h *RoomHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req RoomSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	all, err := h.rooms.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	byAreaID := make(map[string]model.Room)
	for _, room := range all {
		if room.HAAreaID != nil {
			byAreaID[*room.HAAreaID] = room
		}
	}

	resp := RoomSyncResponse{Created: []model.Room{}, Updated: []model.Room{}, Warnings: []string{}}
	incoming := make(map[string]bool, len(req.Areas))

	for _, area := range req.Areas {
		if area.AreaID == "" {
			writeError(w, http.StatusBadRequest, "area_id is required")
			return
		}
		incoming[area.AreaID] = true

		if existing, ok := byAreaID[area.AreaID]; ok {
			if existing.Name != area.Name {
				updated, err := h.rooms.Update(existing.ID, area.Name, existing.Icon, existing.PointMultiplier, existing.SortOrder)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "failed to rename room")
					return
				}
				resp.Updated = append(resp.Updated, *updated)
				h.logger.Info("room renamed from HA area", "name", area.Name, "ha_area_id", area.AreaID)
			}
			continue
		}

		areaID := area.AreaID
		room, err := h.rooms.Create(area.Name, iconForArea(area.Name), 1.0, 0, &areaID)
		if err != nil {
			h.logger.Error("create synced room", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create room")
			return
		}
		resp.Created = append(resp.Created, *room)
		h.logger.Info("room created from HA area", "name", area.Name, "ha_area_id", area.AreaID)
	}

	for areaID, room := range byAreaID {
		if !incoming[areaID] {
			resp.Warnings = append(resp.Warnings,
				"room '"+room.Name+"' no longer exists in Home Assistant; delete it manually if unused")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
