package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mboehm/chorequest/internal/gamification"
)

func TestTaskCompletedDelivery(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/webhook/hook123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		received <- payload
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "hook123", slog.Default(), WithHTTPClient(srv.Client()))
	client.TaskCompleted(gamification.TaskCompletedEvent{
		InstanceID: 7,
		Title:      "Dishes",
		UserName:   "Lukas",
		Points:     17,
		RoomName:   "Kitchen",
	})

	select {
	case payload := <-received:
		if payload["event_type"] != "task_completed" {
			t.Errorf("event_type = %v", payload["event_type"])
		}
		if payload["title"] != "Dishes" || payload["points"] != float64(17) {
			t.Errorf("payload = %v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never delivered")
	}
}

func TestAchievementUnlockedDelivery(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "hook123", slog.Default(), WithHTTPClient(srv.Client()))
	client.AchievementUnlocked(gamification.AchievementUnlockedEvent{
		UserName:        "Lukas",
		AchievementName: "First Steps",
		Icon:            "mdi:flag-checkered",
		PointsReward:    25,
	})

	select {
	case payload := <-received:
		if payload["event_type"] != "achievement_unlocked" {
			t.Errorf("event_type = %v", payload["event_type"])
		}
		if payload["achievement_name"] != "First Steps" {
			t.Errorf("payload = %v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never delivered")
	}
}

func TestUnconfiguredClientNeverSends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unconfigured client must not deliver")
	}))
	defer srv.Close()

	client := NewClient("", "", slog.Default(), WithHTTPClient(srv.Client()))
	if client.Configured() {
		t.Error("Configured() = true for empty target")
	}
	client.TaskCompleted(gamification.TaskCompletedEvent{Title: "Dishes"})
	time.Sleep(50 * time.Millisecond)
}
