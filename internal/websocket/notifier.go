package websocket

import "github.com/mboehm/chorequest/internal/gamification"

// Notifier broadcasts gamification events to connected WebSocket clients.
// It implements gamification.Notifier.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) TaskCompleted(ev gamification.TaskCompletedEvent) {
	n.hub.Broadcast(Event{Type: "task_completed", Payload: ev})
}

func (n *Notifier) AchievementUnlocked(ev gamification.AchievementUnlockedEvent) {
	n.hub.Broadcast(Event{Type: "achievement_unlocked", Payload: ev})
}
