package handlers

import (
	"log"

	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/arafatr/linkup/backend/internal/ws"
)

// Notifier persists notifications and pushes them to the recipient over the
// WebSocket hub. Handlers share one instance.
type Notifier struct {
	notifications repositories.NotificationRepository
	hub           *ws.Hub
}

// NewNotifier creates a Notifier. The hub may be nil, in which case
// notifications are persisted but not pushed.
func NewNotifier(notifications repositories.NotificationRepository, hub *ws.Hub) *Notifier {
	return &Notifier{notifications: notifications, hub: hub}
}

// Notify stores a notification and pushes it live. Self-notifications are
// dropped. Failures are logged, never surfaced to the triggering request.
func (n *Notifier) Notify(note *models.Notification) {
	if note.SenderID == note.RecipientID {
		return
	}
	if err := n.notifications.CreateNotification(note); err != nil {
		log.Printf("notifier: create %s notification failed: %v", note.Type, err)
		return
	}
	if n.hub != nil {
		n.hub.SendToUser(note.RecipientID, ws.EventNewNotification, note)
	}
}
