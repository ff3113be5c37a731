package sse

import (
	"time"

	"github.com/GTDGit/taskify_api/internal/alert"
)

// HubNotifier implements alert.Publisher on top of the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) AlertRaised(owner string, a alert.Alert) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(owner, &AlertEvent{Event: EventAlertRaised, Alert: a, Timestamp: time.Now()})
}

func (n *HubNotifier) AlertRemoved(owner string, a alert.Alert, reason alert.RemovalReason) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(owner, &AlertEvent{Event: EventAlertRemoved, Alert: a, Reason: reason, Timestamp: time.Now()})
}
