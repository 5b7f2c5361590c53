package model

import "time"

// NotificationEvent is published after a notification is stored
type NotificationEvent struct {
	Type           string    `json:"type"`
	NotificationID string    `json:"notificationId"`
	Recipient      string    `json:"recipient"`
	Category       Category  `json:"category"`
	Priority       Priority  `json:"priority"`
	RelatedCaseID  string    `json:"relatedCaseId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

const EventNotificationCreated = "notification.created"
