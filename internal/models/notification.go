package models

import "time"

type NotificationType string

const (
	NotifyBooking      NotificationType = "booking"
	NotifyTransaction  NotificationType = "transaction"
	NotifyUser         NotificationType = "user"
	NotifyVerification NotificationType = "verification"
	NotifySystem       NotificationType = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Notification struct {
	ID           string           `json:"id"`
	RecipientID  string           `json:"recipientId"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	Category     string           `json:"category"`
	Priority     Priority         `json:"priority"`
	Read         bool             `json:"read"`
	RelatedID    *string          `json:"relatedId,omitempty"`
	RelatedModel *string          `json:"relatedModel,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// PopulatedNotification is a notification with its references resolved, as pushed to clients.
type PopulatedNotification struct {
	Notification
	Recipient *UserSummary   `json:"recipient,omitempty"`
	Related   *RelatedEntity `json:"related,omitempty"`
}

type RelatedEntity struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// NotificationInput is what callers of the fan-out supply per recipient.
type NotificationInput struct {
	Title        string
	Message      string
	Type         NotificationType
	Category     string
	Priority     Priority
	RelatedID    string
	RelatedModel string
}
