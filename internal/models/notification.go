package models

import "time"

// NotificationType enumerates the graph mutations that produce notifications.
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification records a follow or like aimed at a user. Notifications are
// only ever created as a side effect of a graph mutation, never directly by a
// client request. They are scoped to their recipient for listing and deletion.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Type      NotificationType `gorm:"not null" json:"type"`
	FromID    uint             `gorm:"not null" json:"from_id"`
	From      *User            `gorm:"foreignKey:FromID" json:"from,omitempty"`
	ToID      uint             `gorm:"not null;index" json:"to_id"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
