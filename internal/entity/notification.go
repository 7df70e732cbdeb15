package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationOffer           NotificationKind = "OFFER"
	NotificationInterviewInvite NotificationKind = "INTERVIEW_INVITE"
)

// Notification is an in-app inbox entry for the recipient user.
type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	ApplicationID uuid.UUID        `gorm:"type:uuid;not null" json:"application_id"`
	Kind          NotificationKind `gorm:"size:30;not null" json:"kind"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Body          string           `gorm:"type:text" json:"body"`
	IsRead        bool             `gorm:"default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
