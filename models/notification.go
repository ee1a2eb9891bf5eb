package models

import "time"

const (
	NotifInvitation  = "invitation"
	NotifReminder    = "reminder"
	NotifConfirm     = "confirm"
	NotifDecline     = "decline"
	NotifAllDeclined = "all_declined"
)

// Notification is an in-app message for a registered user. Guests have no
// inbox; their only channel is email.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	MeetingID uint      `gorm:"not null;index" json:"meeting_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Meeting *Meeting `gorm:"foreignKey:MeetingID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
