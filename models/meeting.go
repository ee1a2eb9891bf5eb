package models

import "time"

const (
	MeetingProposed  = "proposed"
	MeetingConfirmed = "confirmed"
)

type Meeting struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"size:255" json:"location"`
	OrganizerID uint       `gorm:"not null;index" json:"organizer_id"`
	Status      string     `gorm:"size:20;not null;default:'proposed'" json:"status"`
	// Copied from the chosen slot once the organizer confirms; nil until then.
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Organizer *User `gorm:"foreignKey:OrganizerID;references:ID" json:"-"`

	TimeSlots         []TimeSlot         `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
	Participants      []Participant      `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
	GuestParticipants []GuestParticipant `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Meeting) TableName() string {
	return "meetings"
}
