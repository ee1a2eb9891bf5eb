package models

import "time"

// TimeSlot is a candidate interval for a meeting. Slots are immutable after
// creation; confirming a meeting copies the chosen slot onto the meeting row
// and keeps the candidates for history.
type TimeSlot struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID uint      `gorm:"not null;index" json:"meeting_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Responses      []Response      `gorm:"foreignKey:TimeSlotID;constraint:OnDelete:CASCADE" json:"-"`
	GuestResponses []GuestResponse `gorm:"foreignKey:TimeSlotID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}
