package models

// GuestResponse mirrors Response for token-authenticated guests,
// keyed by (slot, guest) instead of (slot, user).
type GuestResponse struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TimeSlotID   uint   `gorm:"not null;uniqueIndex:idx_guest_responses_slot_guest" json:"time_slot_id"`
	GuestID      uint   `gorm:"not null;uniqueIndex:idx_guest_responses_slot_guest" json:"guest_id"`
	Availability string `gorm:"size:20;not null" json:"availability"`

	Guest *GuestParticipant `gorm:"foreignKey:GuestID;references:ID" json:"-"`
}

func (GuestResponse) TableName() string {
	return "guest_responses"
}
