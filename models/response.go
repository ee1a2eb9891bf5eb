package models

const (
	Available   = "available"
	Maybe       = "maybe"
	Unavailable = "unavailable"
)

// Response records a registered participant's availability for one slot.
// Unique per (slot, user); resubmission upserts the value.
type Response struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TimeSlotID   uint   `gorm:"not null;uniqueIndex:idx_responses_slot_user" json:"time_slot_id"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_responses_slot_user" json:"user_id"`
	Availability string `gorm:"size:20;not null" json:"availability"`

	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Response) TableName() string {
	return "responses"
}

// ValidAvailability reports whether v is one of the three accepted values.
func ValidAvailability(v string) bool {
	return v == Available || v == Maybe || v == Unavailable
}
