package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// Participant links a registered user to a meeting. Status is derived from
// the user's responses by the aggregator, never set directly elsewhere.
type Participant struct {
	MeetingID uint   `gorm:"primaryKey;autoIncrement:false" json:"meeting_id"`
	UserID    uint   `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Status    string `gorm:"size:20;not null;default:'pending'" json:"status"`

	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Participant) TableName() string {
	return "participants"
}
