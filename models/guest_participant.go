package models

// GuestParticipant is an email-only invitee. The token is the sole
// credential for the guest response endpoints and is unique system-wide.
type GuestParticipant struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID uint   `gorm:"not null;uniqueIndex:idx_guest_meeting_email" json:"meeting_id"`
	Email     string `gorm:"size:255;not null;uniqueIndex:idx_guest_meeting_email" json:"email"`
	Name      string `gorm:"size:100" json:"name"`
	Token     string `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Status    string `gorm:"size:20;not null;default:'pending'" json:"status"`

	GuestResponses []GuestResponse `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"-"`
}

func (GuestParticipant) TableName() string {
	return "guest_participants"
}

// DisplayName is what notifications show for a guest.
func (g GuestParticipant) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Email
}
