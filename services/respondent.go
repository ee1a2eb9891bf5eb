package services

import "github.com/ndtoan/meeting-server/models"

// Respondent is either a session-authenticated registered user or a
// token-authenticated guest. The aggregator consumes both through this
// interface and never merges the two identity schemes.
type Respondent interface {
	// DisplayName is used in organizer-facing notifications.
	DisplayName() string
	isRespondent()
}

type RegisteredRespondent struct {
	User models.User
}

func (r RegisteredRespondent) DisplayName() string { return r.User.Name }
func (RegisteredRespondent) isRespondent()         {}

type GuestRespondent struct {
	Guest models.GuestParticipant
}

func (r GuestRespondent) DisplayName() string { return r.Guest.DisplayName() }
func (GuestRespondent) isRespondent()         {}
