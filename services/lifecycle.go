package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ndtoan/meeting-server/models"
	"github.com/ndtoan/meeting-server/utils"
)

type SlotInput struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type InviteeInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CreateMeetingInput struct {
	Title       string
	Description string
	Location    string
	Slots       []SlotInput
	Invitees    []InviteeInput
}

// CreateMeeting inserts the meeting, its candidate slots, the organizer as
// participant, and every invitee (registered user or tokenized guest) in a
// single transaction. Invitation events fire only after the commit.
func CreateMeeting(db *gorm.DB, d *Dispatcher, organizer models.User, in CreateMeetingInput) (uint, error) {
	// Blank slot rows from the form are skipped; at least one real slot is
	// required.
	var slots []SlotInput
	for _, s := range in.Slots {
		if !s.Start.IsZero() && !s.End.IsZero() {
			slots = append(slots, s)
		}
	}
	if strings.TrimSpace(in.Title) == "" || len(slots) == 0 {
		return 0, &ValidationError{Msg: "title and at least one time slot are required"}
	}

	var meetingID uint
	var events []Event

	err := db.Transaction(func(tx *gorm.DB) error {
		meeting := models.Meeting{
			Title:       in.Title,
			Description: in.Description,
			Location:    in.Location,
			OrganizerID: organizer.ID,
			Status:      models.MeetingProposed,
		}
		if err := tx.Create(&meeting).Error; err != nil {
			return err
		}
		meetingID = meeting.ID

		if err := tx.Create(&models.Participant{
			MeetingID: meeting.ID,
			UserID:    organizer.ID,
		}).Error; err != nil {
			return err
		}

		for _, s := range slots {
			if err := tx.Create(&models.TimeSlot{
				MeetingID: meeting.ID,
				StartTime: s.Start,
				EndTime:   s.End,
			}).Error; err != nil {
				return err
			}
		}

		for _, inv := range in.Invitees {
			email := strings.TrimSpace(inv.Email)
			if email == "" {
				continue
			}

			var user models.User
			err := tx.Where("email = ?", email).First(&user).Error
			switch {
			case err == nil:
				// Registered user: participant row plus in-app + email invite.
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&models.Participant{MeetingID: meeting.ID, UserID: user.ID}).Error; err != nil {
					return err
				}
				uid := user.ID
				events = append(events, Event{
					Kind:            models.NotifInvitation,
					RecipientEmail:  user.Email,
					RecipientUserID: &uid,
					MeetingID:       meeting.ID,
					Message:         fmt.Sprintf("%s invited you to the meeting %q", organizer.Name, meeting.Title),
				})

			case errors.Is(err, gorm.ErrRecordNotFound):
				// Email-only guest: reuse by (meeting,email), otherwise mint a
				// fresh capability token.
				var guest models.GuestParticipant
				gerr := tx.Where("meeting_id = ? AND email = ?", meeting.ID, email).First(&guest).Error
				if errors.Is(gerr, gorm.ErrRecordNotFound) {
					token, terr := utils.GenerateGuestToken()
					if terr != nil {
						return terr
					}
					guest = models.GuestParticipant{
						MeetingID: meeting.ID,
						Email:     email,
						Name:      inv.Name,
						Token:     token,
					}
					if gerr = tx.Create(&guest).Error; gerr != nil {
						return gerr
					}
				} else if gerr != nil {
					return gerr
				}
				events = append(events, Event{
					Kind:           models.NotifInvitation,
					RecipientEmail: guest.Email,
					MeetingID:      meeting.ID,
					GuestToken:     guest.Token,
				})

			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storage(err)
	}

	for _, ev := range events {
		if err := d.Dispatch(ev); err != nil {
			log.Printf("invitation dispatch failed for meeting %d: %v", meetingID, err)
		}
	}

	return meetingID, nil
}

// ConfirmSlot commits one candidate slot: the meeting flips to confirmed and
// takes over the slot's times. Candidate slots are retained for history.
func ConfirmSlot(db *gorm.DB, d *Dispatcher, meetingID, organizerID, slotID uint) error {
	var meeting models.Meeting
	if err := db.First(&meeting, meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Msg: "meeting not found"}
		}
		return storage(err)
	}
	if meeting.OrganizerID != organizerID {
		return &AuthorizationError{Msg: "only the organizer can confirm a slot"}
	}

	var slot models.TimeSlot
	if err := db.Where("id = ? AND meeting_id = ?", slotID, meetingID).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Msg: "time slot not found for this meeting"}
		}
		return storage(err)
	}

	if err := db.Model(&models.Meeting{}).Where("id = ?", meetingID).Updates(map[string]interface{}{
		"status":     models.MeetingConfirmed,
		"start_time": slot.StartTime,
		"end_time":   slot.EndTime,
	}).Error; err != nil {
		return storage(err)
	}

	// Fan out to registered participants; the organizer already knows and
	// guests are reached over email only, not on this path.
	var participants []models.Participant
	if err := db.Where("meeting_id = ? AND user_id <> ?", meetingID, organizerID).
		Find(&participants).Error; err != nil {
		return storage(err)
	}
	message := fmt.Sprintf("The time slot %q has been confirmed for the meeting %q",
		slot.StartTime.Format("Mon, 02 Jan 2006 15:04")+" - "+slot.EndTime.Format("15:04"),
		meeting.Title)
	for _, p := range participants {
		uid := p.UserID
		if err := d.Dispatch(Event{
			Kind:            models.NotifConfirm,
			RecipientUserID: &uid,
			MeetingID:       meetingID,
			Message:         message,
		}); err != nil {
			log.Printf("confirm notification failed for user %d: %v", uid, err)
		}
	}
	return nil
}

// DeleteMeeting removes the meeting and everything hanging off it. The
// ownership check gates the whole cascade and all deletes share one
// transaction, so a rejected caller can never leave a partial cascade.
func DeleteMeeting(db *gorm.DB, meetingID, requesterID uint) error {
	var meeting models.Meeting
	if err := db.First(&meeting, meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Msg: "meeting not found"}
		}
		return storage(err)
	}
	if meeting.OrganizerID != requesterID {
		return &AuthorizationError{Msg: "only the organizer can delete this meeting"}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		slotIDs := tx.Model(&models.TimeSlot{}).Select("id").Where("meeting_id = ?", meetingID)
		if err := tx.Where("time_slot_id IN (?)", slotIDs).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("time_slot_id IN (?)", slotIDs).Delete(&models.GuestResponse{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&models.TimeSlot{}, &models.Participant{}, &models.GuestParticipant{}, &models.Notification{},
		} {
			if err := tx.Where("meeting_id = ?", meetingID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Meeting{}, meetingID).Error
	})
	return storage(err)
}

// RemindNonResponders emails (and, for registered users, notifies) every
// invitee with no recorded response across the meeting's slots. Returns the
// number of reminders dispatched. Repeated calls resend unconditionally.
func RemindNonResponders(db *gorm.DB, d *Dispatcher, meetingID, organizerID uint) (int, error) {
	var meeting models.Meeting
	if err := db.First(&meeting, meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Msg: "meeting not found"}
		}
		return 0, storage(err)
	}
	if meeting.OrganizerID != organizerID {
		return 0, &AuthorizationError{Msg: "only the organizer can send reminders"}
	}

	var silentUsers []models.User
	err := db.Raw(`
		SELECT u.* FROM users u
		JOIN participants p ON u.id = p.user_id
		WHERE p.meeting_id = ? AND u.id <> ?
		AND NOT EXISTS (
			SELECT 1 FROM responses r
			JOIN time_slots ts ON r.time_slot_id = ts.id
			WHERE ts.meeting_id = ? AND r.user_id = u.id
		)`, meetingID, organizerID, meetingID).Scan(&silentUsers).Error
	if err != nil {
		return 0, storage(err)
	}

	var silentGuests []models.GuestParticipant
	err = db.Raw(`
		SELECT gp.* FROM guest_participants gp
		WHERE gp.meeting_id = ?
		AND NOT EXISTS (
			SELECT 1 FROM guest_responses gr
			JOIN time_slots ts ON gr.time_slot_id = ts.id
			WHERE ts.meeting_id = ? AND gr.guest_id = gp.id
		)`, meetingID, meetingID).Scan(&silentGuests).Error
	if err != nil {
		return 0, storage(err)
	}

	sent := 0
	for _, u := range silentUsers {
		uid := u.ID
		if err := d.Dispatch(Event{
			Kind:            models.NotifReminder,
			RecipientEmail:  u.Email,
			RecipientUserID: &uid,
			MeetingID:       meetingID,
			Message:         fmt.Sprintf("Reminder: you are invited to %q", meeting.Title),
		}); err != nil {
			log.Printf("reminder failed for user %d: %v", uid, err)
			continue
		}
		sent++
	}
	for _, g := range silentGuests {
		if err := d.Dispatch(Event{
			Kind:           models.NotifReminder,
			RecipientEmail: g.Email,
			MeetingID:      meetingID,
			GuestToken:     g.Token,
		}); err != nil {
			log.Printf("reminder failed for guest %d: %v", g.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
