package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/ndtoan/meeting-server/models"
	"github.com/ndtoan/meeting-server/utils"
)

// Event is one notification/email to one recipient. Registered recipients
// (RecipientUserID set) get a persisted notification row; invitation and
// reminder kinds additionally get an email. Guests only ever get email.
type Event struct {
	Kind            string
	RecipientEmail  string
	RecipientUserID *uint
	MeetingID       uint
	Message         string
	// GuestToken builds the guest response link for guest-addressed events.
	GuestToken string
}

// Dispatcher decides when a notification fires, not how it is delivered.
// It runs strictly after the transaction that produced the event; delivery
// failures are logged and swallowed so they can never fail the parent
// operation.
type Dispatcher struct {
	DB      *gorm.DB
	Mailer  utils.Mailer
	BaseURL string
}

func NewDispatcher(db *gorm.DB, mailer utils.Mailer, baseURL string) *Dispatcher {
	return &Dispatcher{DB: db, Mailer: mailer, BaseURL: baseURL}
}

// Dispatch processes a single event. The one error it reports is a failure
// to persist the notification row; email problems are only logged.
func (d *Dispatcher) Dispatch(ev Event) error {
	if ev.RecipientUserID != nil {
		n := models.Notification{
			UserID:    *ev.RecipientUserID,
			MeetingID: ev.MeetingID,
			Message:   ev.Message,
			Type:      ev.Kind,
		}
		if err := d.DB.Create(&n).Error; err != nil {
			log.Printf("failed to create notification for user %d: %v", *ev.RecipientUserID, err)
			return storage(err)
		}
	}

	switch ev.Kind {
	case models.NotifInvitation, models.NotifReminder:
		d.email(ev)
	}
	return nil
}

// email renders and sends the message for invitation/reminder events.
func (d *Dispatcher) email(ev Event) {
	if ev.RecipientEmail == "" {
		return
	}

	var meeting models.Meeting
	if err := d.DB.First(&meeting, ev.MeetingID).Error; err != nil {
		log.Printf("email skipped, meeting %d not found: %v", ev.MeetingID, err)
		return
	}
	var slots []models.TimeSlot
	if err := d.DB.Where("meeting_id = ?", ev.MeetingID).
		Order("start_time").Find(&slots).Error; err != nil {
		log.Printf("email skipped, slots for meeting %d: %v", ev.MeetingID, err)
		return
	}

	var responseURL string
	if ev.GuestToken != "" {
		responseURL = fmt.Sprintf("%s/meetings/guest/%s", d.BaseURL, ev.GuestToken)
	} else {
		responseURL = fmt.Sprintf("%s/meetings/%d/respond", d.BaseURL, ev.MeetingID)
	}

	var subject, body string
	switch ev.Kind {
	case models.NotifReminder:
		subject = fmt.Sprintf("Reminder: meeting %q is waiting for your answer", meeting.Title)
		body = utils.ReminderEmail(meeting, slots, responseURL)
	default:
		subject = fmt.Sprintf("Meeting invitation: %s", meeting.Title)
		if ev.GuestToken != "" {
			body = utils.InviteGuestEmail(meeting, slots, responseURL)
		} else {
			body = utils.InviteRegisteredEmail(meeting, slots, responseURL, ev.RecipientEmail)
		}
	}

	if err := d.Mailer.Send(ev.RecipientEmail, subject, body); err != nil {
		// Best effort: the parent operation already committed.
		log.Printf("failed to send %s email to %s: %v", ev.Kind, ev.RecipientEmail, err)
	}
}

// UnreadNotification is a notification joined with its meeting title for
// the inbox listing.
type UnreadNotification struct {
	models.Notification
	MeetingTitle string `json:"meeting_title"`
}

func (d *Dispatcher) UnreadForUser(userID uint) ([]UnreadNotification, error) {
	var out []UnreadNotification
	err := d.DB.Raw(`
		SELECT n.*, m.title AS meeting_title
		FROM notifications n
		JOIN meetings m ON n.meeting_id = m.id
		WHERE n.user_id = ? AND n.is_read = ?
		ORDER BY n.created_at DESC`, userID, false).Scan(&out).Error
	return out, storage(err)
}

// MarkAsRead flips the read flag; only the recipient may do so.
func (d *Dispatcher) MarkAsRead(notificationID, userID uint) error {
	res := d.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Msg: "notification not found"}
	}
	return nil
}
