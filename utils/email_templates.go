package utils

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ndtoan/meeting-server/models"
)

// HTML bodies for the three outbound email kinds. Kept as plain string
// building, mirroring the small inline style the product always used.

const slotTimeLayout = "Mon, 02 Jan 2006 15:04"

func slotListHTML(slots []models.TimeSlot) string {
	var b strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&b, "<li>%s - %s</li>",
			s.StartTime.Format(slotTimeLayout),
			s.EndTime.Format(time.Kitchen))
	}
	return b.String()
}

func emailShell(heading, intro string, meeting models.Meeting, slots []models.TimeSlot, responseURL, footer string) string {
	desc := meeting.Description
	if desc == "" {
		desc = "No description provided"
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h1 style="color: #333; text-align: center;">%s</h1>
  <p>%s <strong>%s</strong></p>
  <p><strong>Description:</strong> %s</p>
  <h2 style="color: #555;">Proposed time slots:</h2>
  <ul style="padding-left: 20px;">%s</ul>
  <div style="text-align: center; margin-top: 30px;">
    <a href="%s" style="background-color: #f6a0a0; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Share my availability</a>
  </div>
  %s
</div>`,
		heading, intro, html.EscapeString(meeting.Title), html.EscapeString(desc),
		slotListHTML(slots), responseURL, footer)
}

// InviteRegisteredEmail is sent to an invitee who already has an account.
// The footer reminds them which account the invitation is bound to.
func InviteRegisteredEmail(meeting models.Meeting, slots []models.TimeSlot, responseURL, userEmail string) string {
	footer := fmt.Sprintf(`<p style="margin-top: 30px; color: #666; font-size: 0.9em;">
    <strong>Note:</strong> you will need to sign in with <strong>%s</strong> to answer this invitation.
  </p>`, html.EscapeString(userEmail))
	return emailShell("Meeting invitation",
		"You have been invited to the meeting:", meeting, slots, responseURL, footer)
}

// InviteGuestEmail is sent to an email-only invitee; the link carries their
// capability token.
func InviteGuestEmail(meeting models.Meeting, slots []models.TimeSlot, responseURL string) string {
	return emailShell("Meeting invitation",
		"You have been invited to the meeting:", meeting, slots, responseURL, "")
}

// ReminderEmail nudges an invitee who has not answered yet.
func ReminderEmail(meeting models.Meeting, slots []models.TimeSlot, responseURL string) string {
	return emailShell("Reminder: please reply to the invitation",
		"We have not received your answer for the meeting:", meeting, slots, responseURL, "")
}
