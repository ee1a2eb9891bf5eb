package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndtoan/meeting-server/models"
)

func TestCreateMeetingRoundTrip(t *testing.T) {
	db := newTestDB(t)
	d, mailer := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	invitee := createUser(t, db, "Pat", "pat@example.com")

	id, err := CreateMeeting(db, d, organizer, CreateMeetingInput{
		Title:       "Planning",
		Description: "Q3 planning session",
		Location:    "Room 4",
		Slots: []SlotInput{
			{Start: t0.Add(2 * time.Hour), End: t0.Add(3 * time.Hour)},
			{Start: t0, End: t0.Add(time.Hour)},
		},
		Invitees: []InviteeInput{
			{Email: "pat@example.com"},
			{Email: "guest@example.com", Name: "Gus"},
		},
	})
	require.NoError(t, err)

	var meeting models.Meeting
	require.NoError(t, db.First(&meeting, id).Error)
	assert.Equal(t, models.MeetingProposed, meeting.Status)
	assert.Equal(t, organizer.ID, meeting.OrganizerID)
	assert.Nil(t, meeting.StartTime, "no time is fixed before confirmation")

	var slots []models.TimeSlot
	require.NoError(t, db.Where("meeting_id = ?", id).Order("start_time").Find(&slots).Error)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].StartTime.Equal(t0))

	var participants []models.Participant
	require.NoError(t, db.Where("meeting_id = ?", id).Find(&participants).Error)
	assert.Len(t, participants, 2, "organizer plus the registered invitee")

	var guest models.GuestParticipant
	require.NoError(t, db.Where("meeting_id = ? AND email = ?", id, "guest@example.com").First(&guest).Error)
	assert.Len(t, guest.Token, 64)
	assert.Equal(t, models.StatusPending, guest.Status)

	// Both invitees get an email; only the registered one gets an in-app row.
	assert.Len(t, mailer.sentTo("pat@example.com"), 1)
	assert.Len(t, mailer.sentTo("guest@example.com"), 1)
	assert.EqualValues(t, 1, notificationCount(t, db, invitee.ID, models.NotifInvitation))
	assert.Contains(t, mailer.sentTo("guest@example.com")[0].Body, guest.Token,
		"guest email must carry the response link")
}

func TestCreateMeetingValidation(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")

	_, err := CreateMeeting(db, d, organizer, CreateMeetingInput{
		Slots: []SlotInput{{Start: t0, End: t0.Add(time.Hour)}},
	})
	assert.True(t, IsValidation(err), "title is required")

	_, err = CreateMeeting(db, d, organizer, CreateMeetingInput{Title: "No slots"})
	assert.True(t, IsValidation(err))

	// Blank slot rows are ignored, so an all-blank list fails the same way.
	_, err = CreateMeeting(db, d, organizer, CreateMeetingInput{
		Title: "Blank slots",
		Slots: []SlotInput{{}, {}},
	})
	assert.True(t, IsValidation(err))

	var count int64
	require.NoError(t, db.Model(&models.Meeting{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateMeetingReusesGuestToken(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")

	in := CreateMeetingInput{
		Title:    "Standup",
		Slots:    []SlotInput{{Start: t0, End: t0.Add(time.Hour)}},
		Invitees: []InviteeInput{{Email: "guest@example.com"}, {Email: "guest@example.com"}},
	}
	id, err := CreateMeeting(db, d, organizer, in)
	require.NoError(t, err)

	var guests []models.GuestParticipant
	require.NoError(t, db.Where("meeting_id = ?", id).Find(&guests).Error)
	assert.Len(t, guests, 1, "duplicate invitee emails collapse to one guest")
}

func TestConfirmSlot(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	invitee := createUser(t, db, "Pat", "pat@example.com")
	m, slots := seedMeeting(t, db, organizer, "Kickoff", t0, t0.Add(2*time.Hour))
	invite(t, db, m.ID, invitee)

	require.NoError(t, ConfirmSlot(db, d, m.ID, organizer.ID, slots[1].ID))

	var got models.Meeting
	require.NoError(t, db.First(&got, m.ID).Error)
	assert.Equal(t, models.MeetingConfirmed, got.Status)
	require.NotNil(t, got.StartTime)
	require.NotNil(t, got.EndTime)
	assert.True(t, got.StartTime.Equal(slots[1].StartTime))
	assert.True(t, got.EndTime.Equal(slots[1].EndTime))

	// Candidate slots are retained for history.
	var slotCount int64
	require.NoError(t, db.Model(&models.TimeSlot{}).Where("meeting_id = ?", m.ID).Count(&slotCount).Error)
	assert.EqualValues(t, 2, slotCount)

	assert.EqualValues(t, 1, notificationCount(t, db, invitee.ID, models.NotifConfirm))
	assert.EqualValues(t, 0, notificationCount(t, db, organizer.ID, models.NotifConfirm),
		"the organizer is not in the fan-out")
}

func TestConfirmSlotErrors(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	outsider := createUser(t, db, "Sam", "sam@example.com")
	m, slots := seedMeeting(t, db, organizer, "Kickoff", t0)
	_, foreignSlots := seedMeeting(t, db, organizer, "Other", t0)

	err := ConfirmSlot(db, d, m.ID, outsider.ID, slots[0].ID)
	assert.True(t, IsAuthorization(err))

	var got models.Meeting
	require.NoError(t, db.First(&got, m.ID).Error)
	assert.Equal(t, models.MeetingProposed, got.Status, "rejected confirm must not change status")

	err = ConfirmSlot(db, d, m.ID, organizer.ID, foreignSlots[0].ID)
	assert.True(t, IsNotFound(err), "slot of another meeting")

	err = ConfirmSlot(db, d, 99999, organizer.ID, slots[0].ID)
	assert.True(t, IsNotFound(err))
}

func TestDeleteMeetingCascades(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	invitee := createUser(t, db, "Pat", "pat@example.com")
	m, slots := seedMeeting(t, db, organizer, "Kickoff", t0, t0.Add(2*time.Hour))
	invite(t, db, m.ID, invitee)
	guest := inviteGuest(t, db, m.ID, "guest@example.com", "", "tok-del")

	_, err := RecordResponse(db, d, m.ID, RegisteredRespondent{User: invitee}, ResponseInput{
		BySlot: map[uint]string{slots[0].ID: models.Available},
	})
	require.NoError(t, err)
	_, err = RecordResponse(db, d, m.ID, GuestRespondent{Guest: guest}, ResponseInput{
		BySlot: map[uint]string{slots[0].ID: models.Maybe},
	})
	require.NoError(t, err)

	require.NoError(t, DeleteMeeting(db, m.ID, organizer.ID))

	for name, model := range map[string]interface{}{
		"meetings":           &models.Meeting{},
		"time_slots":         &models.TimeSlot{},
		"participants":       &models.Participant{},
		"guest_participants": &models.GuestParticipant{},
		"responses":          &models.Response{},
		"guest_responses":    &models.GuestResponse{},
		"notifications":      &models.Notification{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "leftover rows in %s", name)
	}
}

func TestDeleteMeetingAuthorization(t *testing.T) {
	db := newTestDB(t)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	invitee := createUser(t, db, "Pat", "pat@example.com")
	m, _ := seedMeeting(t, db, organizer, "Kickoff", t0)
	invite(t, db, m.ID, invitee)

	err := DeleteMeeting(db, m.ID, invitee.ID)
	assert.True(t, IsAuthorization(err))

	var count int64
	require.NoError(t, db.Model(&models.Participant{}).Where("meeting_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count, "rejected delete must leave everything in place")

	assert.True(t, IsNotFound(DeleteMeeting(db, 99999, organizer.ID)))
}

func TestRemindNonResponders(t *testing.T) {
	db := newTestDB(t)
	d, mailer := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	responded := createUser(t, db, "Ann", "ann@example.com")
	silent := createUser(t, db, "Ben", "ben@example.com")
	m, slots := seedMeeting(t, db, organizer, "Kickoff", t0)
	invite(t, db, m.ID, responded)
	invite(t, db, m.ID, silent)
	inviteGuest(t, db, m.ID, "guest@example.com", "", "tok-rem")

	_, err := RecordResponse(db, d, m.ID, RegisteredRespondent{User: responded}, ResponseInput{
		BySlot: map[uint]string{slots[0].ID: models.Available},
	})
	require.NoError(t, err)

	sent, err := RemindNonResponders(db, d, m.ID, organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "the silent user and the silent guest")

	assert.Len(t, mailer.sentTo("ben@example.com"), 1)
	assert.Len(t, mailer.sentTo("guest@example.com"), 1)
	assert.Empty(t, mailer.sentTo("ann@example.com"))
	assert.Empty(t, mailer.sentTo("olivia@example.com"), "the organizer is never reminded")
	assert.EqualValues(t, 1, notificationCount(t, db, silent.ID, models.NotifReminder))

	// Reminders are not throttled; a second sweep resends.
	sent, err = RemindNonResponders(db, d, m.ID, organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, mailer.sentTo("ben@example.com"), 2)
}

func TestRemindNonRespondersAuthorization(t *testing.T) {
	db := newTestDB(t)
	d, _ := newTestDispatcher(db)
	organizer := createUser(t, db, "Olivia", "olivia@example.com")
	outsider := createUser(t, db, "Sam", "sam@example.com")
	m, _ := seedMeeting(t, db, organizer, "Kickoff", t0)

	_, err := RemindNonResponders(db, d, m.ID, outsider.ID)
	assert.True(t, IsAuthorization(err))

	_, err = RemindNonResponders(db, d, 99999, organizer.ID)
	assert.True(t, IsNotFound(err))
}
