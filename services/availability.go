package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ndtoan/meeting-server/models"
)

// ResponseInput carries a submission in either of the two wire shapes:
// a positional array aligned to the meeting's slots ordered by start time,
// or an explicit slot-id -> availability map. Positional entries beyond the
// submitted length default to unavailable.
type ResponseInput struct {
	Ordered    []string
	BySlot     map[uint]string
	Positional bool
}

// ParseResponsePayload adapts the raw "responses" JSON field. Both formats
// are still accepted for compatibility with existing clients.
func ParseResponsePayload(raw json.RawMessage) (ResponseInput, error) {
	if len(raw) == 0 {
		return ResponseInput{}, &ValidationError{Msg: "responses are required"}
	}

	var ordered []string
	if err := json.Unmarshal(raw, &ordered); err == nil {
		return ResponseInput{Ordered: ordered, Positional: true}, nil
	}

	var keyed map[string]string
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return ResponseInput{}, &ValidationError{Msg: "responses must be an array or a slot-id map"}
	}
	bySlot := make(map[uint]string, len(keyed))
	for k, v := range keyed {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return ResponseInput{}, &ValidationError{Msg: fmt.Sprintf("invalid slot id %q", k)}
		}
		bySlot[uint(id)] = v
	}
	return ResponseInput{BySlot: bySlot}, nil
}

func (in ResponseInput) validate() error {
	for _, v := range in.Ordered {
		if !models.ValidAvailability(v) {
			return &ValidationError{Msg: fmt.Sprintf("invalid availability value %q", v)}
		}
	}
	for _, v := range in.BySlot {
		if !models.ValidAvailability(v) {
			return &ValidationError{Msg: fmt.Sprintf("invalid availability value %q", v)}
		}
	}
	return nil
}

// slotAnswer is the one normalized shape the aggregator core consumes.
type slotAnswer struct {
	SlotID uint
	Value  string
}

// normalize maps the input onto the meeting's slots. Slots are walked in
// start-time order; entries for slots that do not belong to the meeting are
// silently dropped here because they never match a slot id.
func (in ResponseInput) normalize(slots []models.TimeSlot) []slotAnswer {
	var answers []slotAnswer
	if in.Positional {
		for i, slot := range slots {
			value := models.Unavailable
			if i < len(in.Ordered) {
				value = in.Ordered[i]
			}
			answers = append(answers, slotAnswer{SlotID: slot.ID, Value: value})
		}
		return answers
	}
	for _, slot := range slots {
		if value, ok := in.BySlot[slot.ID]; ok {
			answers = append(answers, slotAnswer{SlotID: slot.ID, Value: value})
		}
	}
	return answers
}

// RecordResponse upserts the respondent's per-slot availability and derives
// their overall status from the stored response set, all inside one
// transaction. It returns the derived status ("confirmed" or "declined").
func RecordResponse(db *gorm.DB, d *Dispatcher, meetingID uint, r Respondent, in ResponseInput) (string, error) {
	var meeting models.Meeting
	if err := db.First(&meeting, meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Msg: "meeting not found"}
		}
		return "", storage(err)
	}

	// The respondent must already be invited; the two identity schemes are
	// checked separately and never mixed.
	switch resp := r.(type) {
	case RegisteredRespondent:
		if resp.User.ID == meeting.OrganizerID {
			return "", &AuthorizationError{Msg: "the organizer cannot respond to their own meeting"}
		}
		var count int64
		if err := db.Model(&models.Participant{}).
			Where("meeting_id = ? AND user_id = ?", meetingID, resp.User.ID).
			Count(&count).Error; err != nil {
			return "", storage(err)
		}
		if count == 0 {
			return "", &AuthorizationError{Msg: "not invited to this meeting"}
		}
	case GuestRespondent:
		if resp.Guest.MeetingID != meetingID {
			return "", &AuthorizationError{Msg: "not invited to this meeting"}
		}
	default:
		return "", &AuthorizationError{Msg: "unknown respondent"}
	}

	if err := in.validate(); err != nil {
		return "", err
	}

	var status string
	err := db.Transaction(func(tx *gorm.DB) error {
		var slots []models.TimeSlot
		if err := tx.Where("meeting_id = ?", meetingID).
			Order("start_time").Find(&slots).Error; err != nil {
			return err
		}

		answers := in.normalize(slots)

		switch resp := r.(type) {
		case RegisteredRespondent:
			for _, a := range answers {
				row := models.Response{TimeSlotID: a.SlotID, UserID: resp.User.ID, Availability: a.Value}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "time_slot_id"}, {Name: "user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"availability"}),
				}).Create(&row).Error; err != nil {
					return err
				}
			}

			derived, err := deriveStatus(tx, slots, "responses", "user_id", resp.User.ID)
			if err != nil {
				return err
			}
			status = derived
			if err := tx.Model(&models.Participant{}).
				Where("meeting_id = ? AND user_id = ?", meetingID, resp.User.ID).
				Update("status", status).Error; err != nil {
				return err
			}

		case GuestRespondent:
			for _, a := range answers {
				row := models.GuestResponse{TimeSlotID: a.SlotID, GuestID: resp.Guest.ID, Availability: a.Value}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "time_slot_id"}, {Name: "guest_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"availability"}),
				}).Create(&row).Error; err != nil {
					return err
				}
			}

			derived, err := deriveStatus(tx, slots, "guest_responses", "guest_id", resp.Guest.ID)
			if err != nil {
				return err
			}
			status = derived
			if err := tx.Model(&models.GuestParticipant{}).
				Where("id = ?", resp.Guest.ID).
				Update("status", status).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storage(err)
	}

	// Post-commit side effects: one event to the organizer, then the
	// all-declined sweep. Neither can undo the committed submission.
	organizerID := meeting.OrganizerID
	var message, kind string
	if status == models.StatusDeclined {
		kind = models.NotifDecline
		message = fmt.Sprintf("%s declined all time slots for %q", r.DisplayName(), meeting.Title)
	} else {
		kind = models.NotifConfirm
		message = fmt.Sprintf("%s confirmed their availability for %q", r.DisplayName(), meeting.Title)
	}
	if err := d.Dispatch(Event{
		Kind:            kind,
		RecipientUserID: &organizerID,
		MeetingID:       meetingID,
		Message:         message,
	}); err != nil {
		log.Printf("organizer notification failed for meeting %d: %v", meetingID, err)
	}

	CheckAllDeclined(db, d, meetingID)

	return status, nil
}

// deriveStatus recomputes the respondent's overall status from what is
// actually stored for the meeting's slots. Redundant with the status
// column, but recomputing on every write keeps the column from drifting.
func deriveStatus(tx *gorm.DB, slots []models.TimeSlot, table, ownerCol string, ownerID uint) (string, error) {
	if len(slots) == 0 {
		return models.StatusDeclined, nil
	}
	slotIDs := make([]uint, len(slots))
	for i, s := range slots {
		slotIDs[i] = s.ID
	}

	var positive int64
	err := tx.Table(table).
		Where("time_slot_id IN ? AND "+ownerCol+" = ? AND availability IN ?",
			slotIDs, ownerID, []string{models.Available, models.Maybe}).
		Count(&positive).Error
	if err != nil {
		return "", err
	}
	if positive > 0 {
		return models.StatusConfirmed, nil
	}
	return models.StatusDeclined, nil
}

// CheckAllDeclined notifies the organizer once every respondent (registered
// participants excluding the organizer, plus guests) has declined. The
// notification is skipped while an unread all_declined notice for the
// meeting already exists, so repeated triggers do not pile up.
func CheckAllDeclined(db *gorm.DB, d *Dispatcher, meetingID uint) {
	var meeting models.Meeting
	if err := db.First(&meeting, meetingID).Error; err != nil {
		log.Printf("all-declined check skipped, meeting %d: %v", meetingID, err)
		return
	}

	type tally struct {
		Total    int64
		Declined int64
	}
	var users, guests tally

	err := db.Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'declined' THEN 1 ELSE 0 END), 0) AS declined
		FROM participants WHERE meeting_id = ? AND user_id <> ?`,
		meetingID, meeting.OrganizerID).Scan(&users).Error
	if err != nil {
		log.Printf("all-declined check failed for meeting %d: %v", meetingID, err)
		return
	}
	err = db.Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'declined' THEN 1 ELSE 0 END), 0) AS declined
		FROM guest_participants WHERE meeting_id = ?`, meetingID).Scan(&guests).Error
	if err != nil {
		log.Printf("all-declined check failed for meeting %d: %v", meetingID, err)
		return
	}

	total := users.Total + guests.Total
	declined := users.Declined + guests.Declined
	if total == 0 || declined != total {
		return
	}

	var pending int64
	if err := db.Model(&models.Notification{}).
		Where("meeting_id = ? AND user_id = ? AND type = ? AND is_read = ?",
			meetingID, meeting.OrganizerID, models.NotifAllDeclined, false).
		Count(&pending).Error; err != nil {
		log.Printf("all-declined dedup check failed for meeting %d: %v", meetingID, err)
		return
	}
	if pending > 0 {
		return
	}

	organizerID := meeting.OrganizerID
	if err := d.Dispatch(Event{
		Kind:            models.NotifAllDeclined,
		RecipientUserID: &organizerID,
		MeetingID:       meetingID,
		Message:         fmt.Sprintf("All participants declined the meeting %q", meeting.Title),
	}); err != nil {
		log.Printf("all-declined notification failed for meeting %d: %v", meetingID, err)
	}
}
