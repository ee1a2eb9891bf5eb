package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/middleware"
	"github.com/ndtoan/meeting-server/models"
	"github.com/ndtoan/meeting-server/services"
)

type createMeetingReq struct {
	Title       string                  `json:"title" binding:"required,min=1"`
	Description string                  `json:"description"`
	Location    string                  `json:"location"`
	Slots       []services.SlotInput    `json:"slots" binding:"required,min=1"`
	Invitees    []services.InviteeInput `json:"invitees"`
}

func CreateMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req createMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	id, err := services.CreateMeeting(config.DB, dispatcher(), u, services.CreateMeetingInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Slots:       req.Slots,
		Invitees:    req.Invitees,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListMeetings returns the caller's meetings: the ones they organize plus
// the ones they are invited to and have not declined.
func ListMeetings(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	type meetingRow struct {
		models.Meeting
		MyStatus string `json:"my_status"`
	}
	var rows []meetingRow
	err := config.DB.Raw(`
		SELECT m.*,
		CASE WHEN m.organizer_id = ? THEN 'organizer' ELSE p.status END AS my_status
		FROM meetings m
		LEFT JOIN participants p ON m.id = p.meeting_id AND p.user_id = ?
		WHERE m.organizer_id = ?
		OR (p.user_id = ? AND p.status IN ('confirmed', 'pending'))
		ORDER BY m.start_time DESC`, u.ID, u.ID, u.ID, u.ID).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": rows})
}

// slotResponse is one respondent's answer shown under a slot in the detail
// view; guests are flagged so the UI can label them.
type slotResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Availability string `json:"availability"`
	IsGuest      bool   `json:"is_guest"`
}

func GetMeetingDetail(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting id"})
		return
	}

	// Only participants may see a meeting; everyone else gets the same 404
	// an unknown id would, so existence never leaks.
	var meeting models.Meeting
	err = config.DB.Raw(`
		SELECT m.* FROM meetings m
		JOIN participants p ON m.id = p.meeting_id
		WHERE m.id = ? AND p.user_id = ?`, id, u.ID).Scan(&meeting).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load meeting"})
		return
	}
	if meeting.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	var organizer models.User
	config.DB.First(&organizer, meeting.OrganizerID)

	type participantRow struct {
		UserID uint   `json:"user_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Status string `json:"status"`
	}
	var participants []participantRow
	config.DB.Raw(`
		SELECT u.id AS user_id, u.name, u.email, p.status
		FROM users u JOIN participants p ON u.id = p.user_id
		WHERE p.meeting_id = ?`, id).Scan(&participants)

	var guests []models.GuestParticipant
	config.DB.Where("meeting_id = ?", id).Find(&guests)

	var slots []models.TimeSlot
	config.DB.Where("meeting_id = ?", id).Order("start_time").Find(&slots)

	responses := make(map[uint][]slotResponse)

	var userRows []struct {
		TimeSlotID   uint
		UserID       uint
		Name         string
		Availability string
	}
	config.DB.Raw(`
		SELECT r.time_slot_id, r.user_id, u.name, r.availability
		FROM responses r
		JOIN time_slots ts ON r.time_slot_id = ts.id
		JOIN users u ON r.user_id = u.id
		WHERE ts.meeting_id = ?`, id).Scan(&userRows)
	for _, row := range userRows {
		responses[row.TimeSlotID] = append(responses[row.TimeSlotID], slotResponse{
			ID:           row.UserID,
			Name:         row.Name,
			Availability: row.Availability,
		})
	}

	var guestRows []struct {
		TimeSlotID   uint
		GuestID      uint
		Name         string
		Email        string
		Availability string
	}
	config.DB.Raw(`
		SELECT gr.time_slot_id, gr.guest_id, gp.name, gp.email, gr.availability
		FROM guest_responses gr
		JOIN time_slots ts ON gr.time_slot_id = ts.id
		JOIN guest_participants gp ON gr.guest_id = gp.id
		WHERE ts.meeting_id = ?`, id).Scan(&guestRows)
	for _, row := range guestRows {
		name := row.Name
		if name == "" {
			name = row.Email
		}
		responses[row.TimeSlotID] = append(responses[row.TimeSlotID], slotResponse{
			ID:           row.GuestID,
			Name:         name,
			Availability: row.Availability,
			IsGuest:      true,
		})
	}

	// The caller's own answers, keyed by slot id, for pre-filling the form.
	myResponses := map[uint]string{}
	var mine []models.Response
	config.DB.Raw(`
		SELECT r.* FROM responses r
		JOIN time_slots ts ON r.time_slot_id = ts.id
		WHERE ts.meeting_id = ? AND r.user_id = ?`, id, u.ID).Scan(&mine)
	for _, r := range mine {
		myResponses[r.TimeSlotID] = r.Availability
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting":      meeting,
		"organizer":    organizer,
		"participants": participants,
		"guests":       guests,
		"time_slots":   slots,
		"responses":    responses,
		"my_responses": myResponses,
	})
}

type confirmSlotReq struct {
	SlotID uint `json:"slot_id" binding:"required"`
}

// ConfirmSlot runs behind CheckMeetingOrganizer, which already loaded the
// meeting and verified ownership.
func ConfirmSlot(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	var req confirmSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if err := services.ConfirmSlot(config.DB, dispatcher(), m.ID, u.ID, req.SlotID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot confirmed"})
}

func DeleteMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	if err := services.DeleteMeeting(config.DB, m.ID, u.ID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted"})
}

func RemindNonResponders(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	sent, err := services.RemindNonResponders(config.DB, dispatcher(), m.ID, u.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// lookupMeetingForMember loads a meeting if the caller participates in it.
func lookupMeetingForMember(id int, userID uint) (*models.Meeting, error) {
	var meeting models.Meeting
	err := config.DB.
		Joins("JOIN participants p ON p.meeting_id = meetings.id").
		Where("meetings.id = ? AND p.user_id = ?", id, userID).
		First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Msg: "meeting not found"}
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}
