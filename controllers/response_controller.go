package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/middleware"
	"github.com/ndtoan/meeting-server/models"
	"github.com/ndtoan/meeting-server/services"
)

// respondReq leaves "responses" raw: clients send either a positional array
// or a slot-id map, and the adapter sorts it out.
type respondReq struct {
	Responses json.RawMessage `json:"responses" binding:"required"`
}

// RespondToMeeting records a registered participant's availability.
func RespondToMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting id"})
		return
	}

	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	input, err := services.ParseResponsePayload(req.Responses)
	if err != nil {
		serviceError(c, err)
		return
	}

	status, err := services.RecordResponse(config.DB, dispatcher(), uint(id),
		services.RegisteredRespondent{User: u}, input)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// guestByToken resolves the capability token, failing closed on unknowns.
func guestByToken(c *gin.Context) (*models.GuestParticipant, bool) {
	token := c.Param("token")

	var guest models.GuestParticipant
	if err := config.DB.Where("token = ?", token).First(&guest).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Invitation not found"})
		return nil, false
	}
	return &guest, true
}

// GetGuestInvite shows a guest their meeting, its slots and any answers
// they already gave. The token is the only authentication.
func GetGuestInvite(c *gin.Context) {
	guest, ok := guestByToken(c)
	if !ok {
		return
	}

	var meeting models.Meeting
	if err := config.DB.First(&meeting, guest.MeetingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Invitation not found"})
		return
	}

	var slots []models.TimeSlot
	config.DB.Where("meeting_id = ?", guest.MeetingID).Order("start_time").Find(&slots)

	prior := map[uint]string{}
	var rows []models.GuestResponse
	config.DB.Where("guest_id = ?", guest.ID).Find(&rows)
	for _, r := range rows {
		prior[r.TimeSlotID] = r.Availability
	}

	payload := gin.H{
		"meeting":    meeting,
		"guest":      guest,
		"time_slots": slots,
		"responses":  prior,
	}
	// OptionalAuth may have recognized a signed-in user following the guest
	// link; surface them so the UI can offer the account flow instead.
	if v, ok := c.Get(middleware.CtxUser); ok {
		payload["viewer"] = v.(models.User)
	}
	c.JSON(http.StatusOK, payload)
}

// SubmitGuestResponse records a guest's availability via their token.
func SubmitGuestResponse(c *gin.Context) {
	guest, ok := guestByToken(c)
	if !ok {
		return
	}

	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	input, err := services.ParseResponsePayload(req.Responses)
	if err != nil {
		serviceError(c, err)
		return
	}

	status, err := services.RecordResponse(config.DB, dispatcher(), guest.MeetingID,
		services.GuestRespondent{Guest: *guest}, input)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
