package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/models"
)

// CheckMeetingOrganizer loads the meeting into the context and verifies the
// caller organizes it. Runs after AuthJWT.
func CheckMeetingOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting id"})
			return
		}

		var meeting models.Meeting
		if err := config.DB.First(&meeting, id).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
			return
		}

		if meeting.OrganizerID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Only the organizer can do this"})
			return
		}

		c.Set(CtxMeeting, meeting)
		c.Next()
	}
}
