package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ndtoan/meeting-server/middleware"
	"github.com/ndtoan/meeting-server/models"
)

// ListNotifications returns the caller's unread notifications, newest
// first, each joined with its meeting title.
func ListNotifications(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	notifications, err := dispatcher().UnreadForUser(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func MarkNotificationRead(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification id"})
		return
	}

	if err := dispatcher().MarkAsRead(uint(id), u.ID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
