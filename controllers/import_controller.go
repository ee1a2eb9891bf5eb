package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/middleware"
	"github.com/ndtoan/meeting-server/models"
)

// ImportMeetings turns each VEVENT of an uploaded .ics file into a proposed
// meeting with a single candidate slot, organized by the caller.
func ImportMeetings(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	fileHeader, err := c.FormFile("calendar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No calendar file uploaded"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read calendar file"})
		return
	}
	defer file.Close()

	dec := ical.NewDecoder(file)
	imported := 0

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for {
			cal, err := dec.Decode()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			for _, event := range cal.Events() {
				summary, _ := event.Props.Text(ical.PropSummary)
				description, _ := event.Props.Text(ical.PropDescription)
				location, _ := event.Props.Text(ical.PropLocation)
				start, err := event.DateTimeStart(time.UTC)
				if err != nil {
					continue
				}
				end, err := event.DateTimeEnd(time.UTC)
				if err != nil {
					continue
				}
				if summary == "" {
					summary = "Imported meeting"
				}

				meeting := models.Meeting{
					Title:       summary,
					Description: description,
					Location:    location,
					OrganizerID: u.ID,
					Status:      models.MeetingProposed,
				}
				if err := tx.Create(&meeting).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.TimeSlot{
					MeetingID: meeting.ID,
					StartTime: start,
					EndTime:   end,
				}).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.Participant{
					MeetingID: meeting.ID,
					UserID:    u.ID,
				}).Error; err != nil {
					return err
				}
				imported++
			}
		}
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse calendar file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

// ExportMeeting serves a meeting as an iCalendar file: the confirmed time
// if one is set, otherwise one VEVENT per candidate slot.
func ExportMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting id"})
		return
	}

	meeting, err := lookupMeetingForMember(id, u.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	var slots []models.TimeSlot
	config.DB.Where("meeting_id = ?", id).Order("start_time").Find(&slots)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//meeting-server//EN")

	addEvent := func(start, end time.Time) {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, uuid.NewString())
		ve.Props.SetText(ical.PropSummary, meeting.Title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, start)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, end)
		if meeting.Description != "" {
			ve.Props.SetText(ical.PropDescription, meeting.Description)
		}
		if meeting.Location != "" {
			ve.Props.SetText(ical.PropLocation, meeting.Location)
		}
		cal.Children = append(cal.Children, ve)
	}

	if meeting.Status == models.MeetingConfirmed && meeting.StartTime != nil && meeting.EndTime != nil {
		addEvent(*meeting.StartTime, *meeting.EndTime)
	} else {
		for _, s := range slots {
			addEvent(s.StartTime, s.EndTime)
		}
	}

	c.Header("Content-Type", "text/calendar")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=meeting-%d.ics", meeting.ID))
	if err := ical.NewEncoder(c.Writer).Encode(cal); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
