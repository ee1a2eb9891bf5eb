package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ndtoan/meeting-server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DB keeps every pooled connection on the same
	// in-memory database while staying isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Meeting{},
		&models.TimeSlot{},
		&models.Participant{},
		&models.GuestParticipant{},
		&models.Response{},
		&models.GuestResponse{},
		&models.Notification{},
	))
	return db
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp down")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) sentTo(addr string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.To == addr {
			out = append(out, s)
		}
	}
	return out
}

func newTestDispatcher(db *gorm.DB) (*Dispatcher, *fakeMailer) {
	mailer := &fakeMailer{}
	return NewDispatcher(db, mailer, "http://localhost:8080"), mailer
}

func createUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// seedMeeting creates a proposed meeting with the given slots and returns
// the slots ordered by start time, as the aggregator sees them.
func seedMeeting(t *testing.T, db *gorm.DB, organizer models.User, title string, starts ...time.Time) (models.Meeting, []models.TimeSlot) {
	t.Helper()

	m := models.Meeting{Title: title, OrganizerID: organizer.ID, Status: models.MeetingProposed}
	require.NoError(t, db.Create(&m).Error)
	require.NoError(t, db.Create(&models.Participant{MeetingID: m.ID, UserID: organizer.ID}).Error)

	for _, s := range starts {
		require.NoError(t, db.Create(&models.TimeSlot{
			MeetingID: m.ID,
			StartTime: s,
			EndTime:   s.Add(time.Hour),
		}).Error)
	}

	var slots []models.TimeSlot
	require.NoError(t, db.Where("meeting_id = ?", m.ID).Order("start_time").Find(&slots).Error)
	return m, slots
}

func invite(t *testing.T, db *gorm.DB, meetingID uint, user models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Participant{MeetingID: meetingID, UserID: user.ID}).Error)
}

func inviteGuest(t *testing.T, db *gorm.DB, meetingID uint, email, name, token string) models.GuestParticipant {
	t.Helper()
	g := models.GuestParticipant{MeetingID: meetingID, Email: email, Name: name, Token: token}
	require.NoError(t, db.Create(&g).Error)
	return g
}

func notificationCount(t *testing.T, db *gorm.DB, userID uint, kind string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, kind).Count(&n).Error)
	return n
}
