package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndtoan/meeting-server/models"
)

func TestGenerateGuestToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := GenerateGuestToken()
		require.NoError(t, err)
		assert.Len(t, tok, 64)
		assert.Regexp(t, "^[0-9a-f]+$", tok)
		assert.False(t, seen[tok], "tokens must not repeat")
		seen[tok] = true
	}
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tok, err := GenerateToken("42")
	require.NoError(t, err)

	claims, err := VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
}

func TestVerifyTokenRejectsBadSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	tok, err := GenerateToken("42")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = VerifyToken(tok)
	assert.Error(t, err)

	_, err = VerifyToken("not.a.jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestEmailTemplates(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	meeting := models.Meeting{Title: "Kickoff <script>"}
	slots := []models.TimeSlot{{StartTime: start, EndTime: start.Add(time.Hour)}}

	body := InviteGuestEmail(meeting, slots, "http://example.com/meetings/guest/tok")
	assert.Contains(t, body, "http://example.com/meetings/guest/tok")
	assert.Contains(t, body, "&lt;script&gt;", "titles are HTML-escaped")
	assert.NotContains(t, body, "<script>")

	body = ReminderEmail(meeting, slots, "http://example.com/meetings/1/respond")
	assert.Contains(t, body, "http://example.com/meetings/1/respond")
	assert.Contains(t, body, "No description provided")
}
