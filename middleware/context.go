package middleware

// Context keys shared between middleware and controllers.
const (
	CtxUser    = "user"
	CtxMeeting = "meetingObj"
)
