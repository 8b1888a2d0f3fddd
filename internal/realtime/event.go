package realtime

import "time"

// Event names understood by clients.
const (
	EventChannelJoined     = "channel-joined"
	EventUserJoined        = "user-joined"
	EventSubmissionUpdate  = "submission-update"
	EventTestResult        = "test-result"
	EventGradingUpdate     = "grading-update"
	EventSubmissionGraded  = "submission-graded"
	EventGradeNotification = "grade-notification"
	EventFileActivity      = "file-activity"
	EventAnalyticsUpdate   = "analytics-update"
)

// Event is the wire envelope delivered to websocket clients. The timestamp
// is stamped by the server at emit time; client-supplied timestamps are
// never trusted.
type Event struct {
	Channel   Channel     `json:"channel"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
