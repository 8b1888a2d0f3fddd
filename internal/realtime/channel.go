package realtime

import (
	"fmt"
	"strings"
)

// Channel identifies one logical fan-out group. Clients subscribe to
// channels; services emit events into them.
type Channel string

// Fixed channels.
const (
	AdminChannel      Channel = "admin-channel"
	AdminFileActivity Channel = "admin-file-activity"
	GeneralChannel    Channel = "general"
	challengePrefix           = "challenge-"
	assignmentPrefix          = "assignment-"
	userPrefix                = "user-"
)

// ChallengeChannel scopes events to a single challenge.
func ChallengeChannel(challengeID string) Channel {
	return Channel(challengePrefix + challengeID)
}

// AssignmentChannel scopes events to every challenge of one assignment.
func AssignmentChannel(assignmentNumber int) Channel {
	return Channel(fmt.Sprintf("%s%d", assignmentPrefix, assignmentNumber))
}

// UserChannel carries private notifications for one user.
func UserChannel(userID uint) Channel {
	return Channel(fmt.Sprintf("%s%d", userPrefix, userID))
}

// ResolveChannel maps a subscription request to a channel. Unknown types
// fall back to the general channel rather than failing the subscribe.
func ResolveChannel(channelType, id string) Channel {
	switch strings.ToLower(strings.TrimSpace(channelType)) {
	case "challenge":
		if id != "" {
			return Channel(challengePrefix + id)
		}
	case "assignment":
		if id != "" {
			return Channel(assignmentPrefix + id)
		}
	case "user":
		if id != "" {
			return Channel(userPrefix + id)
		}
	case "admin":
		return AdminChannel
	case "admin-file-activity":
		return AdminFileActivity
	}

	return GeneralChannel
}

// Admin reports whether the channel is restricted to admin/tutor roles.
func (c Channel) Admin() bool {
	return c == AdminChannel || c == AdminFileActivity
}

func (c Channel) String() string {
	return string(c)
}
