package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var nowFunc = time.Now // mockable

type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`

	// Sender identity is snapshotted at send time.
	SenderName      string `json:"sender_name"`
	SenderAvatarURL string `json:"sender_avatar_url"`

	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"` // UTC
}

// Conversation summarizes a message thread between two users from one side's
// point of view.
type Conversation struct {
	ID          string    `json:"id"`
	Participant user.User `json:"participant"`
	LastMessage Message   `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
}

// ConversationID is stable for a pair of users whichever way round they are
// given.
func ConversationID(userID1, userID2 string) string {
	ids := []string{userID1, userID2}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// NewMessage contains information needed to send a new Message.
type NewMessage struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Text = core.CleanString(nm.Text)
	return core.Validate.Struct(nm)
}
