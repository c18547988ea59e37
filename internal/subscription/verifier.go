package subscription

// Channel is one required channel: display name, join URL, and the chat ID
// used for membership lookups.
type Channel struct {
	Name   string
	URL    string
	ChatID int64
}

// Membership statuses that count as not subscribed.
const (
	StatusLeft   = "left"
	StatusKicked = "kicked"
)

// ChatMemberAPI resolves a user's membership status in a chat.
type ChatMemberAPI interface {
	ChatMemberStatus(chatID, userID int64) (string, error)
}

// Verifier checks that a user is a member of every required channel.
type Verifier struct {
	api      ChatMemberAPI
	channels []Channel
}

// NewVerifier builds a verifier over a fixed channel set.
func NewVerifier(api ChatMemberAPI, channels []Channel) *Verifier {
	return &Verifier{api: api, channels: channels}
}

// Channels returns the configured channel set.
func (v *Verifier) Channels() []Channel {
	return v.channels
}

// SubscribedToAll reports whether the user is a member of every required
// channel. Status left or kicked means not subscribed; any lookup error
// fails closed. Every call re-checks all channels, no caching.
func (v *Verifier) SubscribedToAll(userID int64) bool {
	for _, ch := range v.channels {
		status, err := v.api.ChatMemberStatus(ch.ChatID, userID)
		if err != nil {
			return false
		}
		if status == StatusLeft || status == StatusKicked {
			return false
		}
	}
	return true
}
