package chat

import "time"

// Chat is a persisted conversation owned by a signed-in user. The ID is
// supplied by the client so the same conversation can be resumed and
// re-saved across requests.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}
