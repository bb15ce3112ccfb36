package loan

import "time"

// Message persists individual turns for audit/debug.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	State     State     `json:"state,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
