package checkin

import "time"

// Entry is one analysed check-in kept in session history.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Text       string    `json:"text"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Risk       string    `json:"risk"`
	Crisis     bool      `json:"crisis"`
	CreatedAt  time.Time `json:"createdAt"`
}
