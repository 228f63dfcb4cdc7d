package checkin

import "time"

// Session captures a transient anonymous check-in run.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
