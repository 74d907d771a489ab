package models

import "time"

// Registration is a user's enrollment in a circle, unique per (circle, user).
type Registration struct {
	CircleID  int64     `json:"circle_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
