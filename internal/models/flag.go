package models

import "time"

// Flag is one user's abuse report against a circle. A circle may accumulate
// many flags; the count drives the moderation queue ordering.
type Flag struct {
	ID         int64     `json:"id"`
	CircleID   int64     `json:"circle_id"`
	FlagUserID int64     `json:"flag_user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
