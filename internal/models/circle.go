package models

import "time"

// DefaultParticipantsLimit applies when a circle is created without a limit.
const DefaultParticipantsLimit = 100

// Circle represents a hosted, time-bound group event.
// HostID never changes after creation.
type Circle struct {
	ID                int64     `json:"id"`
	HostID            int64     `json:"host_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ParticipantsLimit int       `json:"participants_limit"`
	StartDate         time.Time `json:"start_date"`
	IsLive            bool      `json:"is_live"`
	IsEnded           bool      `json:"is_ended"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CircleWithHost is a circle joined with its host's username for listings.
type CircleWithHost struct {
	Circle
	HostUsername string `json:"host_username"`
}

// FlaggedCircle is a moderation queue entry: a circle with its flag count.
type FlaggedCircle struct {
	Circle
	HostUsername string `json:"host_username"`
	FlagCount    int    `json:"flag_count"`
}
