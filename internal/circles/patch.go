package circles

import (
	"time"

	"github.com/circlehub/backend/internal/models"
)

// Patch holds the updatable circle fields. Fields are value types on purpose:
// a zero value (empty string, 0, false, zero time) leaves the stored field
// untouched, so update can only overwrite with another truthy value, never
// clear a field. This mirrors the platform's long-standing merge behavior;
// callers cannot flip is_live or is_ended back to false through this path.
type Patch struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ParticipantsLimit int       `json:"participants_limit"`
	StartDate         time.Time `json:"start_date"`
	IsLive            bool      `json:"is_live"`
	IsEnded           bool      `json:"is_ended"`
}

// Apply merges the patch into the circle. HostID is never touched.
func (p Patch) Apply(c *models.Circle) {
	if p.Title != "" {
		c.Title = p.Title
	}
	if p.Description != "" {
		c.Description = p.Description
	}
	if p.ParticipantsLimit > 0 {
		c.ParticipantsLimit = p.ParticipantsLimit
	}
	if !p.StartDate.IsZero() {
		c.StartDate = p.StartDate
	}
	if p.IsLive {
		c.IsLive = true
	}
	if p.IsEnded {
		c.IsEnded = true
	}
}
