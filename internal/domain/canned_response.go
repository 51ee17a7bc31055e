package domain

import "time"

// CannedResponse is a reusable reply template for staff. It has no
// lifecycle coupling to tickets.
type CannedResponse struct {
	ID          string
	Title       string
	Content     string
	Shortcut    *string
	Category    *string
	CreatedByID string
	CreatedAt   time.Time
}
