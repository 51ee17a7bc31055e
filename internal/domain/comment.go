package domain

import "time"

// Comment is a message on a ticket thread. Internal comments are
// visible to staff only and can never be authored by customers.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
