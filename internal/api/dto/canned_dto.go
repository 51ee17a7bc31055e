package dto

import (
	"time"

	"github.com/vibetickets/helpdesk/internal/domain"
)

// CreateCannedResponseRequest payload.
type CreateCannedResponseRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Shortcut *string `json:"shortcut"`
	Category *string `json:"category"`
}

// CannedResponseView response.
type CannedResponseView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Shortcut    *string   `json:"shortcut"`
	Category    *string   `json:"category"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CannedResponseViewFrom maps a domain template.
func CannedResponseViewFrom(response *domain.CannedResponse) CannedResponseView {
	return CannedResponseView{
		ID:          response.ID,
		Title:       response.Title,
		Content:     response.Content,
		Shortcut:    response.Shortcut,
		Category:    response.Category,
		CreatedByID: response.CreatedByID,
		CreatedAt:   response.CreatedAt,
	}
}
