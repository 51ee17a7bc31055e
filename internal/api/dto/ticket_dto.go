package dto

import (
	"encoding/json"
	"time"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/sla"
)

// NullableString distinguishes an absent JSON field from an explicit
// null. An explicit null clears the target field.
type NullableString struct {
	Value *string
	Set   bool
}

// UnmarshalJSON records presence before decoding the value.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload. All fields are optional patches.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus   `json:"status"`
	Priority   *domain.TicketPriority `json:"priority"`
	AssigneeID NullableString         `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// SLAStatusResponse conveys the evaluated deadline band.
type SLAStatusResponse struct {
	Label    string     `json:"label"`
	Urgency  string     `json:"urgency"`
	Deadline *time.Time `json:"deadline"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	Number          int64                 `json:"number"`
	Subject         string                `json:"subject"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatorID       string                `json:"creator_id"`
	AssigneeID      *string               `json:"assignee_id"`
	SLA             SLAStatusResponse     `json:"sla"`
	FirstResponseAt *time.Time            `json:"first_response_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketSummaryFrom maps a domain ticket, evaluating its SLA band at
// the given instant.
func TicketSummaryFrom(ticket *domain.Ticket, now time.Time) TicketSummary {
	status := sla.Evaluate(ticket.SLADeadline, now)
	return TicketSummary{
		ID:              ticket.ID,
		Number:          ticket.Number,
		Subject:         ticket.Subject,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		CreatorID:       ticket.CreatorID,
		AssigneeID:      ticket.AssigneeID,
		SLA:             SLAStatusResponse{Label: status.Label, Urgency: string(status.Urgency), Deadline: ticket.SLADeadline},
		FirstResponseAt: ticket.FirstResponseAt,
		ResolvedAt:      ticket.ResolvedAt,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// TicketDetailFrom maps a ticket with its comment thread.
func TicketDetailFrom(ticket *domain.Ticket, comments []domain.Comment, now time.Time) TicketDetailResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, CommentResponseFrom(&comments[i]))
	}
	return TicketDetailResponse{
		TicketSummary: TicketSummaryFrom(ticket, now),
		Description:   ticket.Description,
		Comments:      items,
	}
}

// CommentResponseFrom maps a domain comment.
func CommentResponseFrom(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
