package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/events"
	"github.com/vibetickets/helpdesk/internal/policy"
	"github.com/vibetickets/helpdesk/internal/repository"
	"github.com/vibetickets/helpdesk/internal/sla"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle: creation, listing,
// field updates and comment recording with its side effects.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	clock      func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Tx          repository.TxManager
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes caller-supplied listing filters; scoping
// by role happens in the policy, not here.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
}

// TicketUpdateInput carries the fields an update wants to change.
// AssigneeSet distinguishes clearing the assignee from not touching it.
type TicketUpdateInput struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeID  *string
	AssigneeSet bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		clock:      clock,
	}
}

// Create opens a new ticket for the caller. The SLA deadline is fixed
// here from the priority and never recomputed, even if the priority is
// edited later.
func (s *TicketService) Create(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	now := s.clock()
	deadline := sla.ComputeDeadline(priority, now)
	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatorID:   user.ID,
		SLADeadline: &deadline,
		CreatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(user),
		Payload: events.TicketCreatedPayload{
			Number:      ticket.Number,
			Subject:     ticket.Subject,
			Priority:    ticket.Priority,
			SLADeadline: ticket.SLADeadline,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the caller, most urgent first.
func (s *TicketService) List(ctx context.Context, user *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	scope, err := policy.ScopeTickets(user)
	if err != nil {
		return nil, err
	}
	repoFilter := repository.TicketFilter{
		CreatorID:              scope.CreatorID,
		AssignedToOrUnassigned: scope.AssignedToOrUnassigned,
		Statuses:               filter.Statuses,
		Priorities:             filter.Priorities,
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a single ticket and its comment thread. Internal notes
// are stripped for customers.
func (s *TicketService) Get(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanReadTicket(user, ticket); err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, policy.CanSeeInternalComments(user))
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// Update applies a field patch to a ticket. Transitions into RESOLVED
// or CLOSED stamp resolvedAt; any other status leaves timestamps
// untouched. Assignment is a free-standing patch with no state-machine
// coupling.
func (s *TicketService) Update(ctx context.Context, user *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	patch := policy.TicketPatch{
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		AssigneeSet: input.AssigneeSet,
	}
	if err := policy.CanUpdateTicket(user, ticket, patch); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldPriority := ticket.Priority

	if input.Status != nil {
		ticket.Status = *input.Status
		if ticket.Status.IsFinished() {
			now := s.clock()
			ticket.ResolvedAt = &now
		}
	}
	if input.Priority != nil {
		// The SLA deadline deliberately keeps its creation-time value.
		ticket.Priority = *input.Priority
	}
	if input.AssigneeSet {
		ticket.AssigneeID = input.AssigneeID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Status != nil && oldStatus != ticket.Status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actorFor(user),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if input.Priority != nil && oldPriority != ticket.Priority {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			Actor:    actorFor(user),
			Payload: events.TicketPriorityChangedPayload{
				OldPriority: oldPriority,
				NewPriority: ticket.Priority,
			},
		})
	}
	if input.AssigneeSet {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    actorFor(user),
			Payload: events.TicketAssignedPayload{
				AssigneeID: ticket.AssigneeID,
			},
		})
	}
	return ticket, nil
}

// RecordComment appends a comment and applies the lifecycle side
// effects in one transaction: the first staff comment latches
// firstResponseAt, and a staff comment on an OPEN ticket moves it to
// IN_PROGRESS. It returns both the comment and the updated ticket
// snapshot so callers observe the side effects.
func (s *TicketService) RecordComment(ctx context.Context, user *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, *domain.Ticket, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, apperrors.NewValidationError("content is required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanComment(user, ticket); err != nil {
		return nil, nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   user.ID,
		Content:    content,
		IsInternal: policy.CoerceInternal(user, isInternal),
	}

	now := s.clock()
	firstResponse := false
	statusChanged := false
	oldStatus := ticket.Status

	err = s.tx.WithinTx(ctx, func(set repository.RepoSet) error {
		if err := set.Comments.Create(ctx, comment); err != nil {
			return err
		}
		if user.Role.IsStaff() {
			if ticket.FirstResponseAt == nil {
				ticket.FirstResponseAt = &now
				firstResponse = true
			}
			if ticket.Status == domain.TicketStatusOpen {
				ticket.Status = domain.TicketStatusInProgress
				statusChanged = true
			}
		}
		if firstResponse || statusChanged {
			return set.Tickets.Update(ctx, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFor(user),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorRole:  user.Role,
			IsInternal:  comment.IsInternal,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})
	if firstResponse {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketFirstResponse,
			TicketID: ticket.ID,
			Actor:    actorFor(user),
			Payload:  events.TicketFirstResponsePayload{RespondedAt: now},
		})
	}
	if statusChanged {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actorFor(user),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return comment, ticket, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
