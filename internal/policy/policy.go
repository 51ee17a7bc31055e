// Package policy is the single authorization table for the helpdesk.
// Every rule is a pure function over the caller identity and, where
// relevant, the ticket being acted on. Identity is always passed in
// explicitly; nothing here reads ambient request state.
package policy

import (
	"github.com/vibetickets/helpdesk/internal/domain"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// TicketScope narrows a ticket listing to what the caller may see.
// At most one field is set; an empty scope means unrestricted.
type TicketScope struct {
	// CreatorID restricts to tickets created by this user (customers).
	CreatorID *string
	// AssignedToOrUnassigned restricts to tickets assigned to this
	// user or to nobody (agents).
	AssignedToOrUnassigned *string
}

// TicketPatch is the set of fields an update request wants to change.
// AssigneeSet distinguishes "clear the assignee" from "leave it alone".
type TicketPatch struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeID  *string
	AssigneeSet bool
}

// ScopeTickets returns the listing restriction for the caller.
func ScopeTickets(user *domain.User) (TicketScope, error) {
	if user == nil {
		return TicketScope{}, apperrors.NewUnauthenticated("authentication required")
	}
	switch user.Role {
	case domain.RoleCustomer:
		return TicketScope{CreatorID: &user.ID}, nil
	case domain.RoleAgent:
		return TicketScope{AssignedToOrUnassigned: &user.ID}, nil
	default:
		return TicketScope{}, nil
	}
}

// CanReadTicket gates reading a single ticket.
func CanReadTicket(user *domain.User, ticket *domain.Ticket) error {
	if user == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if user.Role == domain.RoleCustomer && ticket.CreatorID != user.ID {
		return apperrors.NewForbidden("you do not have access to this ticket")
	}
	return nil
}

// CanUpdateTicket gates mutating ticket fields. Customers may only
// close their own tickets; staff may change status, priority and
// assignee on any ticket.
func CanUpdateTicket(user *domain.User, ticket *domain.Ticket, patch TicketPatch) error {
	if user == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if user.Role.IsStaff() {
		return nil
	}
	if ticket.CreatorID != user.ID {
		return apperrors.NewForbidden("you do not have access to this ticket")
	}
	if patch.Priority != nil || patch.AssigneeSet {
		return apperrors.NewForbidden("customers may only close their tickets")
	}
	if patch.Status != nil && *patch.Status != domain.TicketStatusClosed {
		return apperrors.NewForbidden("customers may only close their tickets")
	}
	return nil
}

// CanComment gates adding a comment: anyone who can read the ticket
// may comment on it. Closed tickets are not blocked here; the API
// stays permissive.
func CanComment(user *domain.User, ticket *domain.Ticket) error {
	return CanReadTicket(user, ticket)
}

// CoerceInternal applies the internal-note rule: only staff may mark
// a comment internal, and a customer's request to do so is silently
// downgraded rather than rejected.
func CoerceInternal(user *domain.User, requested bool) bool {
	if user == nil || !user.Role.IsStaff() {
		return false
	}
	return requested
}

// CanSeeInternalComments reports whether internal notes are visible
// to the caller.
func CanSeeInternalComments(user *domain.User) bool {
	return user != nil && user.Role.IsStaff()
}

// CanManageCannedResponses gates both reading and writing the
// template library.
func CanManageCannedResponses(user *domain.User) error {
	return requireStaff(user)
}

// CanViewAgents gates the team roster.
func CanViewAgents(user *domain.User) error {
	return requireStaff(user)
}

func requireStaff(user *domain.User) error {
	if user == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if !user.Role.IsStaff() {
		return apperrors.NewForbidden("staff role required")
	}
	return nil
}
