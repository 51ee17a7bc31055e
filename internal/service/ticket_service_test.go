package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/repository"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

type fakeTicketRepo struct {
	tickets map[string]domain.Ticket
	nextNum int64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.nextNum++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextNum)
	ticket.Number = r.nextNum
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssignedToOrUnassigned != nil {
			if ticket.AssigneeID != nil && *ticket.AssigneeID != *filter.AssignedToOrUnassigned {
				continue
			}
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Stats(ctx context.Context, creatorID *string, now time.Time) (*domain.TicketStats, error) {
	return &domain.TicketStats{}, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(r.comments)+1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if !includeInternal && comment.IsInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type fakeTxManager struct {
	set repository.RepoSet
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(repository.RepoSet) error) error {
	return fn(m.set)
}

type ticketFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
	now      time.Time
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		tickets:  newFakeTicketRepo(),
		comments: &fakeCommentRepo{},
		now:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:  f.tickets,
		CommentRepo: f.comments,
		Tx:          &fakeTxManager{set: repository.RepoSet{Tickets: f.tickets, Comments: f.comments}},
		Clock:       func() time.Time { return f.now },
	})
	return f
}

func (f *ticketFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

var (
	customer      = &domain.User{ID: "user-1", Role: domain.RoleCustomer}
	otherCustomer = &domain.User{ID: "user-2", Role: domain.RoleCustomer}
	agent         = &domain.User{ID: "agent-1", Role: domain.RoleAgent}
)

func TestCreateFixesDeadlineFromPriority(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject:     "Checkout broken",
		Description: "500 on payment page",
		Priority:    domain.TicketPriorityCritical,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.SLADeadline)
	assert.Equal(t, f.now.Add(1*time.Hour), *ticket.SLADeadline)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, int64(1), ticket.Number)
}

func TestCreateDefaultsToMediumPriority(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject:     "Question about invoices",
		Description: "Where can I download them?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.NotNil(t, ticket.SLADeadline)
	assert.Equal(t, f.now.Add(8*time.Hour), *ticket.SLADeadline)
}

func TestCreateRequiresSubjectAndDescription(t *testing.T) {
	f := newTicketFixture()

	_, err := f.svc.Create(context.Background(), customer, TicketCreateInput{Subject: "   "})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestCustomerMayOnlyCloseOwnTicket(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Slow dashboard", Description: "Takes 20s to load",
	})
	require.NoError(t, err)

	inProgress := domain.TicketStatusInProgress
	_, err = f.svc.Update(context.Background(), customer, ticket.ID, TicketUpdateInput{Status: &inProgress})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	closed := domain.TicketStatusClosed
	_, err = f.svc.Update(context.Background(), otherCustomer, ticket.ID, TicketUpdateInput{Status: &closed})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	updated, err := f.svc.Update(context.Background(), customer, ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, f.now, *updated.ResolvedAt)
}

func TestCustomerCannotChangePriorityOrAssignee(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Bug report", Description: "Button misaligned",
	})
	require.NoError(t, err)

	high := domain.TicketPriorityHigh
	_, err = f.svc.Update(context.Background(), customer, ticket.ID, TicketUpdateInput{Priority: &high})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	agentID := agent.ID
	_, err = f.svc.Update(context.Background(), customer, ticket.ID, TicketUpdateInput{AssigneeID: &agentID, AssigneeSet: true})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestResolvedAtOverwrittenOnEachFinish(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Login loop", Description: "Redirects forever",
	})
	require.NoError(t, err)

	resolved := domain.TicketStatusResolved
	updated, err := f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	firstResolve := *updated.ResolvedAt

	f.advance(2 * time.Hour)
	closed := domain.TicketStatusClosed
	updated, err = f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.ResolvedAt.After(firstResolve))

	// Reopening never clears the resolution timestamp.
	lastResolve := *updated.ResolvedAt
	open := domain.TicketStatusOpen
	updated, err = f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{Status: &open})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, lastResolve, *updated.ResolvedAt)
}

func TestPriorityEditKeepsOriginalDeadline(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Minor typo", Description: "On the pricing page",
		Priority: domain.TicketPriorityLow,
	})
	require.NoError(t, err)
	originalDeadline := *ticket.SLADeadline

	critical := domain.TicketPriorityCritical
	updated, err := f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{Priority: &critical})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
	require.NotNil(t, updated.SLADeadline)
	assert.Equal(t, originalDeadline, *updated.SLADeadline)
}

func TestAssigneePatchCanClear(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Export fails", Description: "CSV export times out",
	})
	require.NoError(t, err)

	agentID := agent.ID
	updated, err := f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{AssigneeID: &agentID, AssigneeSet: true})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, agent.ID, *updated.AssigneeID)

	updated, err = f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{AssigneeID: nil, AssigneeSet: true})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
}

func TestStaffCommentLatchesFirstResponseOnce(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Password reset", Description: "Email never arrives",
	})
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	_, snapshot, err := f.svc.RecordComment(context.Background(), agent, ticket.ID, "Looking into it", false)
	require.NoError(t, err)
	require.NotNil(t, snapshot.FirstResponseAt)
	firstResponse := *snapshot.FirstResponseAt
	assert.Equal(t, f.now, firstResponse)
	assert.Equal(t, domain.TicketStatusInProgress, snapshot.Status)

	f.advance(1 * time.Hour)
	_, snapshot, err = f.svc.RecordComment(context.Background(), agent, ticket.ID, "Found the cause", false)
	require.NoError(t, err)
	require.NotNil(t, snapshot.FirstResponseAt)
	assert.Equal(t, firstResponse, *snapshot.FirstResponseAt)
}

func TestCustomerCommentHasNoLifecycleSideEffects(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Billing question", Description: "Charged twice",
	})
	require.NoError(t, err)

	_, snapshot, err := f.svc.RecordComment(context.Background(), customer, ticket.ID, "Any update?", false)
	require.NoError(t, err)
	assert.Nil(t, snapshot.FirstResponseAt)
	assert.Equal(t, domain.TicketStatusOpen, snapshot.Status)
}

func TestInternalFlagCoercedForCustomers(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Feature request", Description: "Dark mode please",
	})
	require.NoError(t, err)

	comment, _, err := f.svc.RecordComment(context.Background(), customer, ticket.ID, "Bumping this", true)
	require.NoError(t, err)
	assert.False(t, comment.IsInternal)

	comment, _, err = f.svc.RecordComment(context.Background(), agent, ticket.ID, "Customer is on the free plan", true)
	require.NoError(t, err)
	assert.True(t, comment.IsInternal)
}

func TestCommentOnForeignTicketForbidden(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Account locked", Description: "Too many attempts",
	})
	require.NoError(t, err)

	_, _, err = f.svc.RecordComment(context.Background(), otherCustomer, ticket.ID, "Me too", false)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestGetStripsInternalCommentsForCustomers(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Sync issue", Description: "Data out of date",
	})
	require.NoError(t, err)

	_, _, err = f.svc.RecordComment(context.Background(), agent, ticket.ID, "Escalating internally", true)
	require.NoError(t, err)
	_, _, err = f.svc.RecordComment(context.Background(), agent, ticket.ID, "We are on it", false)
	require.NoError(t, err)

	_, comments, err := f.svc.Get(context.Background(), customer, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "We are on it", comments[0].Content)

	_, comments, err = f.svc.Get(context.Background(), agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestListScopesByRole(t *testing.T) {
	f := newTicketFixture()
	mine, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Mine", Description: "Created by user-1",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), otherCustomer, TicketCreateInput{
		Subject: "Theirs", Description: "Created by user-2",
	})
	require.NoError(t, err)

	tickets, err := f.svc.List(context.Background(), customer, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, mine.ID, tickets[0].ID)

	tickets, err = f.svc.List(context.Background(), agent, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestAgentListExcludesTicketsAssignedToOthers(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.Create(context.Background(), customer, TicketCreateInput{
		Subject: "Routing", Description: "Wrong region",
	})
	require.NoError(t, err)

	otherAgentID := "agent-2"
	_, err = f.svc.Update(context.Background(), agent, ticket.ID, TicketUpdateInput{AssigneeID: &otherAgentID, AssigneeSet: true})
	require.NoError(t, err)

	tickets, err := f.svc.List(context.Background(), agent, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestUpdateUnknownTicketIsNotFound(t *testing.T) {
	f := newTicketFixture()
	closed := domain.TicketStatusClosed
	_, err := f.svc.Update(context.Background(), agent, "missing", TicketUpdateInput{Status: &closed})
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
