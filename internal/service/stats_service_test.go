package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vibetickets/helpdesk/internal/domain"
)

type statsCaptureRepo struct {
	*fakeTicketRepo
	lastCreatorID *string
}

func (r *statsCaptureRepo) Stats(ctx context.Context, creatorID *string, now time.Time) (*domain.TicketStats, error) {
	r.lastCreatorID = creatorID
	return &domain.TicketStats{Total: 5, Open: 2}, nil
}

func TestStatsScopedToCustomer(t *testing.T) {
	repo := &statsCaptureRepo{fakeTicketRepo: newFakeTicketRepo()}
	svc := NewStatsService(repo, nil, 0, zap.NewNop())

	stats, err := svc.Snapshot(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	require.NotNil(t, repo.lastCreatorID)
	assert.Equal(t, customer.ID, *repo.lastCreatorID)
}

func TestStatsUnscopedForStaff(t *testing.T) {
	repo := &statsCaptureRepo{fakeTicketRepo: newFakeTicketRepo()}
	svc := NewStatsService(repo, nil, 0, zap.NewNop())

	_, err := svc.Snapshot(context.Background(), agent)
	require.NoError(t, err)
	assert.Nil(t, repo.lastCreatorID)
}

func TestStatsRequiresAuthentication(t *testing.T) {
	repo := &statsCaptureRepo{fakeTicketRepo: newFakeTicketRepo()}
	svc := NewStatsService(repo, nil, 0, zap.NewNop())

	_, err := svc.Snapshot(context.Background(), nil)
	assert.Equal(t, "UNAUTHENTICATED", errCode(t, err))
}
