package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/persistence"
	"github.com/vibetickets/helpdesk/internal/repository"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// StatsService computes dashboard counters. Customers see counts over
// their own tickets, staff over all tickets. Snapshots are cached in
// Redis for a short TTL since the counters tolerate slight staleness.
type StatsService struct {
	tickets repository.TicketRepository
	cache   *persistence.Redis
	ttl     time.Duration
	logger  *zap.Logger
	clock   func() time.Time
}

// NewStatsService builds the service. A nil cache disables caching.
func NewStatsService(tickets repository.TicketRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{
		tickets: tickets,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		clock:   time.Now,
	}
}

// Snapshot returns the counters for the caller's scope.
func (s *StatsService) Snapshot(ctx context.Context, user *domain.User) (*domain.TicketStats, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}

	var creatorID *string
	cacheKey := "stats:staff"
	if user.Role == domain.RoleCustomer {
		creatorID = &user.ID
		cacheKey = "stats:user:" + user.ID
	}

	if cached := s.readCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	stats, err := s.tickets.Stats(ctx, creatorID, s.clock())
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.writeCache(ctx, cacheKey, stats)
	return stats, nil
}

// Cache failures only cost freshness, so they are logged and ignored.
func (s *StatsService) readCache(ctx context.Context, key string) *domain.TicketStats {
	if s.cache == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.cache.GetCached(ctx, key)
	if err != nil {
		s.logger.Debug("stats cache read failed", zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}
	var stats domain.TicketStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.logger.Debug("stats cache decode failed", zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatsService) writeCache(ctx context.Context, key string, stats *domain.TicketStats) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.SetCached(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}
