package service

import (
	"context"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/policy"
	"github.com/vibetickets/helpdesk/internal/repository"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// DirectoryService exposes the agent roster to staff.
type DirectoryService struct {
	users repository.UserRepository
}

// NewDirectoryService builds the service.
func NewDirectoryService(users repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// ListAgents returns all agents and admins with their assigned-ticket
// counts.
func (s *DirectoryService) ListAgents(ctx context.Context, user *domain.User) ([]repository.AgentSummary, error) {
	if err := policy.CanViewAgents(user); err != nil {
		return nil, err
	}
	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}
