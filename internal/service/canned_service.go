package service

import (
	"context"
	"strings"

	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/policy"
	"github.com/vibetickets/helpdesk/internal/repository"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// CannedResponseService manages the staff reply template library.
type CannedResponseService struct {
	responses repository.CannedResponseRepository
}

// NewCannedResponseService builds the service.
func NewCannedResponseService(responses repository.CannedResponseRepository) *CannedResponseService {
	return &CannedResponseService{responses: responses}
}

// CannedResponseInput describes a new template.
type CannedResponseInput struct {
	Title    string
	Content  string
	Shortcut *string
	Category *string
}

// List returns all templates, alphabetical by title.
func (s *CannedResponseService) List(ctx context.Context, user *domain.User) ([]domain.CannedResponse, error) {
	if err := policy.CanManageCannedResponses(user); err != nil {
		return nil, err
	}
	responses, err := s.responses.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return responses, nil
}

// Create stores a new template owned by the caller.
func (s *CannedResponseService) Create(ctx context.Context, user *domain.User, input CannedResponseInput) (*domain.CannedResponse, error) {
	if err := policy.CanManageCannedResponses(user); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationError("title and content are required", nil)
	}

	response := &domain.CannedResponse{
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		Shortcut:    input.Shortcut,
		Category:    input.Category,
		CreatedByID: user.ID,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}
	return response, nil
}
