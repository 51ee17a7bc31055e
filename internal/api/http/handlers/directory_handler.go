package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vibetickets/helpdesk/internal/api/dto"
	"github.com/vibetickets/helpdesk/internal/auth"
	"github.com/vibetickets/helpdesk/internal/service"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// DirectoryHandler serves the agent roster.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directoryService}
}

// ListAgents GET /users/agents.
func (h *DirectoryHandler) ListAgents(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	agents, err := h.directory.ListAgents(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		items = append(items, dto.AgentResponse{
			ID:              agent.ID,
			Name:            agent.Name,
			Email:           agent.Email,
			Role:            agent.Role,
			AssignedTickets: agent.AssignedTickets,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
