package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vibetickets/helpdesk/internal/api/dto"
	"github.com/vibetickets/helpdesk/internal/auth"
	"github.com/vibetickets/helpdesk/internal/service"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// CannedResponsesHandler manages the staff template library.
type CannedResponsesHandler struct {
	canned *service.CannedResponseService
}

// NewCannedResponsesHandler constructs handler.
func NewCannedResponsesHandler(cannedService *service.CannedResponseService) *CannedResponsesHandler {
	return &CannedResponsesHandler{canned: cannedService}
}

// List GET /canned-responses.
func (h *CannedResponsesHandler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	responses, err := h.canned.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.CannedResponseView, 0, len(responses))
	for i := range responses {
		items = append(items, dto.CannedResponseViewFrom(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /canned-responses.
func (h *CannedResponsesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateCannedResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	response, err := h.canned.Create(c.UserContext(), user, service.CannedResponseInput{
		Title:    req.Title,
		Content:  req.Content,
		Shortcut: req.Shortcut,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CannedResponseViewFrom(response)})
}
