package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/fixit/internal/api/dto"
	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/service"
	"github.com/campus-fixit/fixit/internal/tracker"
	apperrors "github.com/campus-fixit/fixit/pkg/util/errorutil"
)

// WidgetsHandler exposes the complaint widget endpoints.
type WidgetsHandler struct {
	service *service.WidgetService
}

// NewWidgetsHandler constructs handler.
func NewWidgetsHandler(widgetService *service.WidgetService) *WidgetsHandler {
	return &WidgetsHandler{service: widgetService}
}

// Create POST /api/widgets.
func (h *WidgetsHandler) Create(c *fiber.Ctx) error {
	view, err := h.service.CreateWidget(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": widgetResponse(view)})
}

// Get GET /api/widgets/:id.
func (h *WidgetsHandler) Get(c *fiber.Ctx) error {
	view, err := h.service.GetWidget(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": widgetResponse(view)})
}

// UpdateComplaint PUT /api/widgets/:id/complaint.
func (h *WidgetsHandler) UpdateComplaint(c *fiber.Ctx) error {
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.UpdateComplaint(c.UserContext(), c.Params("id"), req.Complaint, req.Seq)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": widgetResponse(view)})
}

// Submit POST /api/widgets/:id/submit.
func (h *WidgetsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.Submit(c.UserContext(), c.Params("id"), service.SubmitInput{
		StudentID: req.StudentID,
		Complaint: req.Complaint,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": widgetResponse(view)})
}

// Reset POST /api/widgets/:id/reset.
func (h *WidgetsHandler) Reset(c *fiber.Ctx) error {
	view, err := h.service.Reset(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": widgetResponse(view)})
}

// Delete DELETE /api/widgets/:id.
func (h *WidgetsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteWidget(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Classify POST /api/classify.
func (h *WidgetsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return c.JSON(fiber.Map{"data": classificationResponse(h.service.Classify(req.Text))})
}

func classificationResponse(res classifier.Result) dto.ClassificationResponse {
	return dto.ClassificationResponse{
		Category:   res.Category,
		AssignedTo: res.AssignedTo,
		BadgeClass: classifier.BadgeClass(res.Category),
		Source:     string(res.Source),
		Matched:    res.Matched,
	}
}

func widgetResponse(view tracker.View) dto.WidgetResponse {
	resp := dto.WidgetResponse{
		ID:         view.WidgetID,
		Complaint:  view.Complaint,
		Category:   view.Category,
		AssignedTo: view.AssignedTo,
		BadgeClass: view.BadgeClass,
		Submitted:  view.Submitted,
		Tracker: dto.TrackerResponse{
			Status:       view.Status,
			Dots:         view.Dots,
			Heading:      view.Heading,
			Pulse:        view.Pulse,
			DismissLabel: view.DismissLabel,
		},
	}
	if t := view.Ticket; t != nil {
		resp.Ticket = &dto.TicketResponse{
			ID:          t.ID,
			ExternalKey: t.ExternalKey,
			Status:      t.Status,
			Category:    t.Assignment.Category,
			AssignedTo:  t.Assignment.AssignedTo,
			SubmittedAt: t.SubmittedAt,
			UpdatedAt:   t.UpdatedAt,
		}
	}
	return resp
}
