package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/service"
	"github.com/reelbrief/api/internal/store"
	"github.com/reelbrief/api/pkg/response"
)

type BriefHandler struct {
	service   *service.BriefService
	validator *validator.Validate
}

func NewBriefHandler(svc *service.BriefService, v *validator.Validate) *BriefHandler {
	return &BriefHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/briefs
// @Summary      Create and parse a brief
// @Description  Store raw marketing input and run the brief parser over it
// @Tags         Briefs
// @Accept       json
// @Produce      json
// @Param        request body model.BriefCreateRequest true "Brief create request"
// @Success      201 {object} model.Brief
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/briefs [post]
func (h *BriefHandler) Create(c *fiber.Ctx) error {
	var req model.BriefCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	brief, err := h.service.Create(c.Context(), req.RawInput)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, brief)
}

// Get handles GET /api/briefs/:briefId
// @Summary      Get a brief
// @Tags         Briefs
// @Produce      json
// @Param        briefId path string true "Brief ID"
// @Success      200 {object} model.Brief
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/briefs/{briefId} [get]
func (h *BriefHandler) Get(c *fiber.Ctx) error {
	briefID := c.Params("briefId")
	if briefID == "" {
		return response.ValidationError(c, "Brief ID is required", nil)
	}

	brief, err := h.service.Get(c.Context(), briefID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Brief not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, brief)
}
