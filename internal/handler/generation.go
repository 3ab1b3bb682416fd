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

type GenerationHandler struct {
	service   *service.GenerationService
	validator *validator.Validate
}

func NewGenerationHandler(svc *service.GenerationService, v *validator.Validate) *GenerationHandler {
	return &GenerationHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/generations
// @Summary      Start a generation batch
// @Description  Create a generation for a parsed brief and detach its pipeline
// @Tags         Generations
// @Accept       json
// @Produce      json
// @Param        request body model.GenerationStartRequest true "Generation start request"
// @Success      202 {object} model.GenerationStartResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generations [post]
func (h *GenerationHandler) Start(c *fiber.Ctx) error {
	var req model.GenerationStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	gen, err := h.service.Start(c.Context(), req.BriefID, req.TargetCount)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Brief not found")
		}
		if errors.Is(err, service.ErrBriefNotParsed) {
			return response.ValidationError(c, "Brief has not been parsed", map[string]string{"briefId": "not_parsed"})
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, &model.GenerationStartResponse{
		ID:          gen.ID,
		BriefID:     gen.BriefID,
		TargetCount: gen.TargetCount,
		Status:      gen.Status,
		CreatedAt:   gen.CreatedAt,
	})
}

// Status handles GET /api/generations/:generationId
// @Summary      Get generation status
// @Description  Poll a generation's batch-progress label, total cost and video ids
// @Tags         Generations
// @Produce      json
// @Param        generationId path string true "Generation ID"
// @Success      200 {object} model.GenerationStatusResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generations/{generationId} [get]
func (h *GenerationHandler) Status(c *fiber.Ctx) error {
	generationID := c.Params("generationId")
	if generationID == "" {
		return response.ValidationError(c, "Generation ID is required", nil)
	}

	gen, err := h.service.Get(c.Context(), generationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Generation not found")
		}
		return response.ServiceError(c, err.Error())
	}

	videoIDs, err := h.service.VideoIDs(c.Context(), generationID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, &model.GenerationStatusResponse{
		ID:                 gen.ID,
		BriefID:            gen.BriefID,
		ParentGenerationID: gen.ParentGenerationID,
		TargetCount:        gen.TargetCount,
		Status:             gen.Status,
		TotalCost:          gen.TotalCost,
		VideoIDs:           videoIDs,
		CreatedAt:          gen.CreatedAt,
		UpdatedAt:          gen.UpdatedAt,
	})
}

// Videos handles GET /api/generations/:generationId/videos
// @Summary      List generation videos
// @Tags         Generations
// @Produce      json
// @Param        generationId path string true "Generation ID"
// @Success      200 {array} model.Video
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generations/{generationId}/videos [get]
func (h *GenerationHandler) Videos(c *fiber.Ctx) error {
	generationID := c.Params("generationId")
	if generationID == "" {
		return response.ValidationError(c, "Generation ID is required", nil)
	}

	videos, err := h.service.Videos(c.Context(), generationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Generation not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, videos)
}

// Costs handles GET /api/generations/:generationId/costs
// @Summary      List generation cost ledger rows
// @Description  Audit view: generation-scoped entries plus every video's entries
// @Tags         Generations
// @Produce      json
// @Param        generationId path string true "Generation ID"
// @Success      200 {object} model.GenerationCostsResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generations/{generationId}/costs [get]
func (h *GenerationHandler) Costs(c *fiber.Ctx) error {
	generationID := c.Params("generationId")
	if generationID == "" {
		return response.ValidationError(c, "Generation ID is required", nil)
	}

	costs, err := h.service.Costs(c.Context(), generationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Generation not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, costs)
}
