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

type VideoHandler struct {
	generations *service.GenerationService
	iterations  *service.IterationService
	validator   *validator.Validate
}

func NewVideoHandler(generations *service.GenerationService, iterations *service.IterationService, v *validator.Validate) *VideoHandler {
	return &VideoHandler{
		generations: generations,
		iterations:  iterations,
		validator:   v,
	}
}

// Get handles GET /api/videos/:videoId
// @Summary      Get a video
// @Tags         Videos
// @Produce      json
// @Param        videoId path string true "Video ID"
// @Success      200 {object} model.Video
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/videos/{videoId} [get]
func (h *VideoHandler) Get(c *fiber.Ctx) error {
	videoID := c.Params("videoId")
	if videoID == "" {
		return response.ValidationError(c, "Video ID is required", nil)
	}

	video, err := h.generations.GetVideo(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Video not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, video)
}

// Iterate handles POST /api/videos/:videoId/iterate
// @Summary      Iterate from an approved video
// @Description  Spawn a child generation from a quality-passed video, preserving lineage
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        videoId path string true "Source video ID"
// @Param        request body model.IterateRequest true "Iterate request"
// @Success      202 {object} model.IterateResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/videos/{videoId}/iterate [post]
func (h *VideoHandler) Iterate(c *fiber.Ctx) error {
	videoID := c.Params("videoId")
	if videoID == "" {
		return response.ValidationError(c, "Video ID is required", nil)
	}

	var req model.IterateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	gen, err := h.iterations.Iterate(c.Context(), videoID, req.TargetCount, req.VariationParams)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return response.NotFound(c, "Video not found")
		case errors.Is(err, service.ErrInvalidTargetCount):
			return response.ValidationError(c, err.Error(), map[string]string{"targetCount": "out_of_range"})
		case errors.Is(err, service.ErrVideoNotApproved):
			return response.ValidationError(c, err.Error(), map[string]string{"qualityStatus": "not_passed"})
		case errors.Is(err, service.ErrBriefNotParsed):
			return response.ValidationError(c, "Source brief has not been parsed", map[string]string{"briefId": "not_parsed"})
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.Accepted(c, &model.IterateResponse{
		ID:                 gen.ID,
		BriefID:            gen.BriefID,
		ParentGenerationID: *gen.ParentGenerationID,
		TargetCount:        gen.TargetCount,
		Status:             gen.Status,
		CreatedAt:          gen.CreatedAt,
	})
}

// Quality handles POST /api/videos/:videoId/quality
// @Summary      Record a quality review verdict
// @Description  Write path for the external review process; the pipeline never sets qualityStatus
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        videoId path string true "Video ID"
// @Param        request body model.QualityReviewRequest true "Quality review request"
// @Success      200 {object} model.Video
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/videos/{videoId}/quality [post]
func (h *VideoHandler) Quality(c *fiber.Ctx) error {
	videoID := c.Params("videoId")
	if videoID == "" {
		return response.ValidationError(c, "Video ID is required", nil)
	}

	var req model.QualityReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	video, err := h.generations.SetQualityStatus(c.Context(), videoID, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Video not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, video)
}
