package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/service"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type studyPlanService interface {
	Generate(ctx context.Context, req dto.StudyPlanRequest) (*dto.StudyPlanResponse, bool, error)
	GenerateBatch(ctx context.Context, req dto.BatchStudyPlanRequest) (*dto.BatchStudyPlanResponse, error)
	Export(ctx context.Context, req dto.StudyPlanRequest, format string) (*service.ExportFile, error)
	FlushCache(ctx context.Context) (bool, error)
}

// StudyPlanHandler exposes plan generation over HTTP.
type StudyPlanHandler struct {
	service studyPlanService
}

// NewStudyPlanHandler constructs the handler.
func NewStudyPlanHandler(service studyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{service: service}
}

// Generate godoc
// @Summary Generate a study plan
// @Description Allocates topic hours across the date range. The body is the bare plan.
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body dto.StudyPlanRequest true "Plan request"
// @Success 200 {object} dto.StudyPlanResponse
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /study-plan [post]
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	var req dto.StudyPlanRequest
	if !bindPlanRequest(c, &req) {
		return
	}
	plan, cacheHit, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.Raw(c, http.StatusOK, plan)
}

// Batch godoc
// @Summary Generate several study plans
// @Tags StudyPlan
// @Accept json
// @Produce json
// @Param payload body dto.BatchStudyPlanRequest true "Plan requests"
// @Success 200 {object} dto.BatchStudyPlanResponse
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /study-plan/batch [post]
func (h *StudyPlanHandler) Batch(c *gin.Context) {
	var req dto.BatchStudyPlanRequest
	if !bindPlanRequest(c, &req) {
		return
	}
	resp, err := h.service.GenerateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, resp)
}

// Export godoc
// @Summary Download a study plan as CSV or PDF
// @Tags StudyPlan
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param payload body dto.StudyPlanRequest true "Plan request"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /study-plan/export [post]
func (h *StudyPlanHandler) Export(c *gin.Context) {
	var req dto.StudyPlanRequest
	if !bindPlanRequest(c, &req) {
		return
	}
	file, err := h.service.Export(c.Request.Context(), req, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, file.ContentType, file.Filename, file.Body)
}

// FlushCache godoc
// @Summary Drop every cached plan
// @Tags StudyPlan
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /study-plan/cache [delete]
func (h *StudyPlanHandler) FlushCache(c *gin.Context) {
	enabled, err := h.service.FlushCache(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"flushed": enabled}, map[string]interface{}{"cache_enabled": enabled})
}

func bindPlanRequest(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}
