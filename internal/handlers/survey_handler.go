package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/services"
	"github.com/surveyer/survey-service/internal/utils"
	"github.com/surveyer/survey-service/internal/validator"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *validator.Validator
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	validator *validator.Validator,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// CreateSurvey creates a new draft survey owned by the caller
// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body services.CreateSurveyRequest true "Survey data"
// @Success 201 {object} services.SurveyDetail
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetMySurveys lists the caller's surveys, newest first
// @Summary List own surveys
// @Tags surveys
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param status query string false "Survey status"
// @Success 200 {object} services.SurveyListResult
// @Failure 401 {object} ErrorResponse
// @Router /surveys/my [get]
func (h *SurveyHandler) GetMySurveys(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Listing own surveys", "user_id", userID)

	result, err := h.surveyService.ListByCreator(c.Request.Context(), userID, h.parseSurveyFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSurvey retrieves one of the caller's surveys with its questions
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyDetail
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UpdateSurvey partially updates a survey
// @Summary Update survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param survey body services.UpdateSurveyRequest true "Fields to update"
// @Success 200 {object} services.SurveyDetail
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id} [put]
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating survey", "survey_id", id)

	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteSurvey archives a survey
// @Summary Delete survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting survey", "survey_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishSurvey publishes a survey so it can collect responses
// @Summary Publish survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyDetail
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id}/publish [post]
func (h *SurveyHandler) PublishSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Publishing survey", "survey_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	survey, err := h.surveyService.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// GetSurveyStats retrieves raw counts for a survey
// @Summary Get survey statistics
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} repositories.SurveyStats
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/stats [get]
func (h *SurveyHandler) GetSurveyStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.surveyService.GetStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMyStats retrieves aggregate counts across the caller's surveys
// @Summary Get creator statistics
// @Tags surveys
// @Produce json
// @Success 200 {object} repositories.CreatorStats
// @Failure 401 {object} ErrorResponse
// @Router /surveys/my/stats [get]
func (h *SurveyHandler) GetMyStats(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.surveyService.GetCreatorStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListPublishedSurveys lists published surveys for respondents
// @Summary List published surveys
// @Tags public
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} services.SurveyListResult
// @Router /surveys [get]
func (h *SurveyHandler) ListPublishedSurveys(c *gin.Context) {
	result, err := h.surveyService.ListPublished(c.Request.Context(), h.parseSurveyFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPublicSurvey retrieves a published survey without authentication
// @Summary Get published survey
// @Tags public
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyDetail
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/public [get]
func (h *SurveyHandler) GetPublicSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.surveyService.GetPublished(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

func (h *SurveyHandler) parseSurveyFilters(c *gin.Context) repositories.SurveyFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.SurveyFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if status := c.Query("status"); status != "" {
		surveyStatus := models.SurveyStatus(status)
		filters.Status = &surveyStatus
	}

	return filters
}
