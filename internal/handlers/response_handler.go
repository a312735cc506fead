package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/services"
	"github.com/surveyer/survey-service/internal/utils"
)

// ResponseHandler serves the owner-facing read side of collected responses.
type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	exportService   services.ExportService
}

func NewResponseHandler(
	responseService services.ResponseService,
	exportService services.ExportService,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		exportService:   exportService,
	}
}

// ListResponses lists a survey's responses, newest first
// @Summary List survey responses
// @Tags responses
// @Produce json
// @Param id path uint true "Survey ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param respondent_email query string false "Filter by respondent email"
// @Success 200 {object} services.ResponseListResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/survey/{id} [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	result, err := h.responseService.ListBySurvey(c.Request.Context(), surveyID, h.parseResponseFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResponse retrieves one response with its answers
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} models.SurveyResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportResponses streams the survey's responses as an xlsx workbook
// @Summary Export survey responses
// @Tags responses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Survey ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/survey/{id}/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Exporting responses", "survey_id", surveyID)

	data, filename, err := h.exportService.ExportResponses(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetQuestionAnswers lists all answers recorded for one question
// @Summary List answers by question
// @Tags responses
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {array} models.Answer
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /answers/question/{id} [get]
func (h *ResponseHandler) GetQuestionAnswers(c *gin.Context) {
	questionID := h.parseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	answers, err := h.responseService.AnswersForQuestion(c.Request.Context(), questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) repositories.ResponseFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.ResponseFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if email := c.Query("respondent_email"); email != "" {
		filters.RespondentEmail = &email
	}

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
