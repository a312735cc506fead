package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveyer/survey-service/internal/services"
	"github.com/surveyer/survey-service/internal/utils"
	"github.com/surveyer/survey-service/internal/validator"
)

// PublicHandler serves the unauthenticated respondent surface: resolving
// share tokens and submitting responses.
type PublicHandler struct {
	BaseHandler
	tokenService    services.TokenService
	responseService services.ResponseService
	validator       *validator.Validator
}

func NewPublicHandler(
	tokenService services.TokenService,
	responseService services.ResponseService,
	validator *validator.Validator,
	logger utils.Logger,
) *PublicHandler {
	return &PublicHandler{
		BaseHandler:     NewBaseHandler(logger),
		tokenService:    tokenService,
		responseService: responseService,
		validator:       validator,
	}
}

// GetSurveyByToken resolves a share token to its published survey
// @Summary Resolve share token
// @Tags public
// @Produce json
// @Param token path string true "Token value"
// @Success 200 {object} services.SurveyDetail
// @Failure 401 {object} ErrorResponse
// @Router /public/surveys/{token} [get]
func (h *PublicHandler) GetSurveyByToken(c *gin.Context) {
	token := h.parseStringParam(c, "token")
	if token == "" {
		return
	}

	survey, err := h.tokenService.Validate(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// SubmitByToken submits a response through a share token
// @Summary Submit response via token
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Token value"
// @Param response body services.TokenSubmitRequest true "Response data"
// @Success 201 {object} services.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /public/surveys/{token}/responses [post]
func (h *PublicHandler) SubmitByToken(c *gin.Context) {
	token := h.parseStringParam(c, "token")
	if token == "" {
		return
	}

	var req services.TokenSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.responseService.SubmitViaToken(c.Request.Context(), token, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SubmitResponse submits a response directly against a published survey id
// @Summary Submit response
// @Tags public
// @Accept json
// @Produce json
// @Param response body services.SubmitResponseRequest true "Response data"
// @Success 201 {object} services.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /responses/submit [post]
func (h *PublicHandler) SubmitResponse(c *gin.Context) {
	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.responseService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResponseCount returns the number of responses a survey has collected
// @Summary Get response count
// @Tags public
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} ErrorResponse
// @Router /responses/survey/{id}/count [get]
func (h *PublicHandler) GetResponseCount(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	count, err := h.responseService.CountBySurvey(c.Request.Context(), surveyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"survey_id": surveyID,
		"count":     count,
	})
}
