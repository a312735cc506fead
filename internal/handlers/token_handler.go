package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveyer/survey-service/internal/services"
	"github.com/surveyer/survey-service/internal/utils"
	"github.com/surveyer/survey-service/internal/validator"
)

type TokenHandler struct {
	BaseHandler
	tokenService services.TokenService
	validator    *validator.Validator
}

func NewTokenHandler(
	tokenService services.TokenService,
	validator *validator.Validator,
	logger utils.Logger,
) *TokenHandler {
	return &TokenHandler{
		BaseHandler:  NewBaseHandler(logger),
		tokenService: tokenService,
		validator:    validator,
	}
}

// IssueToken issues a share token for a published survey. Issuing again while
// a valid token exists returns the same token with reused set.
// @Summary Issue share token
// @Tags tokens
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param token body services.IssueTokenRequest false "Expiry override"
// @Success 201 {object} services.TokenDetail
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id}/token [post]
func (h *TokenHandler) IssueToken(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Issuing token", "survey_id", surveyID)

	// The body is optional; an empty body means the default expiry.
	var req *services.IssueTokenRequest
	if c.Request.ContentLength > 0 {
		req = &services.IssueTokenRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
			return
		}
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	detail, err := h.tokenService.Issue(c.Request.Context(), surveyID, req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if detail.Reused {
		status = http.StatusOK
	}
	c.JSON(status, detail)
}

// RevokeToken deactivates a share token. Revoking an already inactive token
// succeeds.
// @Summary Revoke share token
// @Tags tokens
// @Produce json
// @Param token path string true "Token value"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tokens/{token} [delete]
func (h *TokenHandler) RevokeToken(c *gin.Context) {
	token := h.parseStringParam(c, "token")
	if token == "" {
		return
	}

	h.LogRequest(c, "Revoking token", "token", token)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.tokenService.Revoke(c.Request.Context(), token, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
