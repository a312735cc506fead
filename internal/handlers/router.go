package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/surveyer/survey-service/internal/config"
	"github.com/surveyer/survey-service/internal/services"
	"github.com/surveyer/survey-service/internal/utils"
	"github.com/surveyer/survey-service/internal/validator"
)

type HandlerManager struct {
	surveyHandler   *SurveyHandler
	questionHandler *QuestionHandler
	tokenHandler    *TokenHandler
	publicHandler   *PublicHandler
	responseHandler *ResponseHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:   NewSurveyHandler(serviceManager.Survey(), validator, logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		tokenHandler:    NewTokenHandler(serviceManager.Token(), validator, logger),
		publicHandler:   NewPublicHandler(serviceManager.Token(), serviceManager.Response(), validator, logger),
		responseHandler: NewResponseHandler(serviceManager.Response(), serviceManager.Export(), logger),
		authMiddleware:  NewCasdoorAuthMiddleware(casdoorConfig),
	}
}

// SetupRoutes wires the API. Owner operations sit behind the auth middleware;
// the respondent surface is open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	auth := hm.authMiddleware.AuthMiddleware()

	api := router.Group("/api")
	{
		surveys := api.Group("/surveys")
		{
			// Respondent read path
			surveys.GET("", hm.surveyHandler.ListPublishedSurveys)
			surveys.GET("/:id/public", hm.surveyHandler.GetPublicSurvey)
			surveys.GET("/:id/questions", hm.questionHandler.ListQuestions)

			// Owner operations
			surveys.POST("", auth, hm.surveyHandler.CreateSurvey)
			surveys.GET("/my", auth, hm.surveyHandler.GetMySurveys)
			surveys.GET("/my/stats", auth, hm.surveyHandler.GetMyStats)
			surveys.GET("/:id", auth, hm.surveyHandler.GetSurvey)
			surveys.PUT("/:id", auth, hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", auth, hm.surveyHandler.DeleteSurvey)
			surveys.POST("/:id/publish", auth, hm.surveyHandler.PublishSurvey)
			surveys.GET("/:id/stats", auth, hm.surveyHandler.GetSurveyStats)
			surveys.POST("/:id/questions", auth, hm.questionHandler.AddQuestion)
			surveys.POST("/:id/token", auth, hm.tokenHandler.IssueToken)
		}

		questions := api.Group("/questions")
		{
			questions.PUT("/:id", auth, hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", auth, hm.questionHandler.DeleteQuestion)
			questions.POST("/:id/options", auth, hm.questionHandler.AddOption)
		}

		tokens := api.Group("/tokens")
		{
			tokens.DELETE("/:token", auth, hm.tokenHandler.RevokeToken)
		}

		responses := api.Group("/responses")
		{
			// Respondent write path
			responses.POST("/submit", hm.publicHandler.SubmitResponse)
			responses.GET("/survey/:id/count", hm.publicHandler.GetResponseCount)

			// Owner read path
			responses.GET("/survey/:id", auth, hm.responseHandler.ListResponses)
			responses.GET("/survey/:id/export", auth, hm.responseHandler.ExportResponses)
			responses.GET("/:id", auth, hm.responseHandler.GetResponse)
		}

		answers := api.Group("/answers")
		{
			answers.GET("/question/:id", auth, hm.responseHandler.GetQuestionAnswers)
		}

		public := api.Group("/public/surveys")
		{
			public.GET("/:token", hm.publicHandler.GetSurveyByToken)
			public.POST("/:token/responses", hm.publicHandler.SubmitByToken)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})
}
