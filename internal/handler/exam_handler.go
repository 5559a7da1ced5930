package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
	"github.com/yourusername/examprep/internal/middleware"
	apperrors "github.com/yourusername/examprep/internal/pkg/errors"
	"github.com/yourusername/examprep/internal/service/examservice"
)

// ExamService — операции сервера экзаменов, нужные обработчику
type ExamService interface {
	StartAttempt(ctx context.Context, userID uint, req repository.StartAttemptRequest) (*repository.StartAttemptResponse, error)
	NextQuestion(ctx context.Context, attemptID string) (*entity.Question, error)
	SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error)
	FinishAttempt(ctx context.Context, userID uint, attemptID string) error
	Summary(ctx context.Context, userID uint, attemptID string) (*examservice.AttemptSummary, error)
	Export(ctx context.Context, userID uint, attemptID string) (*entity.Attempt, []examservice.ExportRow, error)
}

// ExamHandler обрабатывает запросы /quiz/*
type ExamHandler struct {
	service ExamService
}

// NewExamHandler создает новый обработчик экзаменов
func NewExamHandler(service ExamService) *ExamHandler {
	return &ExamHandler{service: service}
}

// RegisterRoutes регистрирует маршруты. submitLimit может быть nil.
func (h *ExamHandler) RegisterRoutes(router gin.IRouter, submitLimit gin.HandlerFunc) {
	quiz := router.Group("/quiz")

	quiz.POST("/start", middleware.ExtractUserID(), h.StartAttempt)

	submitChain := []gin.HandlerFunc{middleware.ExtractUserID()}
	if submitLimit != nil {
		submitChain = append(submitChain, submitLimit)
	}
	submitChain = append(submitChain, h.SubmitAnswer)
	quiz.POST("/submit", submitChain...)

	attempt := quiz.Group("/:attempt_id", middleware.ExtractAttemptID("attempt_id"))
	{
		attempt.GET("/next", h.NextQuestion)

		owned := attempt.Group("", middleware.ExtractUserID())
		owned.POST("/finish", h.FinishAttempt)
		owned.GET("/summary", h.Summary)
		owned.GET("/export", h.Export)
	}
}

// StartAttempt создаёт попытку
// POST /quiz/start?user_id=N
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var req repository.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	resp, err := h.service.StartAttempt(c.Request.Context(), userID, req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// NextQuestion выдаёт следующий вопрос. 404 — вопросы закончились.
// GET /quiz/:attempt_id/next
func (h *ExamHandler) NextQuestion(c *gin.Context) {
	attemptID := c.GetString(middleware.AttemptIDKey)

	question, err := h.service.NextQuestion(c.Request.Context(), attemptID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswer принимает ответ
// POST /quiz/submit?user_id=N
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var submission entity.AnswerSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	feedback, err := h.service.SubmitAnswer(c.Request.Context(), userID, submission)
	if err != nil {
		h.handleExamError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

// FinishAttempt завершает попытку
// POST /quiz/:attempt_id/finish?user_id=N
func (h *ExamHandler) FinishAttempt(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	attemptID := c.GetString(middleware.AttemptIDKey)

	if err := h.service.FinishAttempt(c.Request.Context(), userID, attemptID); err != nil {
		h.handleExamError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary возвращает итоги попытки
// GET /quiz/:attempt_id/summary?user_id=N
func (h *ExamHandler) Summary(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	attemptID := c.GetString(middleware.AttemptIDKey)

	summary, err := h.service.Summary(c.Request.Context(), userID, attemptID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleExamError переводит ошибки сервиса в HTTP ответ
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNoMoreQuestions):
		c.JSON(http.StatusNotFound, gin.H{"error": "No more questions", "error_type": "exhausted"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation"})
	default:
		log.Printf("[ExamHandler] ERROR: Internal server error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
