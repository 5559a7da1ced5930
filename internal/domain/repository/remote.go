package repository

import (
	"context"
	"errors"

	"github.com/yourusername/examprep/internal/domain/entity"
)

// ErrNoMoreQuestions означает, что источник вопросов исчерпан и экзамен завершён.
// Это не сбой, а штатный сигнал окончания попытки.
var ErrNoMoreQuestions = errors.New("no more questions for attempt")

// QuestionSource выдаёт следующий вопрос попытки.
// Последовательность одноразовая: повторить уже выданный вопрос источник не обязан.
type QuestionSource interface {
	NextQuestion(ctx context.Context, attemptID string) (*entity.Question, error)
}

// AnswerSink принимает ответы пользователя. Доставка best-effort.
type AnswerSink interface {
	SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error)
}

// StartAttemptRequest — параметры новой попытки
type StartAttemptRequest struct {
	ExamID    uint   `json:"exam_id,omitempty"`
	SubjectID uint   `json:"subject_id,omitempty"`
	ExamName  string `json:"exam_name,omitempty"`
	Mode      string `json:"mode" binding:"omitempty,oneof=practice mock topic"`
	Topic     string `json:"topic,omitempty"`
}

// StartAttemptResponse — результат создания попытки
type StartAttemptResponse struct {
	AttemptID       string `json:"attempt_id"`
	DurationSeconds int    `json:"duration_seconds"`
	QuestionLimit   int    `json:"question_limit"`
	ExamName        string `json:"exam_name,omitempty"`
}

// AttemptStarter создаёт попытку и возвращает её идентификатор
type AttemptStarter interface {
	StartAttempt(ctx context.Context, userID uint, req StartAttemptRequest) (*StartAttemptResponse, error)
}

// AttemptFinisher завершает попытку на сервере
type AttemptFinisher interface {
	FinishAttempt(ctx context.Context, userID uint, attemptID string) error
}
