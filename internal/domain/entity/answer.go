package entity

import (
	"time"
)

// AnswerSubmission — запись об ответе, отправляемая на бэкенд
type AnswerSubmission struct {
	AttemptID      string `json:"attempt_id" binding:"required"`
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedAnswer string `json:"selected_answer" binding:"required"`
	TimeTaken      int    `json:"time_taken"` // секунды
}

// AnswerFeedback — ответ бэкенда на отправку ответа.
// В режиме экзамена контроллер его не использует.
type AnswerFeedback struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback"`
}

// QuestionLog хранит ответ пользователя на вопрос в рамках попытки
type QuestionLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AttemptID      string    `gorm:"size:36;not null;uniqueIndex:idx_question_logs_attempt_question" json:"attempt_id"`
	QuestionID     uint      `gorm:"not null;uniqueIndex:idx_question_logs_attempt_question" json:"question_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	SelectedAnswer string    `gorm:"size:255;not null" json:"selected_answer"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	TimeTaken      int       `gorm:"not null;default:0" json:"time_taken"`
	Difficulty     float64   `gorm:"not null;default:0" json:"difficulty_at_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuestionLog) TableName() string {
	return "question_logs"
}
