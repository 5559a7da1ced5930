package repository

import (
	"github.com/yourusername/examprep/internal/domain/entity"
)

// AnswerLogRepository хранит ответы пользователей по попыткам
type AnswerLogRepository interface {
	// Save сохраняет ответ. Повторный ответ на тот же вопрос в той же попытке
	// перезаписывает предыдущий.
	Save(log *entity.QuestionLog) error
	GetByAttempt(attemptID string) ([]entity.QuestionLog, error)
}
