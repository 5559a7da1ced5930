package repository

import (
	"github.com/yourusername/examprep/internal/domain/entity"
)

// QuestionFilter описывает пул вопросов попытки.
// Пустые поля не участвуют в фильтрации.
type QuestionFilter struct {
	ExamName  string
	SubjectID uint
	Topic     string
}

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByIDs(ids []uint) ([]entity.Question, error)

	// NextInPool возвращает первый вопрос пула (по сложности, затем по ID), не входящий в excludeIDs.
	// Если таких нет — apperrors.ErrNotFound.
	NextInPool(filter QuestionFilter, excludeIDs []uint) (*entity.Question, error)
	CountInPool(filter QuestionFilter) (int64, error)
}
