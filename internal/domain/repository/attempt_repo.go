package repository

import (
	"time"

	"github.com/yourusername/examprep/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	Create(attempt *entity.Attempt) error
	GetByID(id string) (*entity.Attempt, error)
	MarkCompleted(id string, finishedAt time.Time) error
}
