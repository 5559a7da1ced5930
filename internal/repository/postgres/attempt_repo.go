package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yourusername/examprep/internal/domain/entity"
	apperrors "github.com/yourusername/examprep/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create сохраняет новую попытку. Повтор ID — конфликт.
func (r *AttemptRepo) Create(attempt *entity.Attempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: attempt %s already exists", apperrors.ErrConflict, attempt.ID)
		}
		return fmt.Errorf("create attempt %s failed: %w", attempt.ID, err)
	}
	return nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id string) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// MarkCompleted помечает попытку завершённой. Повторный вызов ничего не меняет.
func (r *AttemptRepo) MarkCompleted(id string, finishedAt time.Time) error {
	result := r.db.Model(&entity.Attempt{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":   true,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("complete attempt %s failed: %w", id, result.Error)
	}
	return nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) драйвера pgx
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
