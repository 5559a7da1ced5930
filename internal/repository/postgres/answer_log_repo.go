package postgres

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/examprep/internal/domain/entity"
)

// AnswerLogRepo реализует repository.AnswerLogRepository
type AnswerLogRepo struct {
	db *gorm.DB
}

// NewAnswerLogRepo создает новый репозиторий журнала ответов
func NewAnswerLogRepo(db *gorm.DB) *AnswerLogRepo {
	return &AnswerLogRepo{db: db}
}

// Save сохраняет ответ. Если на вопрос в этой попытке уже отвечали
// (unique violation по idx_question_logs_attempt_question), ответ перезаписывается.
func (r *AnswerLogRepo) Save(entry *entity.QuestionLog) error {
	err := r.db.Create(entry).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("save answer for question #%d failed: %w", entry.QuestionID, err)
	}

	log.Printf("[AnswerLogRepo] Повторный ответ на вопрос #%d в попытке %s, перезаписываем", entry.QuestionID, entry.AttemptID)
	result := r.db.Model(&entity.QuestionLog{}).
		Where("attempt_id = ? AND question_id = ?", entry.AttemptID, entry.QuestionID).
		Updates(map[string]interface{}{
			"selected_answer": entry.SelectedAnswer,
			"is_correct":      entry.IsCorrect,
			"time_taken":      entry.TimeTaken,
			"difficulty":      entry.Difficulty,
		})
	if result.Error != nil {
		return fmt.Errorf("overwrite answer for question #%d failed: %w", entry.QuestionID, result.Error)
	}
	return nil
}

// GetByAttempt возвращает ответы попытки в порядке их первой отправки
func (r *AnswerLogRepo) GetByAttempt(attemptID string) ([]entity.QuestionLog, error) {
	var logs []entity.QuestionLog
	err := r.db.Where("attempt_id = ?", attemptID).
		Order("created_at").
		Order("id").
		Find(&logs).Error
	return logs, err
}
