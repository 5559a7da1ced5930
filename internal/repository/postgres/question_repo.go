package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
	apperrors "github.com/yourusername/examprep/internal/pkg/errors"
)

// createBatchSize — размер пачки при массовой вставке банка вопросов
const createBatchSize = 200

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает пакет вопросов одной транзакцией
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&questions, createBatchSize).Error
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку ID в порядке возрастания ID
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.Where("id IN ?", ids).Order("id").Find(&questions).Error
	return questions, err
}

// poolQuery применяет фильтр пула попытки
func (r *QuestionRepo) poolQuery(filter repository.QuestionFilter) *gorm.DB {
	query := r.db.Model(&entity.Question{})
	if filter.ExamName != "" {
		query = query.Where("UPPER(exam_name) = UPPER(?)", filter.ExamName)
	}
	if filter.SubjectID != 0 {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	return query
}

// NextInPool возвращает первый ещё не выданный вопрос пула.
// Порядок: сначала лёгкие, при равной сложности — по ID.
func (r *QuestionRepo) NextInPool(filter repository.QuestionFilter, excludeIDs []uint) (*entity.Question, error) {
	var question entity.Question
	query := r.poolQuery(filter)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order("difficulty ASC").Order("id ASC").First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// CountInPool возвращает размер пула
func (r *QuestionRepo) CountInPool(filter repository.QuestionFilter) (int64, error) {
	var count int64
	err := r.poolQuery(filter).Count(&count).Error
	return count, err
}
