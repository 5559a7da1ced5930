package examservice

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
)

// ============================================================================
// Моки репозиториев для Service
// ============================================================================

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	return m.Called(question).Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	return m.Called(questions).Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) NextInPool(filter repository.QuestionFilter, excludeIDs []uint) (*entity.Question, error) {
	args := m.Called(filter, excludeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountInPool(filter repository.QuestionFilter) (int64, error) {
	args := m.Called(filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(attempt *entity.Attempt) error {
	return m.Called(attempt).Error(0)
}

func (m *MockAttemptRepo) GetByID(id string) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) MarkCompleted(id string, finishedAt time.Time) error {
	return m.Called(id, finishedAt).Error(0)
}

// MockAnswerLogRepo реализует repository.AnswerLogRepository
type MockAnswerLogRepo struct {
	mock.Mock
}

func (m *MockAnswerLogRepo) Save(entry *entity.QuestionLog) error {
	return m.Called(entry).Error(0)
}

func (m *MockAnswerLogRepo) GetByAttempt(attemptID string) ([]entity.QuestionLog, error) {
	args := m.Called(attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuestionLog), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

// served настраивает GetJSON так, чтобы он вернул список выданных вопросов
func (m *MockCacheRepo) served(attemptID string, ids ...uint) *mock.Call {
	return m.On("GetJSON", mock.Anything, servedKey(attemptID), mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]uint)
			*dest = append([]uint{}, ids...)
		}).
		Return(nil)
}
