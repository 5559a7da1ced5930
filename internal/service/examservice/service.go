// Package examservice — серверная сторона экзамена: создание попыток,
// последовательная выдача вопросов, проверка ответов и итоги.
package examservice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
	apperrors "github.com/yourusername/examprep/internal/pkg/errors"
)

// Config содержит правила выдачи вопросов
type Config struct {
	MockDuration     time.Duration
	PracticeDuration time.Duration
	QuestionLimit    int
	// Время жизни списка выданных вопросов в кеше
	ServedTTL time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MockDuration:     180 * time.Minute,
		PracticeDuration: 60 * time.Minute,
		QuestionLimit:    30,
		ServedTTL:        24 * time.Hour,
	}
}

// Service реализует repository.QuestionSource, repository.AnswerSink
// и repository.AttemptStarter поверх хранилища
type Service struct {
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerLogRepository
	cacheRepo    repository.CacheRepository
	config       *Config
	now          func() time.Time
}

// New создает сервис экзаменов
func New(
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerLogRepository,
	cacheRepo repository.CacheRepository,
	config *Config,
) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		cacheRepo:    cacheRepo,
		config:       config,
		now:          time.Now,
	}
}

func servedKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:served", attemptID)
}

func attemptFilter(a *entity.Attempt) repository.QuestionFilter {
	return repository.QuestionFilter{
		ExamName:  a.ExamName,
		SubjectID: a.SubjectID,
		Topic:     a.Topic,
	}
}

// StartAttempt создаёт попытку для пула вопросов экзамена/предмета/темы
func (s *Service) StartAttempt(ctx context.Context, userID uint, req repository.StartAttemptRequest) (*repository.StartAttemptResponse, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	switch mode {
	case "":
		mode = entity.AttemptModePractice
	case entity.AttemptModePractice, entity.AttemptModeMock, entity.AttemptModeTopic:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", apperrors.ErrValidation, req.Mode)
	}
	if mode == entity.AttemptModeTopic && strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is required for topic mode", apperrors.ErrValidation)
	}

	attempt := &entity.Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExamID:    req.ExamID,
		SubjectID: req.SubjectID,
		ExamName:  strings.TrimSpace(req.ExamName),
		Mode:      mode,
		Topic:     strings.TrimSpace(req.Topic),
		StartedAt: s.now(),
	}

	poolSize, err := s.questionRepo.CountInPool(attemptFilter(attempt))
	if err != nil {
		return nil, fmt.Errorf("count question pool: %w", err)
	}
	if poolSize == 0 {
		return nil, fmt.Errorf("%w: no questions for exam %q subject %d topic %q",
			apperrors.ErrNotFound, attempt.ExamName, attempt.SubjectID, attempt.Topic)
	}

	attempt.QuestionLimit = s.config.QuestionLimit
	if int64(attempt.QuestionLimit) > poolSize {
		attempt.QuestionLimit = int(poolSize)
	}
	duration := s.config.PracticeDuration
	if attempt.IsMock() {
		duration = s.config.MockDuration
	}
	attempt.DurationSeconds = int(duration.Seconds())

	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	log.Printf("[ExamService] Попытка %s создана: user=%d mode=%s exam=%q лимит=%d",
		attempt.ID, userID, mode, attempt.ExamName, attempt.QuestionLimit)

	return &repository.StartAttemptResponse{
		AttemptID:       attempt.ID,
		DurationSeconds: attempt.DurationSeconds,
		QuestionLimit:   attempt.QuestionLimit,
		ExamName:        attempt.ExamName,
	}, nil
}

// NextQuestion выдаёт следующий ещё не выданный вопрос попытки.
// Когда пул или лимит исчерпан, попытка завершается и возвращается repository.ErrNoMoreQuestions.
func (s *Service) NextQuestion(ctx context.Context, attemptID string) (*entity.Question, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Completed {
		return nil, repository.ErrNoMoreQuestions
	}

	served, err := s.servedIDs(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if len(served) >= attempt.QuestionLimit {
		s.complete(attemptID)
		return nil, repository.ErrNoMoreQuestions
	}

	question, err := s.questionRepo.NextInPool(attemptFilter(attempt), served)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.complete(attemptID)
			return nil, repository.ErrNoMoreQuestions
		}
		return nil, fmt.Errorf("select next question: %w", err)
	}

	served = append(served, question.ID)
	if err := s.cacheRepo.SetJSON(ctx, servedKey(attemptID), served, s.config.ServedTTL); err != nil {
		return nil, fmt.Errorf("store served questions: %w", err)
	}

	log.Printf("[ExamService] Попытка %s: выдан вопрос #%d (%d/%d)", attemptID, question.ID, len(served), attempt.QuestionLimit)
	return question, nil
}

// SubmitAnswer проверяет ответ и записывает его в журнал.
// Для пробного экзамена правильный ответ не раскрывается.
func (s *Service) SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error) {
	answer := strings.TrimSpace(submission.SelectedAnswer)
	if submission.AttemptID == "" || submission.QuestionID == 0 || answer == "" {
		return nil, fmt.Errorf("%w: attempt_id, question_id and selected_answer are required", apperrors.ErrValidation)
	}
	if submission.TimeTaken < 0 {
		return nil, fmt.Errorf("%w: time_taken must not be negative", apperrors.ErrValidation)
	}

	attempt, err := s.ownedAttempt(userID, submission.AttemptID)
	if err != nil {
		return nil, err
	}

	served, err := s.servedIDs(ctx, submission.AttemptID)
	if err != nil {
		return nil, err
	}
	if !containsID(served, submission.QuestionID) {
		return nil, fmt.Errorf("%w: question #%d was not served in attempt %s",
			apperrors.ErrConflict, submission.QuestionID, submission.AttemptID)
	}

	question, err := s.questionRepo.GetByID(submission.QuestionID)
	if err != nil {
		return nil, err
	}

	correct := question.IsCorrect(answer)
	entry := &entity.QuestionLog{
		AttemptID:      submission.AttemptID,
		QuestionID:     submission.QuestionID,
		UserID:         userID,
		SelectedAnswer: answer,
		IsCorrect:      correct,
		TimeTaken:      submission.TimeTaken,
		Difficulty:     question.Difficulty,
	}
	if err := s.answerRepo.Save(entry); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}

	if attempt.IsMock() {
		return &entity.AnswerFeedback{Feedback: "Answer recorded"}, nil
	}

	feedback := "Incorrect"
	if correct {
		feedback = "Correct"
	}
	if question.Explanation != "" {
		feedback += ". " + question.Explanation
	}
	return &entity.AnswerFeedback{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Feedback:      feedback,
	}, nil
}

// FinishAttempt завершает попытку досрочно (например, по таймеру клиента)
func (s *Service) FinishAttempt(ctx context.Context, userID uint, attemptID string) error {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Completed {
		return nil
	}
	return s.attemptRepo.MarkCompleted(attemptID, s.now())
}

func (s *Service) complete(attemptID string) {
	if err := s.attemptRepo.MarkCompleted(attemptID, s.now()); err != nil {
		log.Printf("[ExamService] WARNING: Не удалось завершить попытку %s: %v", attemptID, err)
		return
	}
	log.Printf("[ExamService] Попытка %s завершена: вопросы закончились", attemptID)
}

func (s *Service) servedIDs(ctx context.Context, attemptID string) ([]uint, error) {
	var served []uint
	err := s.cacheRepo.GetJSON(ctx, servedKey(attemptID), &served)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []uint{}, nil
		}
		return nil, fmt.Errorf("load served questions: %w", err)
	}
	return served, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
