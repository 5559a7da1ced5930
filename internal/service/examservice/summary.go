package examservice

import (
	"context"
	"fmt"

	"github.com/yourusername/examprep/internal/domain/entity"
	apperrors "github.com/yourusername/examprep/internal/pkg/errors"
)

// AttemptSummary — итоги попытки
type AttemptSummary struct {
	AttemptID      string               `json:"attempt_id"`
	ExamName       string               `json:"exam_name,omitempty"`
	Mode           string               `json:"mode"`
	Completed      bool                 `json:"completed"`
	QuestionLimit  int                  `json:"question_limit"`
	Served         int                  `json:"served"`
	Answered       int                  `json:"answered"`
	Correct        int                  `json:"correct"`
	Incorrect      int                  `json:"incorrect"`
	TotalTimeTaken int                  `json:"total_time_taken"`
	Score          float64              `json:"score"`
	MaxScore       float64              `json:"max_score"`
	Scheme         entity.MarkingScheme `json:"marking_scheme"`
}

// ExportRow — строка журнала ответов для выгрузки
type ExportRow struct {
	Index          int
	QuestionID     uint
	Topic          string
	Content        string
	SelectedAnswer string
	CorrectAnswer  string
	IsCorrect      bool
	TimeTaken      int
}

// Summary считает итоги попытки по схеме оценивания экзамена
func (s *Service) Summary(ctx context.Context, userID uint, attemptID string) (*AttemptSummary, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	logs, err := s.answerRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	served, err := s.servedIDs(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	scheme := entity.ResolveMarkingScheme(attempt.ExamName)
	summary := &AttemptSummary{
		AttemptID:     attempt.ID,
		ExamName:      attempt.ExamName,
		Mode:          attempt.Mode,
		Completed:     attempt.Completed,
		QuestionLimit: attempt.QuestionLimit,
		Served:        len(served),
		Answered:      len(logs),
		Scheme:        scheme,
		MaxScore:      scheme.Correct * float64(attempt.QuestionLimit),
	}
	for _, l := range logs {
		if l.IsCorrect {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
		summary.TotalTimeTaken += l.TimeTaken
	}
	// Кеш выданных вопросов мог истечь
	if summary.Served < summary.Answered {
		summary.Served = summary.Answered
	}
	summary.Score = scheme.Score(summary.Correct, summary.Incorrect)
	return summary, nil
}

// Export возвращает журнал ответов попытки вместе с текстами вопросов
func (s *Service) Export(ctx context.Context, userID uint, attemptID string) (*entity.Attempt, []ExportRow, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.answerRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, nil, fmt.Errorf("load answers: %w", err)
	}

	ids := make([]uint, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.QuestionID)
	}
	questions, err := s.questionRepo.GetByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uint]entity.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	rows := make([]ExportRow, 0, len(logs))
	for i, l := range logs {
		q := byID[l.QuestionID]
		rows = append(rows, ExportRow{
			Index:          i + 1,
			QuestionID:     l.QuestionID,
			Topic:          q.Topic,
			Content:        q.Content,
			SelectedAnswer: l.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      l.IsCorrect,
			TimeTaken:      l.TimeTaken,
		})
	}
	return attempt, rows, nil
}

// ownedAttempt возвращает попытку пользователя. Чужая попытка выглядит как несуществующая.
func (s *Service) ownedAttempt(userID uint, attemptID string) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt %s", apperrors.ErrNotFound, attemptID)
	}
	return attempt, nil
}
