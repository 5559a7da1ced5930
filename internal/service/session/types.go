package session

import (
	"time"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
)

// Значения по умолчанию
const (
	DefaultDurationSeconds  = 3 * 60 * 60 // 3 часа, как у JEE Main / NEET
	DefaultNumericMaxLength = 8
)

// Config содержит настройки контроллера сессии
type Config struct {
	// Длительность экзамена, если попытка не задала свою
	Duration time.Duration
	// Период таймера обратного отсчёта
	TickInterval time.Duration
	// Максимальная длина числового ответа
	NumericMaxLength int
	// Таймаут одной фоновой отправки ответа
	SubmitTimeout time.Duration
	// Отправлять ли несохранённый ответ активного вопроса при истечении времени.
	// По умолчанию выключено: при таймауте ответ теряется.
	FlushPendingOnTimeout bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Duration:              DefaultDurationSeconds * time.Second,
		TickInterval:          time.Second,
		NumericMaxLength:      DefaultNumericMaxLength,
		SubmitTimeout:         10 * time.Second,
		FlushPendingOnTimeout: false,
	}
}

// Params — данные конкретной попытки, передаются при создании контроллера
type Params struct {
	AttemptID string
	UserID    uint
	// ExamName используется для схемы оценивания, если у вопроса нет своей метки
	ExamName string
	// DurationSeconds переопределяет Config.Duration (0 — не переопределять)
	DurationSeconds int
	// PlannedQuestions — ожидаемое число вопросов, нужно только для счётчика not_visited
	PlannedQuestions int
}

// Dependencies содержит зависимости контроллера
type Dependencies struct {
	Questions repository.QuestionSource
	Answers   repository.AnswerSink
	// OnTimeout вызывается ровно один раз, когда время истекло
	OnTimeout func(State)
}

// FetchOutcome описывает результат FetchNext
type FetchOutcome int

const (
	FetchNone      FetchOutcome = iota // состояние не изменилось из-за ошибки
	FetchAppended                      // добавлен новый вопрос
	FetchDuplicate                     // источник повторил уже известный вопрос
)

// State — снимок состояния сессии для слоя отображения
type State struct {
	AttemptID        string
	Questions        []entity.Question
	Answers          map[uint]string
	Statuses         map[uint]entity.QuestionStatus
	ActiveIndex      int // -1, пока нет ни одного вопроса
	RemainingSeconds int
	Exhausted        bool
	Terminated       bool
}

// ActiveQuestion возвращает активный вопрос снимка или nil
func (s State) ActiveQuestion() *entity.Question {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.ActiveIndex]
	return &q
}

// PaletteEntry — ячейка палитры вопросов
type PaletteEntry struct {
	Index      int
	QuestionID uint
	Status     entity.QuestionStatus
	Active     bool
}
