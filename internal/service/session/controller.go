package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
)

// Controller хранит состояние одной попытки экзамена и предоставляет
// единственный допустимый набор операций над ним.
// Все мутации выполняются под mu; сетевые вызовы — без блокировки.
type Controller struct {
	// Настройки
	config *Config
	params Params

	// Зависимости
	deps *Dependencies

	mu sync.Mutex

	// Последовательность вопросов только дописывается
	questions []entity.Question
	positions map[uint]int
	answers   map[uint]string
	statuses  map[uint]entity.QuestionStatus
	// Секунды, проведённые на каждом вопросе
	timeSpent map[uint]int
	// Последний отправленный ответ по каждому вопросу
	submitted map[uint]string

	active     int
	remaining  int
	fetching   bool
	exhausted  bool
	closed     bool
	terminated bool

	timer       *Timer
	submissions sync.WaitGroup
}

// NewController создает контроллер для попытки
func NewController(params Params, config *Config, deps *Dependencies) (*Controller, error) {
	if params.AttemptID == "" {
		return nil, fmt.Errorf("attempt id is required")
	}
	if deps == nil || deps.Questions == nil || deps.Answers == nil {
		return nil, fmt.Errorf("question source and answer sink are required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.NumericMaxLength <= 0 {
		config.NumericMaxLength = DefaultNumericMaxLength
	}

	remaining := int(config.Duration.Seconds())
	if params.DurationSeconds > 0 {
		remaining = params.DurationSeconds
	}

	return &Controller{
		config:    config,
		params:    params,
		deps:      deps,
		positions: make(map[uint]int),
		answers:   make(map[uint]string),
		statuses:  make(map[uint]entity.QuestionStatus),
		timeSpent: make(map[uint]int),
		submitted: make(map[uint]string),
		active:    -1,
		remaining: remaining,
	}, nil
}

// AttemptID возвращает идентификатор попытки
func (c *Controller) AttemptID() string {
	return c.params.AttemptID
}

// FetchNext запрашивает следующий вопрос у источника.
// Единственная операция, которая увеличивает последовательность вопросов.
func (c *Controller) FetchNext(ctx context.Context) (FetchOutcome, error) {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return FetchNone, err
	}
	if c.exhausted {
		c.mu.Unlock()
		return FetchNone, ErrExamComplete
	}
	if c.fetching {
		c.mu.Unlock()
		return FetchNone, ErrFetchInProgress
	}
	c.fetching = true
	attemptID := c.params.AttemptID
	c.mu.Unlock()

	question, err := c.deps.Questions.NextQuestion(ctx, attemptID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false

	// Сессию могли закрыть, пока шёл запрос: результат отбрасываем
	if errOpen := c.checkOpenLocked(); errOpen != nil {
		log.Printf("[Session] Попытка %s: ответ на запрос вопроса пришёл после закрытия сессии, игнорируется", attemptID)
		return FetchNone, errOpen
	}

	if err != nil {
		if errors.Is(err, repository.ErrNoMoreQuestions) {
			c.exhausted = true
			log.Printf("[Session] Попытка %s: вопросы закончились, экзамен завершён (получено %d)", attemptID, len(c.questions))
			return FetchNone, ErrExamComplete
		}
		log.Printf("[Session] Попытка %s: ошибка при получении следующего вопроса: %v", attemptID, err)
		return FetchNone, fmt.Errorf("fetch next question: %w", err)
	}
	if question == nil {
		return FetchNone, fmt.Errorf("fetch next question: source returned no question")
	}

	return c.appendLocked(*question), nil
}

func (c *Controller) appendLocked(q entity.Question) FetchOutcome {
	if _, dup := c.positions[q.ID]; dup {
		log.Printf("[Session] Попытка %s: источник повторил вопрос #%d, последовательность не изменена", c.params.AttemptID, q.ID)
		return FetchDuplicate
	}

	c.questions = append(c.questions, q)
	c.positions[q.ID] = len(c.questions) - 1
	if _, ok := c.statuses[q.ID]; !ok {
		c.statuses[q.ID] = entity.StatusNotAnswered
	}
	c.active = len(c.questions) - 1
	return FetchAppended
}

// SelectOption записывает ответ на активный вопрос. Статус не меняется.
// Для числовых вопросов value должен быть корректной числовой строкой.
func (c *Controller) SelectOption(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	q, err := c.activeLocked()
	if err != nil {
		return err
	}

	if q.IsNumeric() {
		if err := ValidateNumeric(value, c.config.NumericMaxLength); err != nil {
			return err
		}
	} else if !q.HasOption(value) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, value)
	}

	c.answers[q.ID] = value
	return nil
}

// PressKey обрабатывает нажатие виртуальной клавиатуры на числовом вопросе
func (c *Controller) PressKey(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	q, err := c.activeLocked()
	if err != nil {
		return err
	}
	if !q.IsNumeric() {
		return ErrNotNumeric
	}

	next, err := ApplyKey(c.answers[q.ID], key, c.config.NumericMaxLength)
	if err != nil {
		return err
	}
	if next == "" {
		delete(c.answers, q.ID)
	} else {
		c.answers[q.ID] = next
	}
	return nil
}

// SaveAndAdvance сохраняет ответ активного вопроса и переходит к следующему
func (c *Controller) SaveAndAdvance(ctx context.Context) error {
	return c.commitAndAdvance(ctx, false)
}

// MarkForReview отмечает вопрос для пересмотра и переходит к следующему.
// Отмеченный вопрос с ответом всё равно отправляется: он учитывается при оценке.
func (c *Controller) MarkForReview(ctx context.Context) error {
	return c.commitAndAdvance(ctx, true)
}

func (c *Controller) commitAndAdvance(ctx context.Context, mark bool) error {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	q, err := c.activeLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	answer, hasAnswer := c.answers[q.ID]
	switch {
	case hasAnswer && mark:
		c.statuses[q.ID] = entity.StatusAnsweredAndMarkedForReview
	case hasAnswer:
		c.statuses[q.ID] = entity.StatusAnswered
	case mark:
		c.statuses[q.ID] = entity.StatusMarkedForReview
	default:
		c.statuses[q.ID] = entity.StatusNotAnswered
	}
	if hasAnswer {
		c.submitLocked(q.ID, answer)
	}

	if c.active < len(c.questions)-1 {
		c.active++
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	_, err = c.FetchNext(ctx)
	return err
}

// ClearResponse удаляет ответ активного вопроса и сбрасывает статус в not_answered
func (c *Controller) ClearResponse() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	q, err := c.activeLocked()
	if err != nil {
		return err
	}

	delete(c.answers, q.ID)
	c.statuses[q.ID] = entity.StatusNotAnswered
	return nil
}

// JumpTo делает активным уже полученный вопрос. Ничего не отправляет и не меняет статусы.
func (c *Controller) JumpTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpenLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.questions) {
		return fmt.Errorf("%w: %d (fetched %d)", ErrIndexOutOfRange, index, len(c.questions))
	}
	c.active = index
	return nil
}

// Tick уменьшает оставшееся время на секунду и начисляет её активному вопросу.
// Возвращает false, когда сессия больше не идёт и таймер пора остановить.
// Завершение по времени происходит ровно один раз.
func (c *Controller) Tick() bool {
	c.mu.Lock()
	if c.closed || c.terminated {
		c.mu.Unlock()
		return false
	}

	if c.remaining > 0 {
		c.remaining--
		if q, err := c.activeLocked(); err == nil {
			c.timeSpent[q.ID]++
		}
	}
	if c.remaining > 0 {
		c.mu.Unlock()
		return true
	}

	c.terminated = true
	if c.config.FlushPendingOnTimeout {
		c.flushPendingLocked()
	}
	snapshot := c.snapshotLocked()
	onTimeout := c.deps.OnTimeout
	c.mu.Unlock()

	log.Printf("[Session] Попытка %s: время истекло, сессия завершена (вопросов: %d)", c.params.AttemptID, len(snapshot.Questions))
	if onTimeout != nil {
		onTimeout(snapshot)
	}
	return false
}

// flushPendingLocked отправляет ответ активного вопроса, если он ещё не был отправлен в текущем виде
func (c *Controller) flushPendingLocked() {
	q, err := c.activeLocked()
	if err != nil {
		return
	}
	answer, ok := c.answers[q.ID]
	if !ok {
		return
	}
	if last, sent := c.submitted[q.ID]; sent && last == answer {
		return
	}
	log.Printf("[Session] Попытка %s: отправка несохранённого ответа на вопрос #%d при истечении времени", c.params.AttemptID, q.ID)
	c.submitLocked(q.ID, answer)
}

// submitLocked запускает фоновую отправку ответа. Ошибки только логируются.
func (c *Controller) submitLocked(questionID uint, answer string) {
	c.submitted[questionID] = answer
	submission := entity.AnswerSubmission{
		AttemptID:      c.params.AttemptID,
		QuestionID:     questionID,
		SelectedAnswer: answer,
		TimeTaken:      c.timeSpent[questionID],
	}
	userID := c.params.UserID
	sink := c.deps.Answers
	timeout := c.config.SubmitTimeout

	c.submissions.Add(1)
	go func() {
		defer c.submissions.Done()

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if _, err := sink.SubmitAnswer(ctx, userID, submission); err != nil {
			log.Printf("[Session] WARNING: Не удалось отправить ответ на вопрос #%d (попытка %s): %v",
				submission.QuestionID, submission.AttemptID, err)
		}
	}()
}

// WaitSubmissions блокируется до завершения всех фоновых отправок ответов
func (c *Controller) WaitSubmissions() {
	c.submissions.Wait()
}

// Close завершает сессию: останавливает таймер, а незавершённый FetchNext
// после этого не изменит состояние.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	timer := c.timer
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	log.Printf("[Session] Попытка %s: сессия закрыта", c.params.AttemptID)
}

// State возвращает копию текущего состояния
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Status возвращает статус вопроса; для неизвестных ID — not_visited
func (c *Controller) Status(questionID uint) entity.QuestionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.statuses[questionID]; ok {
		return s
	}
	return entity.StatusNotVisited
}

// Answer возвращает текущий ответ на вопрос
func (c *Controller) Answer(questionID uint) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[questionID]
	return a, ok
}

// ActiveQuestion возвращает копию активного вопроса
func (c *Controller) ActiveQuestion() (*entity.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, err := c.activeLocked()
	if err != nil {
		return nil, err
	}
	copied := *q
	return &copied, nil
}

// MarkingScheme возвращает схему оценивания для активного вопроса
func (c *Controller) MarkingScheme() entity.MarkingScheme {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := c.params.ExamName
	if q, err := c.activeLocked(); err == nil && q.ExamName != "" {
		label = q.ExamName
	}
	return entity.ResolveMarkingScheme(label)
}

// RemainingSeconds возвращает оставшееся время
func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// activeLocked проверяет границы индекса при каждом чтении
func (c *Controller) activeLocked() (*entity.Question, error) {
	if c.active < 0 || c.active >= len(c.questions) {
		return nil, ErrNoActiveQuestion
	}
	return &c.questions[c.active], nil
}

func (c *Controller) checkOpenLocked() error {
	if c.closed {
		return ErrSessionClosed
	}
	if c.terminated {
		return ErrTimeExpired
	}
	return nil
}

func (c *Controller) snapshotLocked() State {
	questions := make([]entity.Question, len(c.questions))
	copy(questions, c.questions)

	answers := make(map[uint]string, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	statuses := make(map[uint]entity.QuestionStatus, len(c.statuses))
	for k, v := range c.statuses {
		statuses[k] = v
	}

	active := c.active
	if active >= len(questions) {
		active = -1
	}

	return State{
		AttemptID:        c.params.AttemptID,
		Questions:        questions,
		Answers:          answers,
		Statuses:         statuses,
		ActiveIndex:      active,
		RemainingSeconds: c.remaining,
		Exhausted:        c.exhausted,
		Terminated:       c.terminated,
	}
}
