package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
)

// ============================================================================
// Моки для контроллера
// ============================================================================

// MockQuestionSource реализует repository.QuestionSource
type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) NextQuestion(ctx context.Context, attemptID string) (*entity.Question, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

// MockAnswerSink реализует repository.AnswerSink
type MockAnswerSink struct {
	mock.Mock
}

func (m *MockAnswerSink) SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error) {
	args := m.Called(ctx, userID, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnswerFeedback), args.Error(1)
}

const testAttemptID = "att-1"

func mcq(id uint, options ...string) *entity.Question {
	return &entity.Question{ID: id, Content: "Вопрос", Options: entity.StringArray(options)}
}

func numeric(id uint) *entity.Question {
	return &entity.Question{ID: id, Content: "Числовой вопрос"}
}

func newTestController(t *testing.T, src *MockQuestionSource, sink *MockAnswerSink, configure func(*Config)) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	if configure != nil {
		configure(cfg)
	}
	c, err := NewController(Params{AttemptID: testAttemptID, UserID: 7}, cfg, &Dependencies{
		Questions: src,
		Answers:   sink,
	})
	require.NoError(t, err)
	return c
}

func submissionFor(questionID uint, answer string) interface{} {
	return mock.MatchedBy(func(s entity.AnswerSubmission) bool {
		return s.AttemptID == testAttemptID && s.QuestionID == questionID && s.SelectedAnswer == answer
	})
}

// ============================================================================
// FetchNext
// ============================================================================

func TestNewController_Validation(t *testing.T) {
	_, err := NewController(Params{}, nil, &Dependencies{Questions: new(MockQuestionSource), Answers: new(MockAnswerSink)})
	assert.Error(t, err, "Без attempt id контроллер не создаётся")

	_, err = NewController(Params{AttemptID: testAttemptID}, nil, &Dependencies{})
	assert.Error(t, err, "Без источника вопросов контроллер не создаётся")
}

func TestFetchNext_AppendsDistinctQuestionsInOrder(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(10, "A", "B"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(20, "A", "B"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(numeric(30), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)

	// Act & Assert
	for i, wantID := range []uint{10, 20, 30} {
		outcome, err := c.FetchNext(context.Background())
		require.NoError(t, err)
		assert.Equal(t, FetchAppended, outcome)

		state := c.State()
		require.Len(t, state.Questions, i+1, "Длина последовательности равна числу успешных выборок")
		assert.Equal(t, wantID, state.Questions[i].ID, "Порядок вопросов не меняется")
		assert.Equal(t, i, state.ActiveIndex, "Активным становится только что полученный вопрос")
		assert.Equal(t, entity.StatusNotAnswered, state.Statuses[wantID])
	}
	src.AssertExpectations(t)
}

func TestFetchNext_DuplicateLeavesSequenceUnchanged(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)

	// Act
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)
	outcome, err := c.FetchNext(context.Background())

	// Assert
	require.NoError(t, err, "Повтор вопроса — не ошибка")
	assert.Equal(t, FetchDuplicate, outcome)
	assert.Len(t, c.State().Questions, 1)
	assert.Equal(t, 0, c.State().ActiveIndex)
}

func TestFetchNext_ExhaustedOnFirstCall(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(nil, repository.ErrNoMoreQuestions).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)

	// Act
	outcome, err := c.FetchNext(context.Background())

	// Assert
	assert.ErrorIs(t, err, ErrExamComplete)
	assert.Equal(t, FetchNone, outcome)
	state := c.State()
	assert.Empty(t, state.Questions)
	assert.Equal(t, -1, state.ActiveIndex)
	assert.True(t, state.Exhausted)

	// Повторный вызов не обращается к источнику
	_, err = c.FetchNext(context.Background())
	assert.ErrorIs(t, err, ErrExamComplete)
	src.AssertNumberOfCalls(t, "NextQuestion", 1)

	// Операции над пустой последовательностью отклоняются
	assert.ErrorIs(t, c.SelectOption("A"), ErrNoActiveQuestion)
	assert.ErrorIs(t, c.ClearResponse(), ErrNoActiveQuestion)
	assert.ErrorIs(t, c.JumpTo(0), ErrIndexOutOfRange)
}

func TestFetchNext_TransientErrorIsRetryable(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(nil, errors.New("connection reset")).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)

	// Act
	_, err := c.FetchNext(context.Background())

	// Assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExamComplete)
	assert.Empty(t, c.State().Questions, "Ошибка сети не меняет состояние")

	outcome, err := c.FetchNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FetchAppended, outcome)
}

func TestFetchNext_ClosedDuringFlightIsDiscarded(t *testing.T) {
	// Arrange
	started := make(chan struct{})
	release := make(chan struct{})
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(mcq(1, "A"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)

	var outcome FetchOutcome
	var fetchErr error
	done := make(chan struct{})
	go func() {
		outcome, fetchErr = c.FetchNext(context.Background())
		close(done)
	}()
	<-started

	// Act: второй запрос, пока первый не завершён, затем закрытие сессии
	_, busyErr := c.FetchNext(context.Background())
	c.Close()
	close(release)
	<-done

	// Assert
	assert.ErrorIs(t, busyErr, ErrFetchInProgress)
	assert.ErrorIs(t, fetchErr, ErrSessionClosed)
	assert.Equal(t, FetchNone, outcome)
	assert.Empty(t, c.State().Questions, "Запоздавший ответ не должен менять закрытую сессию")
	src.AssertNumberOfCalls(t, "NextQuestion", 1)
}

// ============================================================================
// Ответы и навигация
// ============================================================================

func TestScenario_SelectSaveAndAdvance(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B", "C"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A", "B"), nil).Once()
	sink := new(MockAnswerSink)
	sink.On("SubmitAnswer", mock.Anything, uint(7), submissionFor(1, "B")).Return(&entity.AnswerFeedback{}, nil).Once()
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	require.NoError(t, c.SelectOption("B"))
	assert.Equal(t, entity.StatusNotAnswered, c.Status(1), "Выбор варианта не меняет статус")
	err = c.SaveAndAdvance(context.Background())
	c.WaitSubmissions()

	// Assert
	require.NoError(t, err)
	state := c.State()
	assert.Equal(t, entity.StatusAnswered, state.Statuses[1])
	assert.Len(t, state.Questions, 2, "На последнем вопросе сохранение запрашивает следующий")
	assert.Equal(t, 1, state.ActiveIndex)
	sink.AssertExpectations(t)
}

func TestSaveAndAdvance_WithoutAnswerDoesNotSubmit(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(nil, repository.ErrNoMoreQuestions).Once()
	sink := new(MockAnswerSink)
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	err = c.SaveAndAdvance(context.Background())
	c.WaitSubmissions()

	// Assert
	assert.ErrorIs(t, err, ErrExamComplete, "Исчерпание источника всплывает через SaveAndAdvance")
	assert.Equal(t, entity.StatusNotAnswered, c.Status(1))
	sink.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveAndAdvance_MovesWithinFetchedWithoutFetching(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	for i := 0; i < 2; i++ {
		_, err := c.FetchNext(context.Background())
		require.NoError(t, err)
	}
	require.NoError(t, c.JumpTo(0))

	// Act
	err := c.SaveAndAdvance(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, c.State().ActiveIndex)
	src.AssertNumberOfCalls(t, "NextQuestion", 2)
}

func TestMarkForReview_WithAnswerSubmitsOnce(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A", "B"), nil).Once()
	sink := new(MockAnswerSink)
	sink.On("SubmitAnswer", mock.Anything, uint(7), submissionFor(1, "A")).Return(&entity.AnswerFeedback{}, nil).Once()
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SelectOption("A"))

	// Act
	err = c.MarkForReview(context.Background())
	c.WaitSubmissions()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAnsweredAndMarkedForReview, c.Status(1))
	sink.AssertNumberOfCalls(t, "SubmitAnswer", 1)
}

func TestScenario_MarkForReviewWithoutAnswer(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A", "B"), nil).Once()
	sink := new(MockAnswerSink)
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	err = c.MarkForReview(context.Background())
	c.WaitSubmissions()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StatusMarkedForReview, c.Status(1))
	sink.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitFailureDoesNotBlockNavigation(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A"), nil).Once()
	sink := new(MockAnswerSink)
	sink.On("SubmitAnswer", mock.Anything, uint(7), mock.Anything).Return(nil, errors.New("502 bad gateway")).Once()
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SelectOption("A"))

	// Act
	err = c.SaveAndAdvance(context.Background())
	c.WaitSubmissions()

	// Assert
	require.NoError(t, err, "Ошибка отправки не должна всплывать в навигацию")
	assert.Equal(t, entity.StatusAnswered, c.Status(1), "Статус не откатывается")
	assert.Equal(t, 1, c.State().ActiveIndex)
}

func TestSelectOption_ThenClearRoundTrip(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)
	before := c.State()

	// Act
	require.NoError(t, c.SelectOption("B"))
	require.NoError(t, c.ClearResponse())

	// Assert
	after := c.State()
	assert.Equal(t, before.Answers, after.Answers)
	assert.Equal(t, before.Statuses, after.Statuses)
}

func TestSelectOption_RejectsUnknownOption(t *testing.T) {
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, c.SelectOption("Z"), ErrInvalidOption)
	_, ok := c.Answer(1)
	assert.False(t, ok)
}

func TestScenario_NumericSelectThenClear(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(numeric(1), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	require.NoError(t, c.SelectOption("4.5"))
	answer, ok := c.Answer(1)
	require.True(t, ok)
	assert.Equal(t, "4.5", answer)
	require.NoError(t, c.ClearResponse())

	// Assert
	_, ok = c.Answer(1)
	assert.False(t, ok)
	assert.Equal(t, entity.StatusNotAnswered, c.Status(1))
}

func TestPressKey_Keypad(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(numeric(1), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act: два десятичных разделителя
	require.NoError(t, c.PressKey('1'))
	require.NoError(t, c.PressKey(KeyDecimal))
	assert.ErrorIs(t, c.PressKey(KeyDecimal), ErrDuplicateDecimal)

	// Assert
	answer, _ := c.Answer(1)
	assert.Equal(t, "1.", answer, "В ответе ровно один разделитель")

	// Act: ввод длиннее 8 символов
	for _, k := range "2345678" {
		_ = c.PressKey(Key(k))
	}
	answer, _ = c.Answer(1)
	assert.Equal(t, "1.234567", answer)
	assert.Len(t, answer, DefaultNumericMaxLength, "Символы после 8-го игнорируются")

	// Act: стирание до пустой строки удаляет запись
	for i := 0; i < 10; i++ {
		require.NoError(t, c.PressKey(KeyBackspace))
	}
	_, ok := c.Answer(1)
	assert.False(t, ok)
}

func TestPressKey_RejectedOnOptionQuestion(t *testing.T) {
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	c := newTestController(t, src, new(MockAnswerSink), nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, c.PressKey('5'), ErrNotNumeric)
}

func TestJumpTo(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A"), nil).Once()
	sink := new(MockAnswerSink)
	c := newTestController(t, src, sink, nil)
	for i := 0; i < 2; i++ {
		_, err := c.FetchNext(context.Background())
		require.NoError(t, err)
	}
	require.NoError(t, c.SelectOption("A"))

	// Act & Assert: за пределами полученных вопросов
	assert.ErrorIs(t, c.JumpTo(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.JumpTo(-1), ErrIndexOutOfRange)
	assert.Equal(t, 1, c.State().ActiveIndex, "Индекс не меняется при отказе")

	// Act & Assert: допустимый переход ничего не сохраняет
	require.NoError(t, c.JumpTo(0))
	assert.Equal(t, 0, c.State().ActiveIndex)
	assert.Equal(t, entity.StatusNotAnswered, c.Status(2), "Переход по палитре не сохраняет ответ")
	c.WaitSubmissions()
	sink.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatus_UnknownQuestionIsNotVisited(t *testing.T) {
	c := newTestController(t, new(MockQuestionSource), new(MockAnswerSink), nil)
	assert.Equal(t, entity.StatusNotVisited, c.Status(999))
}

// ============================================================================
// Таймер
// ============================================================================

func TestTick_TerminatesExactlyOnce(t *testing.T) {
	// Arrange
	var timeouts int32
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	sink := new(MockAnswerSink)
	c, err := NewController(Params{AttemptID: testAttemptID, DurationSeconds: 3}, DefaultConfig(), &Dependencies{
		Questions: src,
		Answers:   sink,
		OnTimeout: func(State) { atomic.AddInt32(&timeouts, 1) },
	})
	require.NoError(t, err)
	_, err = c.FetchNext(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SelectOption("A"))

	// Act
	assert.True(t, c.Tick())
	assert.True(t, c.Tick())
	assert.False(t, c.Tick(), "Третий тик завершает сессию")
	assert.False(t, c.Tick())
	assert.False(t, c.Tick())

	// Assert
	assert.Equal(t, int32(1), atomic.LoadInt32(&timeouts))
	assert.Equal(t, 0, c.RemainingSeconds())
	assert.True(t, c.State().Terminated)
	assert.ErrorIs(t, c.SaveAndAdvance(context.Background()), ErrTimeExpired)
	c.WaitSubmissions()
	sink.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything)
}

func TestTick_FlushPendingOnTimeout(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A", "B"), nil).Once()
	sink := new(MockAnswerSink)
	sink.On("SubmitAnswer", mock.Anything, uint(0), submissionFor(1, "B")).Return(&entity.AnswerFeedback{}, nil).Once()
	cfg := DefaultConfig()
	cfg.FlushPendingOnTimeout = true
	c, err := NewController(Params{AttemptID: testAttemptID, DurationSeconds: 1}, cfg, &Dependencies{Questions: src, Answers: sink})
	require.NoError(t, err)
	_, err = c.FetchNext(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SelectOption("B"))

	// Act
	c.Tick()
	c.Tick()
	c.WaitSubmissions()

	// Assert
	sink.AssertNumberOfCalls(t, "SubmitAnswer", 1)
}

func TestTick_AccountsTimeToActiveQuestion(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A"), nil).Once()
	sink := new(MockAnswerSink)
	sink.On("SubmitAnswer", mock.Anything, uint(7), mock.MatchedBy(func(s entity.AnswerSubmission) bool {
		return s.QuestionID == 1 && s.TimeTaken == 2
	})).Return(&entity.AnswerFeedback{}, nil).Once()
	c := newTestController(t, src, sink, nil)
	_, err := c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	c.Tick()
	c.Tick()
	require.NoError(t, c.SelectOption("A"))
	require.NoError(t, c.SaveAndAdvance(context.Background()))
	c.WaitSubmissions()

	// Assert
	sink.AssertExpectations(t)
}

func TestTimer_RunStopsAfterTermination(t *testing.T) {
	// Arrange
	var timeouts int32
	c, err := NewController(Params{AttemptID: testAttemptID, DurationSeconds: 2}, DefaultConfig(), &Dependencies{
		Questions: new(MockQuestionSource),
		Answers:   new(MockAnswerSink),
		OnTimeout: func(State) { atomic.AddInt32(&timeouts, 1) },
	})
	require.NoError(t, err)
	ticks := make(chan time.Time)
	timer := NewTimer(c, time.Second)

	// Act
	go timer.Run(context.Background(), ticks)
	ticks <- time.Now()
	ticks <- time.Now()

	// Assert
	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("таймер должен остановиться сам после завершения сессии")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&timeouts))
}

func TestTimer_StopOnClose(t *testing.T) {
	// Arrange
	c := newTestController(t, new(MockQuestionSource), new(MockAnswerSink), func(cfg *Config) {
		cfg.TickInterval = time.Hour
	})
	timer := c.StartTimer(context.Background())

	// Act
	c.Close()

	// Assert
	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("Close должен останавливать таймер")
	}
	assert.Same(t, timer, c.StartTimer(context.Background()), "Повторный запуск возвращает тот же таймер")
	assert.ErrorIs(t, c.JumpTo(0), ErrSessionClosed)
}

// ============================================================================
// Палитра и схема оценивания
// ============================================================================

func TestSummaryAndPalette(t *testing.T) {
	// Arrange
	src := new(MockQuestionSource)
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(1, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(2, "A"), nil).Once()
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(mcq(3, "A"), nil).Once()
	c, err := NewController(Params{AttemptID: testAttemptID, PlannedQuestions: 5}, DefaultConfig(), &Dependencies{
		Questions: src,
		Answers:   new(MockAnswerSink),
	})
	require.NoError(t, err)
	_, err = c.FetchNext(context.Background())
	require.NoError(t, err)

	// Act
	require.NoError(t, c.MarkForReview(context.Background()))
	require.NoError(t, c.SaveAndAdvance(context.Background()))

	// Assert
	summary := c.Summary()
	assert.Equal(t, 1, summary[entity.StatusMarkedForReview])
	assert.Equal(t, 2, summary[entity.StatusNotAnswered])
	assert.Equal(t, 2, summary[entity.StatusNotVisited], "Неполученные вопросы считаются непосещёнными")

	palette := c.Palette()
	require.Len(t, palette, 3)
	assert.True(t, palette[2].Active)
	assert.Equal(t, entity.StatusMarkedForReview, palette[0].Status)
}

func TestMarkingScheme_PrefersQuestionLabel(t *testing.T) {
	src := new(MockQuestionSource)
	q := mcq(1, "A")
	q.ExamName = "NEET UG"
	src.On("NextQuestion", mock.Anything, testAttemptID).Return(q, nil).Once()
	c, err := NewController(Params{AttemptID: testAttemptID, ExamName: "CLAT"}, nil, &Dependencies{
		Questions: src,
		Answers:   new(MockAnswerSink),
	})
	require.NoError(t, err)

	assert.Equal(t, -0.25, c.MarkingScheme().Incorrect, "До первого вопроса используется метка попытки")

	_, err = c.FetchNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.0, c.MarkingScheme().Correct)
}
