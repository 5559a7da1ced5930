// Package shell — терминальный интерфейс прохождения экзамена.
// Вся логика состояния живёт в session.Controller, shell только читает команды и рисует экран.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
	"github.com/yourusername/examprep/internal/service/session"
)

// Backend — всё, что shell нужно от сервера экзаменов
type Backend interface {
	repository.QuestionSource
	repository.AnswerSink
	repository.AttemptStarter
}

// finishTimeout — таймаут завершения попытки, если в конфигурации не задан SubmitTimeout
const finishTimeout = 10 * time.Second

// Options — параметры запуска
type Options struct {
	UserID  uint
	Request repository.StartAttemptRequest
	Session *session.Config
	// Ticks подменяет часы таймера (тесты). nil — настоящий time.Ticker.
	Ticks <-chan time.Time
}

// Shell ведёт одну попытку от старта до итогов
type Shell struct {
	backend Backend
	opts    Options
	in      io.Reader

	outMu sync.Mutex
	out   io.Writer

	ctrl     *session.Controller
	practice bool
}

// New создает shell
func New(backend Backend, in io.Reader, out io.Writer, opts Options) *Shell {
	if opts.Session == nil {
		opts.Session = session.DefaultConfig()
	}
	return &Shell{
		backend:  backend,
		opts:     opts,
		in:       in,
		out:      out,
		practice: opts.Request.Mode != entity.AttemptModeMock,
	}
}

// Run создаёт попытку и обрабатывает команды, пока экзамен не закончится,
// время не истечёт, ввод не закончится или не будет отменён ctx.
func (s *Shell) Run(ctx context.Context) error {
	resp, err := s.backend.StartAttempt(ctx, s.opts.UserID, s.opts.Request)
	if err != nil {
		return fmt.Errorf("start attempt: %w", err)
	}

	examName := resp.ExamName
	if examName == "" {
		examName = s.opts.Request.ExamName
	}

	timeUp := make(chan struct{})
	var sink repository.AnswerSink = s.backend
	if s.practice {
		sink = &feedbackSink{next: s.backend, shell: s}
	}

	ctrl, err := session.NewController(session.Params{
		AttemptID:        resp.AttemptID,
		UserID:           s.opts.UserID,
		ExamName:         examName,
		DurationSeconds:  resp.DurationSeconds,
		PlannedQuestions: resp.QuestionLimit,
	}, s.opts.Session, &session.Dependencies{
		Questions: s.backend,
		Answers:   sink,
		OnTimeout: func(session.State) { close(timeUp) },
	})
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	defer s.finish(ctx)

	if _, err := ctrl.FetchNext(ctx); err != nil {
		if errors.Is(err, session.ErrExamComplete) {
			s.printf("No questions available for this exam.\n")
			return nil
		}
		return fmt.Errorf("fetch first question: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.startTimer(runCtx)
	s.printf("Attempt %s started. Type 'h' for help.\n", resp.AttemptID)
	s.render()

	lines := readLines(runCtx, s.in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeUp:
			s.printf("\nTime is up. The exam has ended.\n")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			done, err := s.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				s.printf("! %v\n", err)
			}
			if done {
				return nil
			}
		}
	}
}

// startTimer запускает обратный отсчёт. Таймер останавливается при отмене ctx
// или при закрытии контроллера.
func (s *Shell) startTimer(ctx context.Context) {
	if s.opts.Ticks == nil {
		s.ctrl.StartTimer(ctx)
		return
	}
	timer := session.NewTimer(s.ctrl, s.opts.Session.TickInterval)
	go timer.Run(ctx, s.opts.Ticks)
}

// finish закрывает сессию, дожидается отправок и печатает итоги
func (s *Shell) finish(ctx context.Context) {
	s.ctrl.Close()
	s.ctrl.WaitSubmissions()

	if finisher, ok := s.backend.(repository.AttemptFinisher); ok {
		timeout := s.opts.Session.SubmitTimeout
		if timeout <= 0 {
			timeout = finishTimeout
		}
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := finisher.FinishAttempt(finishCtx, s.opts.UserID, s.ctrl.AttemptID()); err != nil {
			log.Printf("[Shell] WARNING: Не удалось завершить попытку %s на сервере: %v", s.ctrl.AttemptID(), err)
		}
	}
	s.renderSummary()
}

// handle выполняет одну команду. done=true — сессию пора завершать.
func (s *Shell) handle(ctx context.Context, line string) (bool, error) {
	if line == "" {
		s.render()
		return false, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "n", "next":
		return s.advance(s.ctrl.SaveAndAdvance(ctx))
	case "m", "mark":
		return s.advance(s.ctrl.MarkForReview(ctx))
	case "c", "clear":
		if err := s.ctrl.ClearResponse(); err != nil {
			return false, err
		}
	case "j", "jump":
		if len(fields) != 2 {
			return false, errors.New("usage: j <question number>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("invalid question number %q", fields[1])
		}
		if err := s.ctrl.JumpTo(n - 1); err != nil {
			return false, err
		}
	case "p", "palette":
		s.renderPalette()
		return false, nil
	case "h", "help":
		s.printf("%s", helpText)
		return false, nil
	case "q", "quit", "submit":
		return true, nil
	default:
		if err := s.input(line); err != nil {
			return false, err
		}
	}
	s.render()
	return false, nil
}

// advance обрабатывает результат сохранения с переходом
func (s *Shell) advance(err error) (bool, error) {
	switch {
	case err == nil:
		s.render()
		return false, nil
	case errors.Is(err, session.ErrExamComplete):
		s.printf("No more questions. The exam is complete.\n")
		return true, nil
	case errors.Is(err, session.ErrTimeExpired), errors.Is(err, session.ErrSessionClosed):
		return true, nil
	default:
		// Ответ уже сохранён, повторить можно той же командой
		return false, fmt.Errorf("could not load the next question: %w", err)
	}
}

// input — выбор варианта (A, B, ...) или ввод с клавиатуры для числового вопроса
func (s *Shell) input(line string) error {
	if isKeypadInput(line) {
		for _, r := range line {
			key := session.Key(r)
			if r == '<' {
				key = session.KeyBackspace
			}
			if err := s.ctrl.PressKey(key); err != nil {
				return err
			}
		}
		return nil
	}

	if len(line) != 1 || line[0] < 'A' || line[0] > 'Z' {
		return fmt.Errorf("unknown command %q, type 'h' for help", line)
	}
	q, err := s.ctrl.ActiveQuestion()
	if err != nil {
		return err
	}
	idx := int(line[0] - 'A')
	if idx >= len(q.Options) {
		return fmt.Errorf("%w: %s", session.ErrInvalidOption, line)
	}
	return s.ctrl.SelectOption(q.Options[idx])
}

// isKeypadInput — строка из цифр, точки и '<' (backspace)
func isKeypadInput(line string) bool {
	for _, r := range line {
		if (r < '0' || r > '9') && r != '.' && r != '<' {
			return false
		}
	}
	return line != ""
}

func (s *Shell) printf(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// readLines читает ввод построчно в отдельной горутине,
// чтобы главный цикл мог реагировать на таймер.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// feedbackSink печатает разбор ответа в режиме практики.
// Контроллер результат не использует, он только для пользователя.
type feedbackSink struct {
	next  repository.AnswerSink
	shell *Shell
}

func (f *feedbackSink) SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error) {
	fb, err := f.next.SubmitAnswer(ctx, userID, submission)
	if err != nil || fb == nil {
		return fb, err
	}
	verdict := "incorrect"
	if fb.Correct {
		verdict = "correct"
	}
	line := fmt.Sprintf("[practice] Q#%d: %s", submission.QuestionID, verdict)
	if !fb.Correct && fb.CorrectAnswer != "" {
		line += fmt.Sprintf(" (answer: %s)", fb.CorrectAnswer)
	}
	if fb.Feedback != "" {
		line += " - " + fb.Feedback
	}
	f.shell.printf("%s\n", line)
	return fb, nil
}

const helpText = `Commands:
  A, B, C ...   select an option
  0-9 . <       type a numeric answer (< is backspace)
  n             save and next
  m             mark for review and next
  c             clear response
  j N           jump to question N
  p             show the question palette
  q             finish the exam
`
