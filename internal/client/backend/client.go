// Package backend — HTTP-клиент сервера экзаменов.
// Реализует интерфейсы repository.QuestionSource, repository.AnswerSink,
// repository.AttemptStarter и repository.AttemptFinisher.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
)

// maxErrorBody — сколько байт тела ошибки попадает в сообщение
const maxErrorBody = 512

// APIError — неуспешный ответ сервера
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Config содержит настройки клиента
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client ходит в сервер экзаменов по HTTP
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New создает клиент. BaseURL обязателен.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", cfg.BaseURL, err)
	}
	h := &http.Client{}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{baseURL: u, http: h}, nil
}

// NextQuestion запрашивает следующий вопрос попытки.
// 404 означает, что вопросы закончились: возвращается repository.ErrNoMoreQuestions.
func (c *Client) NextQuestion(ctx context.Context, attemptID string) (*entity.Question, error) {
	endpoint := c.endpoint("/quiz/"+url.PathEscape(attemptID)+"/next", nil)

	var question entity.Question
	status, err := c.do(ctx, http.MethodGet, endpoint, nil, &question, "next question")
	if status == http.StatusNotFound {
		return nil, repository.ErrNoMoreQuestions
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// SubmitAnswer отправляет ответ пользователя
func (c *Client) SubmitAnswer(ctx context.Context, userID uint, submission entity.AnswerSubmission) (*entity.AnswerFeedback, error) {
	endpoint := c.endpoint("/quiz/submit", userQuery(userID))

	var feedback entity.AnswerFeedback
	if _, err := c.do(ctx, http.MethodPost, endpoint, submission, &feedback, "submit answer"); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// StartAttempt создаёт новую попытку на сервере
func (c *Client) StartAttempt(ctx context.Context, userID uint, req repository.StartAttemptRequest) (*repository.StartAttemptResponse, error) {
	endpoint := c.endpoint("/quiz/start", userQuery(userID))

	var resp repository.StartAttemptResponse
	if _, err := c.do(ctx, http.MethodPost, endpoint, req, &resp, "start attempt"); err != nil {
		return nil, err
	}
	if resp.AttemptID == "" {
		return nil, errors.New("start attempt: server returned empty attempt id")
	}
	log.Printf("[BackendClient] Попытка %s создана (длительность %d сек.)", resp.AttemptID, resp.DurationSeconds)
	return &resp, nil
}

// FinishAttempt сообщает серверу, что пользователь завершил попытку
func (c *Client) FinishAttempt(ctx context.Context, userID uint, attemptID string) error {
	endpoint := c.endpoint("/quiz/"+url.PathEscape(attemptID)+"/finish", userQuery(userID))
	if _, err := c.do(ctx, http.MethodPost, endpoint, nil, nil, "finish attempt"); err != nil {
		return err
	}
	return nil
}

func userQuery(userID uint) url.Values {
	q := url.Values{}
	q.Set("user_id", strconv.FormatUint(uint64(userID), 10))
	return q
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do выполняет запрос и декодирует 2xx-ответ в out.
// Возвращает код ответа (0, если запрос не дошёл до сервера).
func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}, op string) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return res.StatusCode, &APIError{Op: op, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return res.StatusCode, nil
}
