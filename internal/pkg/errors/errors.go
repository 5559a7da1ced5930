package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, ответ в уже завершённую попытку).
	ErrConflict = errors.New("resource state conflict")

	// ErrRateLimited используется, когда клиент превысил лимит запросов.
	ErrRateLimited = errors.New("rate limit exceeded")
)
