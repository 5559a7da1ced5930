package session

import "errors"

var (
	// ErrExamComplete — источник вопросов исчерпан, слой отображения должен завершить сессию
	ErrExamComplete = errors.New("exam complete: no more questions")
	// ErrSessionClosed — сессия закрыта, результат операции отброшен
	ErrSessionClosed = errors.New("session is closed")
	// ErrTimeExpired — время экзамена истекло
	ErrTimeExpired = errors.New("exam time has expired")
	// ErrFetchInProgress — уже есть незавершённый запрос следующего вопроса
	ErrFetchInProgress = errors.New("question fetch already in progress")

	ErrNoActiveQuestion = errors.New("no active question")
	ErrIndexOutOfRange  = errors.New("question index out of range")
	ErrInvalidOption    = errors.New("option does not belong to the active question")
	ErrNotNumeric       = errors.New("active question is not a numeric-entry question")
	ErrInvalidNumeric   = errors.New("invalid numeric answer")

	// Ошибки виртуальной клавиатуры
	ErrInvalidKey       = errors.New("invalid keypad key")
	ErrInputTooLong     = errors.New("numeric answer is too long")
	ErrDuplicateDecimal = errors.New("numeric answer already has a decimal separator")
)
