package entity

import (
	"time"
)

// Режимы попытки
const (
	AttemptModePractice = "practice"
	AttemptModeMock     = "mock"
	AttemptModeTopic    = "topic"
)

// Attempt представляет одну попытку прохождения экзамена пользователем
type Attempt struct {
	ID              string     `gorm:"primaryKey;size:36" json:"attempt_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	ExamID          uint       `gorm:"index" json:"exam_id,omitempty"`
	SubjectID       uint       `gorm:"index" json:"subject_id,omitempty"`
	ExamName        string     `gorm:"size:100" json:"exam_name,omitempty"`
	Mode            string     `gorm:"size:20;not null;default:'practice'" json:"mode"`
	Topic           string     `gorm:"size:200" json:"topic,omitempty"`
	QuestionLimit   int        `gorm:"not null;default:30" json:"question_limit"`
	DurationSeconds int        `gorm:"not null" json:"duration_seconds"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// IsMock проверяет, является ли попытка пробным экзаменом
func (a *Attempt) IsMock() bool {
	return a.Mode == AttemptModeMock
}
