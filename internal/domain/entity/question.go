package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		// pgx может отдавать jsonb строкой
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// numericEpsilon — допуск при сравнении числовых ответов
const numericEpsilon = 1e-6

// Question представляет вопрос экзамена.
// Пустой список Options означает вопрос с числовым ответом (ввод с клавиатуры).
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ExamName      string      `gorm:"size:100;index" json:"exam_name,omitempty"`
	SubjectID     uint        `gorm:"index" json:"subject_id,omitempty"`
	Topic         string      `gorm:"size:200;index" json:"topic,omitempty"`
	Difficulty    float64     `gorm:"not null;default:0.5" json:"difficulty"`
	Content       string      `gorm:"not null" json:"content"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string      `gorm:"size:255;not null" json:"-"` // Скрыто от клиента
	Explanation   string      `json:"-"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsNumeric возвращает true для вопросов без вариантов ответа
func (q *Question) IsNumeric() bool {
	return len(q.Options) == 0
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// HasOption проверяет, что текст входит в список вариантов
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// IsCorrect проверяет ответ пользователя.
// Для числовых вопросов ответы сравниваются как числа ("4.50" == "4.5").
func (q *Question) IsCorrect(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if !q.IsNumeric() {
		return answer == strings.TrimSpace(q.CorrectAnswer)
	}

	got, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(q.CorrectAnswer), 64)
	if err != nil {
		return false
	}
	return math.Abs(got-want) < numericEpsilon
}
