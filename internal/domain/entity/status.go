package entity

// QuestionStatus — состояние вопроса в палитре экзамена
type QuestionStatus string

// Константы статусов вопроса
const (
	StatusNotVisited                 QuestionStatus = "not_visited"
	StatusNotAnswered                QuestionStatus = "not_answered"
	StatusAnswered                   QuestionStatus = "answered"
	StatusMarkedForReview            QuestionStatus = "marked_for_review"
	StatusAnsweredAndMarkedForReview QuestionStatus = "answered_and_marked_for_review"
)

// AllStatuses перечисляет статусы в порядке легенды палитры
var AllStatuses = []QuestionStatus{
	StatusNotVisited,
	StatusNotAnswered,
	StatusAnswered,
	StatusMarkedForReview,
	StatusAnsweredAndMarkedForReview,
}

// IsAnswered возвращает true, если ответ по вопросу учитывается при оценке
func (s QuestionStatus) IsAnswered() bool {
	return s == StatusAnswered || s == StatusAnsweredAndMarkedForReview
}

// IsMarked возвращает true для вопросов, отмеченных для пересмотра
func (s QuestionStatus) IsMarked() bool {
	return s == StatusMarkedForReview || s == StatusAnsweredAndMarkedForReview
}
