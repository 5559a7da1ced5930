package entity

import "strings"

// MarkingScheme — баллы за правильный и неправильный ответ.
// Используется только для отображения, итоговую оценку считает бэкенд.
type MarkingScheme struct {
	Exam      string  `json:"exam"`
	Correct   float64 `json:"correct"`
	Incorrect float64 `json:"incorrect"`
}

// DefaultMarkingScheme применяется, если экзамен не распознан
var DefaultMarkingScheme = MarkingScheme{Exam: "DEFAULT", Correct: 1, Incorrect: 0}

// markingSchemes проверяются по порядку, побеждает первое совпадение.
// SRMJEEE и JEE ADVANCED стоят раньше JEE, иначе их перехватит более короткая подстрока.
var markingSchemes = []MarkingScheme{
	{Exam: "JEE ADVANCED", Correct: 3, Incorrect: -1},
	{Exam: "SRMJEEE", Correct: 1, Incorrect: 0},
	{Exam: "JEE", Correct: 4, Incorrect: -1},
	{Exam: "NEET", Correct: 4, Incorrect: -1},
	{Exam: "BITSAT", Correct: 3, Incorrect: -1},
	{Exam: "VITEEE", Correct: 1, Incorrect: 0},
	{Exam: "CUET", Correct: 5, Incorrect: -1},
	{Exam: "IPMAT", Correct: 4, Incorrect: -1},
	{Exam: "CLAT", Correct: 1, Incorrect: -0.25},
	{Exam: "AILET", Correct: 1, Incorrect: -0.25},
	{Exam: "CA FOUNDATION", Correct: 1, Incorrect: -0.25},
	{Exam: "NDA", Correct: 2.5, Incorrect: -0.83},
}

// ResolveMarkingScheme подбирает схему оценивания по названию экзамена
func ResolveMarkingScheme(examName string) MarkingScheme {
	label := strings.ToUpper(strings.TrimSpace(examName))
	if label == "" {
		return DefaultMarkingScheme
	}
	for _, s := range markingSchemes {
		if strings.Contains(label, s.Exam) {
			return s
		}
	}
	return DefaultMarkingScheme
}

// Score считает балл для заданного числа правильных и неправильных ответов
func (m MarkingScheme) Score(correct, incorrect int) float64 {
	return float64(correct)*m.Correct + float64(incorrect)*m.Incorrect
}
