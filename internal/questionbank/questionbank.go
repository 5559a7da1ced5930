// Package questionbank загружает банк вопросов из файлов .xlsx и .yaml.
//
// Формат YAML:
//
//	questions:
//	  - exam_name: JEE Main
//	    subject_id: 1
//	    topic: Kinematics
//	    difficulty: 0.4
//	    content: "..."
//	    options: ["A", "B", "C", "D"]   # пусто — числовой ответ
//	    correct_answer: "B"
//	    explanation: "..."
//
// В Excel первая строка листа — заголовки с теми же именами колонок;
// варианты ответа записываются в одну ячейку через "|".
package questionbank

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/examprep/internal/domain/entity"
)

// OptionSeparator разделяет варианты ответа в ячейке Excel
const OptionSeparator = "|"

// defaultDifficulty — сложность, если она не указана
const defaultDifficulty = 0.5

// Record — вопрос в том виде, в каком он записан в файле
type Record struct {
	ExamName      string   `yaml:"exam_name"`
	SubjectID     uint     `yaml:"subject_id"`
	Topic         string   `yaml:"topic"`
	Difficulty    *float64 `yaml:"difficulty"`
	Content       string   `yaml:"content"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
}

type yamlBank struct {
	Questions []Record `yaml:"questions"`
}

// RowError — ошибка в конкретной записи файла (строки считаются с 1)
type RowError struct {
	Row     int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// LoadFile выбирает загрузчик по расширению файла
func LoadFile(path string) ([]entity.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(f, "")
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported question bank format %q (want .xlsx, .yaml or .yml)", filepath.Ext(path))
	}
}

// LoadYAML читает банк вопросов из YAML
func LoadYAML(r io.Reader) ([]entity.Question, error) {
	var bank yamlBank
	if err := yaml.NewDecoder(r).Decode(&bank); err != nil {
		if errors.Is(err, io.EOF) {
			return []entity.Question{}, nil
		}
		return nil, fmt.Errorf("decode yaml question bank: %w", err)
	}
	rowNums := make([]int, len(bank.Questions))
	for i := range rowNums {
		rowNums[i] = i + 1
	}
	return convert(bank.Questions, rowNums)
}

// LoadXLSX читает банк вопросов из листа Excel. Пустое имя — первый лист книги.
func LoadXLSX(r io.Reader, sheet string) ([]entity.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx question bank: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []entity.Question{}, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"content", "correct_answer"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("sheet %q: missing column %q", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var (
		records []Record
		rowNums []int
		errs    []error
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // строка 1 — заголовки
		if isBlank(row) {
			continue
		}
		rec := Record{
			ExamName:      cell(row, "exam_name"),
			Topic:         cell(row, "topic"),
			Content:       cell(row, "content"),
			CorrectAnswer: cell(row, "correct_answer"),
			Explanation:   cell(row, "explanation"),
		}
		if raw := cell(row, "subject_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				errs = append(errs, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid subject_id %q", raw)})
				continue
			}
			rec.SubjectID = uint(id)
		}
		if raw := cell(row, "difficulty"); raw != "" {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs = append(errs, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid difficulty %q", raw)})
				continue
			}
			rec.Difficulty = &d
		}
		if raw := cell(row, "options"); raw != "" {
			for _, o := range strings.Split(raw, OptionSeparator) {
				rec.Options = append(rec.Options, strings.TrimSpace(o))
			}
		}
		records = append(records, rec)
		rowNums = append(rowNums, rowNum)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return convert(records, rowNums)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// convert проверяет записи и превращает их в вопросы.
// rowNums[i] — номер строки файла (или записи YAML) для records[i].
func convert(records []Record, rowNums []int) ([]entity.Question, error) {
	questions := make([]entity.Question, 0, len(records))
	var errs []error
	for i, rec := range records {
		q, err := rec.toQuestion()
		if err != nil {
			errs = append(errs, &RowError{Row: rowNums[i], Message: err.Error()})
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return questions, nil
}

func (r Record) toQuestion() (entity.Question, error) {
	content := strings.TrimSpace(r.Content)
	answer := strings.TrimSpace(r.CorrectAnswer)
	if content == "" {
		return entity.Question{}, errors.New("content is empty")
	}
	if answer == "" {
		return entity.Question{}, errors.New("correct_answer is empty")
	}

	difficulty := defaultDifficulty
	if r.Difficulty != nil {
		difficulty = *r.Difficulty
	}
	if difficulty < 0 || difficulty > 1 {
		return entity.Question{}, fmt.Errorf("difficulty %.2f is outside [0, 1]", difficulty)
	}

	options := make(entity.StringArray, 0, len(r.Options))
	seen := make(map[string]bool, len(r.Options))
	for _, o := range r.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return entity.Question{}, errors.New("empty option")
		}
		if seen[o] {
			return entity.Question{}, fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
		options = append(options, o)
	}

	q := entity.Question{
		ExamName:      strings.TrimSpace(r.ExamName),
		SubjectID:     r.SubjectID,
		Topic:         strings.TrimSpace(r.Topic),
		Difficulty:    difficulty,
		Content:       content,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   strings.TrimSpace(r.Explanation),
	}
	if q.IsNumeric() {
		if _, err := strconv.ParseFloat(answer, 64); err != nil {
			return entity.Question{}, fmt.Errorf("numeric question needs a numeric correct_answer, got %q", answer)
		}
	} else if !q.HasOption(answer) {
		return entity.Question{}, fmt.Errorf("correct_answer %q is not one of the options", answer)
	}
	return q, nil
}
