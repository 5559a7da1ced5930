package shell

import (
	"fmt"
	"strings"

	"github.com/yourusername/examprep/internal/domain/entity"
)

// Короткие обозначения статусов в палитре
var statusSymbols = map[entity.QuestionStatus]string{
	entity.StatusNotVisited:                 " ",
	entity.StatusNotAnswered:                "x",
	entity.StatusAnswered:                   "+",
	entity.StatusMarkedForReview:            "?",
	entity.StatusAnsweredAndMarkedForReview: "!",
}

var statusLabels = map[entity.QuestionStatus]string{
	entity.StatusNotVisited:                 "Not visited",
	entity.StatusNotAnswered:                "Not answered",
	entity.StatusAnswered:                   "Answered",
	entity.StatusMarkedForReview:            "Marked for review",
	entity.StatusAnsweredAndMarkedForReview: "Answered & marked",
}

// formatClock переводит секунды в ЧЧ:ММ:СС
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// formatDelta печатает балл со знаком: +4, -1, -0.25, 0
func formatDelta(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%g", v)
	}
	return fmt.Sprintf("%g", v)
}

// render рисует активный вопрос
func (s *Shell) render() {
	st := s.ctrl.State()
	q := st.ActiveQuestion()
	if q == nil {
		return
	}
	scheme := s.ctrl.MarkingScheme()
	answer, answered := st.Answers[q.ID]

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] Question %d of %d  %s  (%s %s/%s)\n",
		formatClock(st.RemainingSeconds), st.ActiveIndex+1, len(st.Questions),
		st.Statuses[q.ID], scheme.Exam, formatDelta(scheme.Correct), formatDelta(scheme.Incorrect))
	if q.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", q.Topic)
	}
	fmt.Fprintf(&b, "%s\n", q.Content)

	if q.IsNumeric() {
		value := answer
		if !answered {
			value = "_"
		}
		fmt.Fprintf(&b, "  Answer: %s\n", value)
	} else {
		for i, opt := range q.Options {
			marker := " "
			if answered && opt == answer {
				marker = "*"
			}
			fmt.Fprintf(&b, " %s %c) %s\n", marker, 'A'+i, opt)
		}
	}
	s.printf("%s", b.String())
}

// renderPalette рисует палитру и легенду со счётчиками
func (s *Shell) renderPalette() {
	var b strings.Builder
	for _, e := range s.ctrl.Palette() {
		open, closeBr := "[", "]"
		if e.Active {
			open, closeBr = "<", ">"
		}
		fmt.Fprintf(&b, "%s%d%s%s ", open, e.Index+1, statusSymbols[e.Status], closeBr)
	}
	b.WriteString("\n")
	s.printf("%s", b.String())
	s.renderCounts()
}

func (s *Shell) renderCounts() {
	summary := s.ctrl.Summary()
	var b strings.Builder
	for _, status := range entity.AllStatuses {
		fmt.Fprintf(&b, "  %s %-18s %d\n", statusSymbols[status], statusLabels[status], summary[status])
	}
	s.printf("%s", b.String())
}

// renderSummary печатает итоги после завершения сессии
func (s *Shell) renderSummary() {
	st := s.ctrl.State()
	s.printf("\nAttempt %s finished. Questions seen: %d, time left: %s\n",
		st.AttemptID, len(st.Questions), formatClock(st.RemainingSeconds))
	s.renderCounts()
}
