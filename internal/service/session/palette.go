package session

import (
	"github.com/yourusername/examprep/internal/domain/entity"
)

// Palette возвращает ячейки палитры для всех полученных вопросов
func (c *Controller) Palette() []PaletteEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]PaletteEntry, 0, len(c.questions))
	for i, q := range c.questions {
		status, ok := c.statuses[q.ID]
		if !ok {
			status = entity.StatusNotVisited
		}
		entries = append(entries, PaletteEntry{
			Index:      i,
			QuestionID: q.ID,
			Status:     status,
			Active:     i == c.active,
		})
	}
	return entries
}

// Summary считает вопросы по статусам для легенды палитры.
// Ещё не полученные вопросы (до PlannedQuestions) считаются not_visited.
func (c *Controller) Summary() map[entity.QuestionStatus]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := make(map[entity.QuestionStatus]int, len(entity.AllStatuses))
	for _, s := range entity.AllStatuses {
		summary[s] = 0
	}
	for _, q := range c.questions {
		status, ok := c.statuses[q.ID]
		if !ok {
			status = entity.StatusNotVisited
		}
		summary[status]++
	}
	if unseen := c.params.PlannedQuestions - len(c.questions); unseen > 0 && !c.exhausted {
		summary[entity.StatusNotVisited] += unseen
	}
	return summary
}
