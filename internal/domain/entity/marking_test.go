package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMarkingScheme(t *testing.T) {
	testCases := []struct {
		label     string
		correct   float64
		incorrect float64
	}{
		{"JEE Main 2024", 4, -1},
		{"jee advanced", 3, -1},
		{"SRMJEEE", 1, 0},
		{"NEET UG", 4, -1},
		{"BITSAT", 3, -1},
		{"CUET UG", 5, -1},
		{"CLAT UG", 1, -0.25},
		{"Unknown Olympiad", 1, 0},
		{"", 1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			scheme := ResolveMarkingScheme(tc.label)
			assert.Equal(t, tc.correct, scheme.Correct)
			assert.Equal(t, tc.incorrect, scheme.Incorrect)
		})
	}
}

func TestMarkingScheme_Score(t *testing.T) {
	scheme := ResolveMarkingScheme("NEET")

	assert.Equal(t, 36.0, scheme.Score(10, 4), "10*4 - 4*1 = 36")
	assert.Equal(t, 0.0, DefaultMarkingScheme.Score(0, 7), "Без отрицательных баллов неверные ответы не штрафуются")
}

func TestQuestionStatus_Flags(t *testing.T) {
	assert.True(t, StatusAnswered.IsAnswered())
	assert.True(t, StatusAnsweredAndMarkedForReview.IsAnswered())
	assert.False(t, StatusMarkedForReview.IsAnswered())
	assert.True(t, StatusMarkedForReview.IsMarked())
	assert.False(t, StatusNotAnswered.IsMarked())
}
