package handler

import (
	"testing"

	"vocabox/internal/domain"
	"vocabox/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerData(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    answerRef
		expectError bool
	}{
		{name: "valid", input: "ans_77_3_1", expected: answerRef{Session: 77, Question: 3, Option: 1}},
		{name: "surrounding whitespace", input: " ans_9_0_2 ", expected: answerRef{Session: 9, Question: 0, Option: 2}},
		{name: "largest session", input: "ans_4294967295_1_0", expected: answerRef{Session: 4294967295, Question: 1}},
		{name: "wrong prefix", input: "page_1_2_3", expectError: true},
		{name: "no session", input: "ans_1_2", expectError: true},
		{name: "zero session", input: "ans_0_1_2", expectError: true},
		{name: "session overflows", input: "ans_4294967296_1_2", expectError: true},
		{name: "not a number", input: "ans_5_x_1", expectError: true},
		{name: "negative option", input: "ans_5_1_-1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := parseAnswerData(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, errBadAnswerData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestAnswerRefRoundTrip(t *testing.T) {
	ref := answerRef{Session: 123456, Question: 7, Option: 3}

	parsed, err := parseAnswerData(ref.String())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestAnswerRefMatches(t *testing.T) {
	current := review.Position{Session: 42, Answered: 2, Total: 4}

	tests := []struct {
		name     string
		ref      answerRef
		pos      review.Position
		expected bool
	}{
		{name: "question on screen", ref: answerRef{Session: 42, Question: 2, Option: 1}, pos: current, expected: true},
		{name: "already graded question", ref: answerRef{Session: 42, Question: 1, Option: 1}, pos: current},
		{name: "same index in an older session", ref: answerRef{Session: 41, Question: 2, Option: 1}, pos: current},
		{name: "no session running", ref: answerRef{Session: 42, Question: 0}, pos: review.Position{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.matches(tt.pos))
		})
	}
}

func TestQuestionMarkup(t *testing.T) {
	q := &review.Question{
		Prompt:        "cat",
		Options:       []string{"кот", "собака", "дом", "лес"},
		CorrectAnswer: "кот",
	}

	markup := questionMarkup(q, review.Position{Session: 42, Answered: 2, Total: 4})

	require.Len(t, markup.InlineKeyboard, 5)
	assert.Equal(t, "кот", markup.InlineKeyboard[0][0].Text)
	assert.Contains(t, markup.InlineKeyboard[3][0].Data, "ans_42_2_3")
	assert.Equal(t, btnAbandon.Text, markup.InlineKeyboard[4][0].Text)

	ref, err := parseAnswerData(cleanCallbackData(markup.InlineKeyboard[1][0].Data))
	require.NoError(t, err)
	assert.Equal(t, answerRef{Session: 42, Question: 2, Option: 1}, ref)
}

func TestFormatQuestion(t *testing.T) {
	translate := &review.Question{Direction: review.DirectionTranslate, Prompt: "cat"}
	recall := &review.Question{Direction: review.DirectionRecall, Prompt: "кот"}

	assert.Equal(t, "🧠 Вопрос 1 из 6\n\nЧто значит «cat»?", formatQuestion(translate, 0, 6, ""))
	assert.Equal(t, "✅ Верно!\n\n🧠 Вопрос 2 из 6\n\nКак будет «кот»?", formatQuestion(recall, 1, 6, "✅ Верно!"))
}

func TestFormatSummary(t *testing.T) {
	perfect := formatSummary(review.Summary{Total: 4, CorrectCount: 4, Accuracy: 100, Perfect: true, XP: 35})
	assert.Contains(t, perfect, "4 из 4 (100%)")
	assert.Contains(t, perfect, "+35 XP")
	assert.Contains(t, perfect, "Без единой ошибки")

	partial := formatSummary(review.Summary{Total: 6, CorrectCount: 4, Accuracy: 66.67, XP: 20})
	assert.Contains(t, partial, "4 из 6 (67%)")
	assert.NotContains(t, partial, "Без единой ошибки")
}

func TestFormatStats(t *testing.T) {
	text := formatStats(domain.Stats{
		TotalWords:     10,
		DueForReview:   4,
		MasteryPercent: 40,
		Breakdown:      domain.Breakdown{Learning: 2, Familiar: 2, Practiced: 2, Known: 2, Mastered: 2},
	})

	assert.Contains(t, text, "Всего слов: 10")
	assert.Contains(t, text, "Ждут повторения: 4")
	assert.Contains(t, text, "Освоено: 40%")
	assert.Contains(t, text, "5 Выучено: 2")
}
