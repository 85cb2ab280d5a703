package handler

import (
	"testing"

	"vocabox/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "test_data",
			expected: "test_data",
		},
		{
			name:     "string with whitespace",
			input:    "  test_data  ",
			expected: "test_data",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "string with tab",
			input:    "test\tdata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name          string
		page          int
		expectedItems []string
		expectedPage  int
	}{
		{name: "first page", page: 1, expectedItems: []string{"a", "b"}, expectedPage: 1},
		{name: "last page is short", page: 3, expectedItems: []string{"e"}, expectedPage: 3},
		{name: "page past the end is clamped", page: 9, expectedItems: []string{"e"}, expectedPage: 3},
		{name: "zero page is clamped", page: 0, expectedItems: []string{"a", "b"}, expectedPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, page, totalPages := paginate(items, tt.page, 2)
			assert.Equal(t, tt.expectedItems, got)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, 3, totalPages)
		})
	}

	t.Run("empty list", func(t *testing.T) {
		got, page, totalPages := paginate(nil, 1, 2)
		assert.Empty(t, got)
		assert.Equal(t, 1, page)
		assert.Equal(t, 0, totalPages)
	})
}

func TestFormatCategories(t *testing.T) {
	byCategory := map[string]domain.CategoryMastery{
		"food":   {Mastered: 1, Total: 3},
		"nature": {Mastered: 6, Total: 10},
	}

	text := formatCategories([]string{"food", "nature"}, byCategory, 1, 1)
	assert.Contains(t, text, "food: 1/3")
	assert.Contains(t, text, "nature: 6/10")
	assert.NotContains(t, text, "Страница")

	text = formatCategories([]string{"nature"}, byCategory, 2, 3)
	assert.Contains(t, text, "Страница 2 из 3")
}
