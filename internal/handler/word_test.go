package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCategory(t *testing.T) {
	tests := []struct {
		name                string
		input               string
		expectedTranslation string
		expectedCategory    string
	}{
		{
			name:                "no tag",
			input:               "кошка",
			expectedTranslation: "кошка",
		},
		{
			name:                "tag after translation",
			input:               "кошка #animals",
			expectedTranslation: "кошка",
			expectedCategory:    "animals",
		},
		{
			name:                "tag is lowercased",
			input:               "дерево #Nature",
			expectedTranslation: "дерево",
			expectedCategory:    "nature",
		},
		{
			name:                "empty tag is kept as text",
			input:               "номер #",
			expectedTranslation: "номер #",
		},
		{
			name:                "hash inside a phrase is kept as text",
			input:               "C# developer",
			expectedTranslation: "C# developer",
		},
		{
			name:                "only the last tag counts",
			input:               "a #b #food",
			expectedTranslation: "a #b",
			expectedCategory:    "food",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translation, category := splitCategory(tt.input)
			assert.Equal(t, tt.expectedTranslation, translation)
			assert.Equal(t, tt.expectedCategory, category)
		})
	}
}
