package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWordID(t *testing.T) {
	tests := []struct {
		name  string
		a, b  [2]string
		equal bool
	}{
		{
			name:  "same pair",
			a:     [2]string{"chat", "cat"},
			b:     [2]string{"chat", "cat"},
			equal: true,
		},
		{
			name:  "case and spaces ignored",
			a:     [2]string{"Chat ", "cat"},
			b:     [2]string{"chat", " CAT"},
			equal: true,
		},
		{
			name:  "different translation",
			a:     [2]string{"chat", "cat"},
			b:     [2]string{"chat", "chat"},
			equal: false,
		},
		{
			name:  "fields are not concatenated",
			a:     [2]string{"ab", "c"},
			b:     [2]string{"a", "bc"},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idA := WordID(tt.a[0], tt.a[1])
			idB := WordID(tt.b[0], tt.b[1])
			assert.Equal(t, tt.equal, idA == idB)
			assert.Len(t, idA, 36)
		})
	}
}

func TestWordRecord_IsDue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, WordRecord{NextReview: now}.IsDue(now))
	assert.True(t, WordRecord{NextReview: now.Add(-time.Second)}.IsDue(now))
	assert.False(t, WordRecord{NextReview: now.Add(time.Second)}.IsDue(now))
}

func TestValidBox(t *testing.T) {
	assert.False(t, ValidBox(0))
	assert.True(t, ValidBox(1))
	assert.True(t, ValidBox(5))
	assert.False(t, ValidBox(6))
}
