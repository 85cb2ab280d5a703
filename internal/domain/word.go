package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Leitner box bounds
const (
	MinBox = 1
	MaxBox = 5
)

// wordNamespace seeds the name-based word ids
var wordNamespace = uuid.MustParse("6f1c7a52-4f5e-4c8e-9a43-2d1f0b7c9e11")

// WordRecord is the retention state of one word-translation pair
type WordRecord struct {
	ID           string     `json:"id"`
	Word         string     `json:"word"`
	Translation  string     `json:"translation"`
	Category     string     `json:"category,omitempty"`
	Zone         string     `json:"zone,omitempty"`
	Box          int        `json:"box"`
	NextReview   time.Time  `json:"nextReview"`
	TimesCorrect int        `json:"timesCorrect"`
	TimesWrong   int        `json:"timesWrong"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
	DateAdded    time.Time  `json:"dateAdded"`
}

// WordData is the payload of a "word learned" event
type WordData struct {
	Word        string
	Translation string
	Category    string
	Zone        string
}

// IsDue reports whether the word should be reviewed at now
func (w WordRecord) IsDue(now time.Time) bool {
	return !w.NextReview.After(now)
}

// ValidBox reports whether box lies in the Leitner range
func ValidBox(box int) bool {
	return box >= MinBox && box <= MaxBox
}

// WordID derives the stable identity of a word-translation pair.
// Case and surrounding whitespace are ignored.
func WordID(word, translation string) string {
	key := normalize(word) + "\x00" + normalize(translation)
	return uuid.NewSHA1(wordNamespace, []byte(key)).String()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
