package mastery

import (
	"errors"
	"math"
	"strings"

	"vocabox/internal/domain"
	"vocabox/internal/scheduler"
	"vocabox/internal/vocab"

	"go.uber.org/zap"
)

// DefaultMinBox is the lowest box counted as mastered by category queries
const DefaultMinBox = 4

// MinReviewWords is the number of due words needed to start a review session
const MinReviewWords = 4

// Weights is the contribution of a word in each box to the mastery percentage,
// indexed by box. Box 5 reads 0.8; the 1.0 entry is never reached.
var Weights = [domain.MaxBox + 2]float64{0, 0, 0.2, 0.4, 0.6, 0.8, 1.0}

var (
	ErrInvalidCategory = errors.New("category must not be empty")
	ErrInvalidMinBox   = errors.New("min box out of range")
)

// Aggregator computes read-only statistics over a learner's words
type Aggregator struct {
	store  *vocab.Store
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// New creates an aggregator
func New(store *vocab.Store, sched *scheduler.Scheduler, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		sched:  sched,
		logger: logger,
	}
}

// Histogram counts words per box. Index 0 is unused.
func (a *Aggregator) Histogram() [domain.MaxBox + 1]int {
	var hist [domain.MaxBox + 1]int
	for _, w := range a.store.Values() {
		if !domain.ValidBox(w.Box) {
			a.logger.DPanic("Word box out of range",
				zap.String("word_id", w.ID),
				zap.Int("box", w.Box),
			)
			continue
		}
		hist[w.Box]++
	}
	return hist
}

// Breakdown names the box histogram
func (a *Aggregator) Breakdown() domain.Breakdown {
	return breakdown(a.Histogram())
}

// MasteryPercent returns the weighted mastery of all words, 0 to 100.
// Words with a box out of range are left out of both sides of the ratio.
func (a *Aggregator) MasteryPercent() int {
	return masteryPercent(a.Histogram())
}

// GetStats summarises the learner's vocabulary
func (a *Aggregator) GetStats() domain.Stats {
	hist := a.Histogram()
	total := a.store.Len()

	return domain.Stats{
		TotalWords:     total,
		DueForReview:   a.sched.GetDueCount(),
		MasteryPercent: masteryPercent(hist),
		Breakdown:      breakdown(hist),
	}
}

// MasteredCountByCategory counts words of category at or above minBox
func (a *Aggregator) MasteredCountByCategory(category string, minBox int) (domain.CategoryMastery, error) {
	if strings.TrimSpace(category) == "" {
		return domain.CategoryMastery{}, ErrInvalidCategory
	}
	if !domain.ValidBox(minBox) {
		return domain.CategoryMastery{}, ErrInvalidMinBox
	}

	var cm domain.CategoryMastery
	for _, w := range a.store.Values() {
		if w.Category != category {
			continue
		}
		cm.Total++
		if w.Box >= minBox {
			cm.Mastered++
		}
	}
	return cm, nil
}

// AllCategoryMastery counts mastered words of every category.
// Words without a category are left out.
func (a *Aggregator) AllCategoryMastery(minBox int) (map[string]domain.CategoryMastery, error) {
	if !domain.ValidBox(minBox) {
		return nil, ErrInvalidMinBox
	}

	result := make(map[string]domain.CategoryMastery)
	for _, w := range a.store.Values() {
		if w.Category == "" {
			continue
		}
		cm := result[w.Category]
		cm.Total++
		if w.Box >= minBox {
			cm.Mastered++
		}
		result[w.Category] = cm
	}
	return result, nil
}

// CanReview reports whether enough words are due to start a session.
// minWords <= 0 means MinReviewWords.
func (a *Aggregator) CanReview(minWords int) bool {
	if minWords <= 0 {
		minWords = MinReviewWords
	}
	return a.sched.GetDueCount() >= minWords
}

func breakdown(hist [domain.MaxBox + 1]int) domain.Breakdown {
	return domain.Breakdown{
		Learning:  hist[1],
		Familiar:  hist[2],
		Practiced: hist[3],
		Known:     hist[4],
		Mastered:  hist[5],
	}
}

func masteryPercent(hist [domain.MaxBox + 1]int) int {
	var score float64
	total := 0
	for box := domain.MinBox; box <= domain.MaxBox; box++ {
		score += float64(hist[box]) * Weights[box]
		total += hist[box]
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(score / float64(total) * 100))
}
