package scheduler

import (
	"sort"
	"time"

	"vocabox/internal/domain"
	"vocabox/internal/vocab"

	"go.uber.org/zap"
)

// Intervals holds review delays in days. Intervals[b] is the wait after a
// correct answer given from box b; Intervals[0] is the wait after a miss.
// Indexing by the box before the answer, not the one after, is what makes a
// word promoted from box 1 to 2 come back after one day.
var Intervals = [domain.MaxBox + 1]int{0, 1, 2, 4, 7, 14}

// NextInterval returns the delay before the next review of a word answered from box
func NextInterval(box int, correct bool) time.Duration {
	if !correct || !domain.ValidBox(box) {
		return 0
	}
	return time.Duration(Intervals[box]) * 24 * time.Hour
}

// Scheduler moves words between Leitner boxes and selects due words
type Scheduler struct {
	store  *vocab.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a scheduler over store. A nil clock means time.Now.
func New(store *vocab.Store, logger *zap.Logger, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		store:  store,
		logger: logger,
		now:    now,
	}
}

// Now returns the scheduler's current time
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Apply returns rec after one answered review at now
func Apply(rec domain.WordRecord, correct bool, now time.Time) domain.WordRecord {
	delay := NextInterval(rec.Box, correct)
	if correct {
		rec.Box = min(rec.Box+1, domain.MaxBox)
		rec.TimesCorrect++
	} else {
		rec.Box = domain.MinBox
		rec.TimesWrong++
	}
	// box may still be out of range if it started below zero
	if !domain.ValidBox(rec.Box) {
		rec.Box = domain.MinBox
	}
	rec.NextReview = now.Add(delay)
	seen := now
	rec.LastSeen = &seen
	return rec
}

// UpdateWord applies an answered review to the word.
// Returns nil if the word is unknown.
func (s *Scheduler) UpdateWord(id string, correct bool) *domain.WordRecord {
	rec := s.store.GetWord(id)
	if rec == nil {
		s.logger.Debug("Review for unknown word ignored", zap.String("word_id", id))
		return nil
	}

	if !domain.ValidBox(rec.Box) {
		s.logger.DPanic("Word box out of range",
			zap.String("word_id", id),
			zap.Int("box", rec.Box),
		)
	}

	updated := Apply(*rec, correct, s.now())
	s.store.Put(updated)

	s.logger.Debug("Word reviewed",
		zap.String("word_id", id),
		zap.Bool("correct", correct),
		zap.Int("from_box", rec.Box),
		zap.Int("to_box", updated.Box),
		zap.Time("next_review", updated.NextReview),
	)

	return &updated
}

// GetDueWords returns up to limit due words, lowest box first and then
// stalest review first. A limit of zero or less returns every due word.
func (s *Scheduler) GetDueWords(limit int) []domain.WordRecord {
	now := s.now()

	var due []domain.WordRecord
	for _, w := range s.store.Values() {
		if w.IsDue(now) {
			due = append(due, w)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if a.Box != b.Box {
			return a.Box < b.Box
		}
		if !a.NextReview.Equal(b.NextReview) {
			return a.NextReview.Before(b.NextReview)
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// GetDueCount returns the number of due words
func (s *Scheduler) GetDueCount() int {
	now := s.now()
	count := 0
	for _, w := range s.store.Values() {
		if w.IsDue(now) {
			count++
		}
	}
	return count
}
