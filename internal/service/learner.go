package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vocabox/internal/domain"
	"vocabox/internal/mastery"
	"vocabox/internal/repository"
	"vocabox/internal/review"
	"vocabox/internal/scheduler"
	"vocabox/internal/vocab"

	"go.uber.org/zap"
)

var (
	ErrEmptyWord       = errors.New("word and translation cannot be empty")
	ErrInvalidOption   = errors.New("answer option out of range")
	ErrNoActiveSession = errors.New("no active review session")
	ErrInvalidBox      = errors.New("box out of range")
	ErrAnswerNotSaved  = errors.New("answer graded but not saved")
)

// Profile is the vocabulary and review state of one learner
type Profile struct {
	UserID    int64
	Store     *vocab.Store
	Scheduler *scheduler.Scheduler
	Mastery   *mastery.Aggregator
	Review    *review.Controller

	// words rescheduled in memory whose save failed
	unsaved map[string]struct{}
	mu      sync.Mutex
}

// LearnerService keeps learner profiles in memory and persists every change
type LearnerService struct {
	wordRepo    repository.WordRepository
	logger      *zap.Logger
	now         func() time.Time
	sessionSize int

	profiles map[int64]*Profile
	mu       sync.Mutex
}

// NewLearnerService creates a new learner service
func NewLearnerService(wordRepo repository.WordRepository, sessionSize int, logger *zap.Logger) *LearnerService {
	if sessionSize <= 0 {
		sessionSize = review.DefaultSessionSize
	}
	return &LearnerService{
		wordRepo:    wordRepo,
		logger:      logger,
		now:         time.Now,
		sessionSize: sessionSize,
		profiles:    make(map[int64]*Profile),
	}
}

// WithClock replaces the wall clock, for tests
func (s *LearnerService) WithClock(now func() time.Time) *LearnerService {
	s.now = now
	return s
}

// profile returns the user's profile, restoring it from storage on first use
func (s *LearnerService) profile(userID int64) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}

	records, err := s.wordRepo.LoadWords(userID)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}

	p := s.newProfile(userID)
	p.Store.Load(records)
	s.profiles[userID] = p

	s.logger.Info("Learner profile loaded",
		zap.Int64("user_id", userID),
		zap.Int("words", len(records)),
	)

	return p, nil
}

func (s *LearnerService) newProfile(userID int64) *Profile {
	logger := s.logger.With(zap.Int64("user_id", userID))
	store := vocab.NewStore(s.now)
	sched := scheduler.New(store, logger, s.now)
	rng := rand.New(rand.NewSource(s.now().UnixNano() ^ userID))

	return &Profile{
		UserID:    userID,
		Store:     store,
		Scheduler: sched,
		Mastery:   mastery.New(store, sched, logger),
		Review:    review.New(store, sched, logger, rng),
		unsaved:   make(map[string]struct{}),
	}
}

// withProfile runs fn while holding the user's profile lock
func (s *LearnerService) withProfile(userID int64, fn func(p *Profile) error) error {
	p, err := s.profile(userID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p)
}

// LearnWord records a word the user has just learned.
// Returns false if the pair was already tracked.
func (s *LearnerService) LearnWord(userID int64, word, translation, category string) (bool, error) {
	word = strings.TrimSpace(word)
	translation = strings.TrimSpace(translation)
	if word == "" || translation == "" {
		return false, ErrEmptyWord
	}

	var added bool
	err := s.withProfile(userID, func(p *Profile) error {
		id := domain.WordID(word, translation)
		added = p.Store.AddWord(id, domain.WordData{
			Word:        word,
			Translation: translation,
			Category:    strings.TrimSpace(category),
		})
		if !added {
			return nil
		}
		if err := s.wordRepo.SaveWord(userID, *p.Store.GetWord(id)); err != nil {
			// forget the word so a retry adds and saves it again
			p.Store.Remove(id)
			added = false
			return fmt.Errorf("save word: %w", err)
		}
		return nil
	})
	return added, err
}

// StartReview opens a review session and returns its first question
func (s *LearnerService) StartReview(userID int64) (*review.Question, error) {
	var q *review.Question
	err := s.withProfile(userID, func(p *Profile) error {
		// a stale session left by a closed chat is dropped; its answers are already committed
		if p.Review.State() != review.StateIdle {
			p.Review.AbandonSession()
		}
		s.flushUnsaved(userID, p)
		var err error
		q, err = p.Review.StartSession(s.sessionSize)
		return err
	})
	return q, err
}

// CurrentQuestion returns the question awaiting an answer, if any
func (s *LearnerService) CurrentQuestion(userID int64) (*review.Question, error) {
	var q *review.Question
	err := s.withProfile(userID, func(p *Profile) error {
		q = p.Review.Current()
		return nil
	})
	return q, err
}

// Position identifies the running review session and its progress
func (s *LearnerService) Position(userID int64) (review.Position, error) {
	var pos review.Position
	err := s.withProfile(userID, func(p *Profile) error {
		pos = p.Review.Position()
		return nil
	})
	return pos, err
}

// Answer grades the option the user picked and saves the rescheduled word at once.
// When only the save fails the graded result is still returned, together with
// ErrAnswerNotSaved; the session goes on and the word is saved again later.
func (s *LearnerService) Answer(userID int64, option int) (review.AnswerResult, error) {
	var res review.AnswerResult
	err := s.withProfile(userID, func(p *Profile) error {
		q := p.Review.Current()
		if q == nil {
			return ErrNoActiveSession
		}
		if option < 0 || option >= len(q.Options) {
			return ErrInvalidOption
		}

		var err error
		res, err = p.Review.AnswerQuestion(q.Options[option])
		if err != nil {
			return err
		}

		p.unsaved[res.WordID] = struct{}{}
		s.flushUnsaved(userID, p)
		if _, pending := p.unsaved[res.WordID]; pending {
			return ErrAnswerNotSaved
		}
		return nil
	})
	return res, err
}

// flushUnsaved saves every rescheduled word still missing from storage.
// Words that fail again stay pending.
func (s *LearnerService) flushUnsaved(userID int64, p *Profile) {
	for id := range p.unsaved {
		rec := p.Store.GetWord(id)
		if rec == nil {
			delete(p.unsaved, id)
			continue
		}
		if err := s.wordRepo.SaveWord(userID, *rec); err != nil {
			s.logger.Warn("Failed to save reviewed word",
				zap.Int64("user_id", userID),
				zap.String("word_id", id),
				zap.Error(err),
			)
			continue
		}
		delete(p.unsaved, id)
	}
}

// NextQuestion moves past the answered question.
// Returns nil once the session has no more questions.
func (s *LearnerService) NextQuestion(userID int64) (*review.Question, error) {
	var q *review.Question
	err := s.withProfile(userID, func(p *Profile) error {
		next, ok := p.Review.NextQuestion()
		if ok {
			q = next
		}
		return nil
	})
	return q, err
}

// FinishReview scores a completed session
func (s *LearnerService) FinishReview(userID int64) (review.Summary, error) {
	var summary review.Summary
	err := s.withProfile(userID, func(p *Profile) error {
		var err error
		summary, err = p.Review.CompleteSession()
		if err != nil {
			return err
		}
		s.flushUnsaved(userID, p)
		s.logger.Info("Review session finished",
			zap.Int64("user_id", userID),
			zap.Int("total", summary.Total),
			zap.Int("correct", summary.CorrectCount),
			zap.Bool("perfect", summary.Perfect),
			zap.Int("xp", summary.XP),
		)
		return nil
	})
	return summary, err
}

// AbandonReview stops the session. Answers already given stay saved.
func (s *LearnerService) AbandonReview(userID int64) ([]review.Result, error) {
	var results []review.Result
	err := s.withProfile(userID, func(p *Profile) error {
		results = p.Review.AbandonSession()
		s.flushUnsaved(userID, p)
		return nil
	})
	return results, err
}

// Stats returns the user's vocabulary summary
func (s *LearnerService) Stats(userID int64) (domain.Stats, error) {
	var stats domain.Stats
	err := s.withProfile(userID, func(p *Profile) error {
		stats = p.Mastery.GetStats()
		return nil
	})
	return stats, err
}

// CategoryMastery returns mastered counts for every category
func (s *LearnerService) CategoryMastery(userID int64, minBox int) (map[string]domain.CategoryMastery, error) {
	var result map[string]domain.CategoryMastery
	err := s.withProfile(userID, func(p *Profile) error {
		var err error
		result, err = p.Mastery.AllCategoryMastery(minBox)
		return err
	})
	return result, err
}

// CanReview reports whether enough words are due to start a session
func (s *LearnerService) CanReview(userID int64) (bool, error) {
	var ok bool
	err := s.withProfile(userID, func(p *Profile) error {
		ok = p.Mastery.CanReview(mastery.MinReviewWords)
		return nil
	})
	return ok, err
}

// DueCount returns the number of words due for the user
func (s *LearnerService) DueCount(userID int64) (int, error) {
	var count int
	err := s.withProfile(userID, func(p *Profile) error {
		count = p.Scheduler.GetDueCount()
		return nil
	})
	return count, err
}

// ExportProfile encodes the user's words as a wordId to record JSON object
func (s *LearnerService) ExportProfile(userID int64) ([]byte, error) {
	var data []byte
	err := s.withProfile(userID, func(p *Profile) error {
		var err error
		data, err = json.Marshal(p.Store)
		return err
	})
	return data, err
}

// ImportProfile merges an exported JSON object into the user's words.
// Imported records overwrite tracked ones with the same id; nothing is removed.
func (s *LearnerService) ImportProfile(userID int64, data []byte) error {
	restored := vocab.NewStore(s.now)
	if err := json.Unmarshal(data, restored); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	records := restored.Values()
	for _, rec := range records {
		if !domain.ValidBox(rec.Box) {
			return fmt.Errorf("word %s: box %d: %w", rec.ID, rec.Box, ErrInvalidBox)
		}
	}

	return s.withProfile(userID, func(p *Profile) error {
		if err := s.wordRepo.SaveWords(userID, records); err != nil {
			return err
		}
		p.Review.AbandonSession()
		for _, rec := range records {
			p.Store.Put(rec)
		}
		return nil
	})
}
