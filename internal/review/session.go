package review

import (
	"errors"
	"fmt"
	"math/rand"

	"vocabox/internal/mastery"
	"vocabox/internal/scheduler"
	"vocabox/internal/vocab"

	"go.uber.org/zap"
)

// DefaultSessionSize is the number of questions when no limit is given
const DefaultSessionSize = 10

const (
	distractorCount = 3
	xpPerCorrect    = 5
	perfectBonusXP  = 15
)

var (
	ErrNotEnoughDueWords = errors.New("not enough words due for review")
	ErrSessionInProgress = errors.New("review session already in progress")
	ErrNoQuestion        = errors.New("no question awaiting an answer")
	ErrSessionNotDone    = errors.New("review session is not complete")
	ErrWordVanished      = errors.New("reviewed word is no longer tracked")
)

// State is the phase of a review session
type State int

const (
	StateIdle State = iota
	StatePresented
	StateAnswered
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresented:
		return "presented"
	case StateAnswered:
		return "answered"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Controller runs one review session at a time over a learner's words.
// Answers are committed to the scheduler immediately and are never rolled back.
type Controller struct {
	store  *vocab.Store
	sched  *scheduler.Scheduler
	logger *zap.Logger
	rng    *rand.Rand

	state     State
	session   uint32
	questions []Question
	current   int
	results   []Result
}

// New creates an idle controller. A nil rng is seeded from the scheduler clock.
func New(store *vocab.Store, sched *scheduler.Scheduler, logger *zap.Logger, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(sched.Now().UnixNano()))
	}
	return &Controller{
		store:  store,
		sched:  sched,
		logger: logger,
		rng:    rng,
	}
}

// State returns the session phase
func (c *Controller) State() State {
	return c.state
}

// Progress returns the number of answered and total questions
func (c *Controller) Progress() (answered, total int) {
	return len(c.results), len(c.questions)
}

// Position identifies the running session and how far it got.
// Session is zero while idle.
type Position struct {
	Session  uint32
	Answered int
	Total    int
}

// Position returns the session nonce together with its progress
func (c *Controller) Position() Position {
	if c.state == StateIdle {
		return Position{}
	}
	answered, total := c.Progress()
	return Position{Session: c.session, Answered: answered, Total: total}
}

// Current returns the question on screen, or nil outside a session
func (c *Controller) Current() *Question {
	if c.state != StatePresented && c.state != StateAnswered {
		return nil
	}
	q := c.questions[c.current]
	return &q
}

// StartSession selects up to limit due words and presents the first question.
// Fails without touching any state when fewer than MinReviewWords are due.
func (c *Controller) StartSession(limit int) (*Question, error) {
	if c.state != StateIdle {
		return nil, ErrSessionInProgress
	}

	due := c.sched.GetDueCount()
	if due < mastery.MinReviewWords {
		return nil, fmt.Errorf("%w: %d due, need %d", ErrNotEnoughDueWords, due, mastery.MinReviewWords)
	}

	if limit <= 0 {
		limit = DefaultSessionSize
	}
	words := c.sched.GetDueWords(limit)

	c.questions = buildQuestions(words, c.store.Values(), c.rng)
	c.session = c.newSessionID()
	c.current = 0
	c.results = nil
	c.state = StatePresented

	c.logger.Debug("Review session started",
		zap.Int("due", due),
		zap.Int("questions", len(c.questions)),
	)

	return c.Current(), nil
}

// AnswerQuestion grades chosen against the current question and commits the
// result to the scheduler.
func (c *Controller) AnswerQuestion(chosen string) (AnswerResult, error) {
	if c.state != StatePresented {
		return AnswerResult{}, ErrNoQuestion
	}

	q := c.questions[c.current]
	correct := chosen == q.CorrectAnswer

	rec := c.sched.UpdateWord(q.WordID, correct)
	if rec == nil {
		c.logger.DPanic("Word disappeared during review session", zap.String("word_id", q.WordID))
		return AnswerResult{}, fmt.Errorf("%w: %s", ErrWordVanished, q.WordID)
	}

	result := Result{
		WordID:        q.WordID,
		Correct:       correct,
		Chosen:        chosen,
		CorrectAnswer: q.CorrectAnswer,
	}
	c.results = append(c.results, result)
	c.state = StateAnswered

	return AnswerResult{Result: result, Record: *rec}, nil
}

// NextQuestion advances past an answered question.
// Returns false once every question has been answered.
func (c *Controller) NextQuestion() (*Question, bool) {
	if c.state != StateAnswered {
		return c.Current(), c.state == StatePresented
	}

	if c.current+1 >= len(c.questions) {
		c.state = StateComplete
		return nil, false
	}

	c.current++
	c.state = StatePresented
	return c.Current(), true
}

// CompleteSession scores a finished session and returns to idle
func (c *Controller) CompleteSession() (Summary, error) {
	if c.state != StateComplete {
		return Summary{}, ErrSessionNotDone
	}

	summary := summarize(c.results)
	c.reset()

	c.logger.Debug("Review session completed",
		zap.Int("total", summary.Total),
		zap.Int("correct", summary.CorrectCount),
		zap.Int("xp", summary.XP),
	)

	return summary, nil
}

// AbandonSession drops the session and returns the answers given so far.
// Scheduler updates already applied stay in place.
func (c *Controller) AbandonSession() []Result {
	results := c.results
	if c.state != StateIdle {
		c.logger.Debug("Review session abandoned",
			zap.Int("answered", len(results)),
			zap.Int("total", len(c.questions)),
		)
	}
	c.reset()
	return results
}

// newSessionID draws a nonzero nonce different from the last session's
func (c *Controller) newSessionID() uint32 {
	for {
		id := c.rng.Uint32()
		if id != 0 && id != c.session {
			return id
		}
	}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.questions = nil
	c.current = 0
	c.results = nil
}

func summarize(results []Result) Summary {
	s := Summary{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Correct {
			s.CorrectCount++
		}
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.CorrectCount) / float64(s.Total) * 100
		s.Perfect = s.CorrectCount == s.Total
	}
	s.XP = s.CorrectCount * xpPerCorrect
	if s.Perfect {
		s.XP += perfectBonusXP
	}
	return s
}
