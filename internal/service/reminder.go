package service

import (
	"fmt"

	"vocabox/internal/repository"

	"go.uber.org/zap"
)

// Notifier delivers a text message to a user
type Notifier interface {
	Notify(userID int64, text string) error
}

// ReminderService nudges users who have enough words due for a review
type ReminderService struct {
	userRepo repository.UserRepository
	learner  *LearnerService
	notifier Notifier
	logger   *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(userRepo repository.UserRepository, learner *LearnerService, notifier Notifier, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		userRepo: userRepo,
		learner:  learner,
		notifier: notifier,
		logger:   logger,
	}
}

// SendDueReminders notifies every authorized user who can start a review.
// Returns the number of reminders sent.
func (s *ReminderService) SendDueReminders() (int, error) {
	users, err := s.userRepo.ListAuthorizedUsers()
	if err != nil {
		s.logger.Error("Failed to list users for reminders", zap.Error(err))
		return 0, err
	}

	s.logger.Info("Checking due words", zap.Int("users", len(users)))

	sent := 0
	for _, userID := range users {
		due, err := s.learner.DueCount(userID)
		if err != nil {
			s.logger.Error("Failed to count due words", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}

		ok, err := s.learner.CanReview(userID)
		if err != nil || !ok {
			continue
		}

		text := fmt.Sprintf("🧠 Пора повторить слова: %d ждут тебя.\n\nНажми /start и выбери «Повторение».", due)
		if err := s.notifier.Notify(userID, text); err != nil {
			s.logger.Warn("Failed to send reminder", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("Reminders sent", zap.Int("count", sent))
	return sent, nil
}
