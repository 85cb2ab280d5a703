package repository

import (
	"vocabox/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	IsAuthorized(userID int64) (bool, error)
	AuthorizeUser(userID int64) error
	EnsureUserExists(userID int64) error
	ListAuthorizedUsers() ([]int64, error)
}

// WordRepository persists a learner's word records
type WordRepository interface {
	LoadWords(userID int64) ([]domain.WordRecord, error)
	SaveWord(userID int64, rec domain.WordRecord) error
	SaveWords(userID int64, recs []domain.WordRecord) error
}
