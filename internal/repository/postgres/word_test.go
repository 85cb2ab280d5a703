package postgres

import (
	"fmt"
	"testing"
	"time"

	"vocabox/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wordColumns = []string{
	"word_id", "word", "translation", "category", "zone", "box", "next_review",
	"times_correct", "times_wrong", "last_seen", "date_added",
}

func TestWordRepo_LoadWords(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	userID := int64(123)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-time.Hour)

	rows := sqlmock.NewRows(wordColumns).
		AddRow("w1", "chat", "cat", "animals", "forest", 3, now, 4, 1, seen, now.Add(-72*time.Hour)).
		AddRow("w2", "pain", "bread", nil, nil, 1, now, 0, 0, nil, now)

	mock.ExpectQuery("SELECT word_id, word, translation, category, zone, box, next_review, times_correct, times_wrong, last_seen, date_added FROM word_records WHERE user_id = \\$1").
		WithArgs(userID).
		WillReturnRows(rows)

	words, err := repo.LoadWords(userID)

	assert.NoError(t, err)
	require.Len(t, words, 2)

	assert.Equal(t, domain.WordRecord{
		ID: "w1", Word: "chat", Translation: "cat", Category: "animals", Zone: "forest",
		Box: 3, NextReview: now, TimesCorrect: 4, TimesWrong: 1,
		LastSeen: &seen, DateAdded: now.Add(-72 * time.Hour),
	}, words[0])

	assert.Equal(t, "", words[1].Category)
	assert.Equal(t, "", words[1].Zone)
	assert.Nil(t, words[1].LastSeen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_LoadWords_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	mock.ExpectQuery("SELECT word_id").
		WithArgs(int64(123)).
		WillReturnError(fmt.Errorf("query error"))

	words, err := repo.LoadWords(123)

	assert.Error(t, err)
	assert.Nil(t, words)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_LoadWords_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	// Create rows with wrong column type to cause scan error
	rows := sqlmock.NewRows(wordColumns).
		AddRow("w1", "chat", "cat", nil, nil, "invalid", time.Now(), 0, 0, nil, time.Now())

	mock.ExpectQuery("SELECT word_id").
		WithArgs(int64(123)).
		WillReturnRows(rows)

	words, err := repo.LoadWords(123)

	assert.Error(t, err)
	assert.Nil(t, words)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_SaveWord(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-time.Hour)

	tests := []struct {
		name     string
		rec      domain.WordRecord
		category any
		lastSeen any
	}{
		{
			name: "fresh word",
			rec: domain.WordRecord{
				ID: "w1", Word: "chat", Translation: "cat",
				Box: 1, NextReview: now, DateAdded: now,
			},
			category: nil,
			lastSeen: nil,
		},
		{
			name: "reviewed word with category",
			rec: domain.WordRecord{
				ID: "w1", Word: "chat", Translation: "cat", Category: "animals",
				Box: 2, NextReview: now.Add(24 * time.Hour), TimesCorrect: 1,
				LastSeen: &seen, DateAdded: now,
			},
			category: "animals",
			lastSeen: seen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWordRepo(db)

			mock.ExpectExec("INSERT INTO word_records").
				WithArgs(int64(123), tt.rec.ID, tt.rec.Word, tt.rec.Translation, tt.category, nil,
					tt.rec.Box, tt.rec.NextReview, tt.rec.TimesCorrect, tt.rec.TimesWrong, tt.lastSeen, tt.rec.DateAdded).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err = repo.SaveWord(123, tt.rec)

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWordRepo_SaveWords(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	now := time.Now()
	recs := []domain.WordRecord{
		{ID: "w1", Word: "chat", Translation: "cat", Box: 1, NextReview: now, DateAdded: now},
		{ID: "w2", Word: "pain", Translation: "bread", Box: 4, NextReview: now, DateAdded: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO word_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO word_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.SaveWords(123, recs)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_SaveWords_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	now := time.Now()
	recs := []domain.WordRecord{
		{ID: "w1", Word: "chat", Translation: "cat", Box: 1, NextReview: now, DateAdded: now},
		{ID: "w2", Word: "pain", Translation: "bread", Box: 9, NextReview: now, DateAdded: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO word_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO word_records").WillReturnError(fmt.Errorf("check constraint"))
	mock.ExpectRollback()

	err = repo.SaveWords(123, recs)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "w2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_SaveWord_UpdatesCategoryOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	now := time.Now()
	rec := domain.WordRecord{ID: "w1", Word: "chat", Translation: "cat", Category: "pets", Zone: "lesson-2", Box: 3, NextReview: now, DateAdded: now}

	mock.ExpectExec(`ON CONFLICT \(user_id, word_id\)\s+DO UPDATE SET\s+category = EXCLUDED.category,\s+zone = EXCLUDED.zone,`).
		WithArgs(int64(123), "w1", "chat", "cat", "pets", "lesson-2",
			3, now, 0, 0, nil, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.SaveWord(123, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}
