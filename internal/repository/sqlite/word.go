package sqlite

import (
	"database/sql"
	"fmt"

	"vocabox/internal/domain"
)

// WordRepo implements repository.WordRepository on SQLite
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a new word repository
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

const upsertWordQuery = `
	INSERT INTO word_records (
		user_id, word_id, word, translation, category, zone,
		box, next_review, times_correct, times_wrong, last_seen, date_added
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, word_id)
	DO UPDATE SET
		category = excluded.category,
		zone = excluded.zone,
		box = excluded.box,
		next_review = excluded.next_review,
		times_correct = excluded.times_correct,
		times_wrong = excluded.times_wrong,
		last_seen = excluded.last_seen
`

// LoadWords returns every word record of the user
func (r *WordRepo) LoadWords(userID int64) ([]domain.WordRecord, error) {
	query := `
		SELECT word_id, word, translation, category, zone, box, next_review,
			times_correct, times_wrong, last_seen, date_added
		FROM word_records
		WHERE user_id = ?
		ORDER BY date_added, word_id
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []domain.WordRecord
	for rows.Next() {
		var (
			w          domain.WordRecord
			category   sql.NullString
			zone       sql.NullString
			nextReview string
			lastSeen   sql.NullString
			dateAdded  string
		)
		if err := rows.Scan(
			&w.ID, &w.Word, &w.Translation, &category, &zone, &w.Box, &nextReview,
			&w.TimesCorrect, &w.TimesWrong, &lastSeen, &dateAdded,
		); err != nil {
			return nil, err
		}

		w.Category = category.String
		w.Zone = zone.String
		if w.NextReview, err = parseTime(nextReview); err != nil {
			return nil, err
		}
		if w.DateAdded, err = parseTime(dateAdded); err != nil {
			return nil, err
		}
		if lastSeen.Valid {
			t, err := parseTime(lastSeen.String)
			if err != nil {
				return nil, err
			}
			w.LastSeen = &t
		}

		words = append(words, w)
	}

	return words, rows.Err()
}

// SaveWord inserts a word record or updates its review state
func (r *WordRepo) SaveWord(userID int64, rec domain.WordRecord) error {
	_, err := r.db.Exec(upsertWordQuery, wordArgs(userID, rec)...)
	return err
}

// SaveWords stores several records in one transaction
func (r *WordRepo) SaveWords(userID int64, recs []domain.WordRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if _, err := tx.Exec(upsertWordQuery, wordArgs(userID, rec)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save word %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func wordArgs(userID int64, rec domain.WordRecord) []any {
	var lastSeen sql.NullString
	if rec.LastSeen != nil {
		lastSeen = sql.NullString{String: formatTime(*rec.LastSeen), Valid: true}
	}
	return []any{
		userID,
		rec.ID,
		rec.Word,
		rec.Translation,
		nullString(rec.Category),
		nullString(rec.Zone),
		rec.Box,
		formatTime(rec.NextReview),
		rec.TimesCorrect,
		rec.TimesWrong,
		lastSeen,
		formatTime(rec.DateAdded),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
