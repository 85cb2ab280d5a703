package postgres

import (
	"database/sql"
	"fmt"

	"vocabox/internal/domain"
)

// WordRepo implements repository.WordRepository
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (user_id, word_id)
	DO UPDATE SET
		category = EXCLUDED.category,
		zone = EXCLUDED.zone,
		box = EXCLUDED.box,
		next_review = EXCLUDED.next_review,
		times_correct = EXCLUDED.times_correct,
		times_wrong = EXCLUDED.times_wrong,
		last_seen = EXCLUDED.last_seen
`

// LoadWords returns every word record of the user
func (r *WordRepo) LoadWords(userID int64) ([]domain.WordRecord, error) {
	query := `
		SELECT word_id, word, translation, category, zone, box, next_review,
			times_correct, times_wrong, last_seen, date_added
		FROM word_records
		WHERE user_id = $1
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
			w        domain.WordRecord
			category sql.NullString
			zone     sql.NullString
			lastSeen sql.NullTime
		)
		if err := rows.Scan(
			&w.ID, &w.Word, &w.Translation, &category, &zone, &w.Box, &w.NextReview,
			&w.TimesCorrect, &w.TimesWrong, &lastSeen, &w.DateAdded,
		); err != nil {
			return nil, err
		}
		w.Category = category.String
		w.Zone = zone.String
		if lastSeen.Valid {
			w.LastSeen = &lastSeen.Time
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// SaveWord inserts a word record or updates its review state.
// Identity fields are written once and never changed.
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
	var lastSeen sql.NullTime
	if rec.LastSeen != nil {
		lastSeen = sql.NullTime{Time: *rec.LastSeen, Valid: true}
	}
	return []any{
		userID,
		rec.ID,
		rec.Word,
		rec.Translation,
		nullString(rec.Category),
		nullString(rec.Zone),
		rec.Box,
		rec.NextReview,
		rec.TimesCorrect,
		rec.TimesWrong,
		lastSeen,
		rec.DateAdded,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
