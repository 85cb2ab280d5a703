package vocab

import (
	"encoding/json"
	"sort"
	"time"

	"vocabox/internal/domain"
)

// Store owns the word records of a single learner.
// It is not safe for concurrent use; the host serialises access per learner.
type Store struct {
	words map[string]*domain.WordRecord
	now   func() time.Time
}

// NewStore creates an empty store. A nil clock means time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		words: make(map[string]*domain.WordRecord),
		now:   now,
	}
}

// AddWord records a newly learned word.
// Returns false and leaves the existing record untouched if id is already known.
func (s *Store) AddWord(id string, data domain.WordData) bool {
	if _, exists := s.words[id]; exists {
		return false
	}

	now := s.now()
	s.words[id] = &domain.WordRecord{
		ID:          id,
		Word:        data.Word,
		Translation: data.Translation,
		Category:    data.Category,
		Zone:        data.Zone,
		Box:         domain.MinBox,
		NextReview:  now,
		DateAdded:   now,
	}
	return true
}

// GetWord returns a copy of the record, or nil if id is unknown
func (s *Store) GetWord(id string) *domain.WordRecord {
	w, ok := s.words[id]
	if !ok {
		return nil
	}
	cp := copyRecord(w)
	return &cp
}

// Put overwrites a record with the same id
func (s *Store) Put(rec domain.WordRecord) {
	cp := copyRecord(&rec)
	s.words[rec.ID] = &cp
}

// Remove drops a record. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	delete(s.words, id)
}

// Values returns copies of all records ordered by date added
func (s *Store) Values() []domain.WordRecord {
	out := make([]domain.WordRecord, 0, len(s.words))
	for _, w := range s.words {
		out = append(out, copyRecord(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.Before(out[j].DateAdded)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of tracked words
func (s *Store) Len() int {
	return len(s.words)
}

// Load replaces the store contents with records restored from persistence
func (s *Store) Load(records []domain.WordRecord) {
	s.words = make(map[string]*domain.WordRecord, len(records))
	for _, rec := range records {
		s.Put(rec)
	}
}

// MarshalJSON encodes the store as a wordId to record object
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.words)
}

// UnmarshalJSON restores a store encoded by MarshalJSON
func (s *Store) UnmarshalJSON(data []byte) error {
	var words map[string]*domain.WordRecord
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.words = make(map[string]*domain.WordRecord, len(words))
	for id, w := range words {
		if w == nil {
			continue
		}
		w.ID = id
		s.words[id] = w
	}
	return nil
}

func copyRecord(w *domain.WordRecord) domain.WordRecord {
	cp := *w
	if w.LastSeen != nil {
		t := *w.LastSeen
		cp.LastSeen = &t
	}
	return cp
}
