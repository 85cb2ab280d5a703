package review

import (
	"math/rand"

	"vocabox/internal/domain"
)

// Direction is the side of the word pair a question asks for
type Direction string

const (
	// DirectionTranslate shows the word and asks for its translation
	DirectionTranslate Direction = "translate"
	// DirectionRecall shows the translation and asks for the word
	DirectionRecall Direction = "recall"
)

// Question is one multiple-choice review prompt
type Question struct {
	WordID        string
	Direction     Direction
	Prompt        string
	Options       []string
	CorrectAnswer string
}

// CorrectIndex returns the position of the correct answer in Options
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Result records one answered question
type Result struct {
	WordID        string `json:"wordId"`
	Correct       bool   `json:"correct"`
	Chosen        string `json:"chosen"`
	CorrectAnswer string `json:"correctAnswer"`
}

// AnswerResult is a graded answer together with the rescheduled word
type AnswerResult struct {
	Result
	Record domain.WordRecord
}

// Summary scores a completed session
type Summary struct {
	Total        int
	CorrectCount int
	Accuracy     float64
	Perfect      bool
	XP           int
	Results      []Result
}

func directionFor(index int) Direction {
	if index%2 == 0 {
		return DirectionTranslate
	}
	return DirectionRecall
}

func sides(w domain.WordRecord, dir Direction) (prompt, answer string) {
	if dir == DirectionTranslate {
		return w.Word, w.Translation
	}
	return w.Translation, w.Word
}

// buildQuestions makes one question per selected word. Distractors come from
// the other selected words; the rest of the vocabulary fills in when the
// session alone does not offer enough distinct answers.
func buildQuestions(selected, all []domain.WordRecord, rng *rand.Rand) []Question {
	questions := make([]Question, 0, len(selected))

	for i, w := range selected {
		dir := directionFor(i)
		prompt, answer := sides(w, dir)

		var pool []string
		for _, other := range selected {
			if other.ID == w.ID {
				continue
			}
			_, opt := sides(other, dir)
			pool = append(pool, opt)
		}
		distractors := sample(pool, answer, distractorCount, rng)

		if len(distractors) < distractorCount {
			var extra []string
			for _, other := range all {
				if other.ID == w.ID {
					continue
				}
				_, opt := sides(other, dir)
				if !contains(distractors, opt) {
					extra = append(extra, opt)
				}
			}
			distractors = append(distractors, sample(extra, answer, distractorCount-len(distractors), rng)...)
		}

		options := append([]string{answer}, distractors...)
		rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		questions = append(questions, Question{
			WordID:        w.ID,
			Direction:     dir,
			Prompt:        prompt,
			Options:       options,
			CorrectAnswer: answer,
		})
	}

	return questions
}

// sample picks up to n distinct values from pool, skipping exclude and blanks
func sample(pool []string, exclude string, n int, rng *rand.Rand) []string {
	seen := map[string]bool{exclude: true, "": true}
	var unique []string
	for _, v := range pool {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}

	rng.Shuffle(len(unique), func(a, b int) {
		unique[a], unique[b] = unique[b], unique[a]
	})
	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
