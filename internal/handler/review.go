package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vocabox/internal/domain"
	"vocabox/internal/mastery"
	"vocabox/internal/review"
	"vocabox/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	answerPrefix = "ans_"
	pagePrefix   = "page_"
)

var errBadAnswerData = errors.New("malformed answer data")

// handlePractice starts a review session
func (h *Handler) handlePractice(c tele.Context) error {
	userID := c.Sender().ID

	lock := h.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	q, err := h.learner.StartReview(userID)
	if errors.Is(err, review.ErrNotEnoughDueWords) {
		due, _ := h.learner.DueCount(userID)
		return alert(c, fmt.Sprintf("Для повторения нужно минимум %d слов, сейчас ждут: %d", mastery.MinReviewWords, due))
	}
	if err != nil {
		h.logger.Error("Failed to start review", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Не удалось начать повторение")
	}

	h.SetState(userID, &domain.StateData{State: domain.StateReviewing})

	pos, err := h.learner.Position(userID)
	if err != nil {
		return err
	}
	return h.show(c, formatQuestion(q, pos.Answered, pos.Total, ""), questionMarkup(q, pos))
}

// handleAnswer grades the tapped option and shows the next question or the summary
func (h *Handler) handleAnswer(c tele.Context, data string) error {
	userID := c.Sender().ID

	lock := h.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ref, err := parseAnswerData(data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный ответ"})
	}

	pos, err := h.learner.Position(userID)
	if err != nil {
		h.logger.Error("Failed to read review progress", zap.Error(err), zap.Int64("user_id", userID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка"})
	}
	// a button of another session or a second tap on a graded question
	if !ref.matches(pos) {
		return c.Respond(&tele.CallbackResponse{Text: "Этот вопрос уже неактуален"})
	}

	res, err := h.learner.Answer(userID, ref.Option)
	switch {
	case errors.Is(err, service.ErrAnswerNotSaved):
		// graded in memory; the word is saved again on the next answer
		h.logger.Warn("Answer not saved yet", zap.Error(err), zap.Int64("user_id", userID))
	case err != nil:
		h.logger.Warn("Failed to grade answer", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Сессия уже закончилась")
	}

	feedback := "✅ Верно!"
	if !res.Correct {
		feedback = fmt.Sprintf("❌ Неверно. Правильно: %s", res.CorrectAnswer)
	}

	next, err := h.learner.NextQuestion(userID)
	if err != nil {
		return err
	}
	if next != nil {
		pos.Answered++
		return h.show(c, formatQuestion(next, pos.Answered, pos.Total, feedback), questionMarkup(next, pos))
	}

	summary, err := h.learner.FinishReview(userID)
	if err != nil {
		h.logger.Error("Failed to finish review", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Не удалось подвести итоги")
	}
	h.ResetState(userID)

	return h.show(c, feedback+"\n\n"+formatSummary(summary), mainMenuMarkup())
}

// handleAbandon stops the running session
func (h *Handler) handleAbandon(c tele.Context) error {
	userID := c.Sender().ID

	lock := h.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	results, err := h.learner.AbandonReview(userID)
	if err != nil {
		h.logger.Error("Failed to abandon review", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Ошибка")
	}
	h.ResetState(userID)

	text := fmt.Sprintf("⏹ Повторение остановлено. Ответов сохранено: %d\n\n%s", len(results), mainMenuText)
	return h.show(c, text, mainMenuMarkup())
}

// questionMarkup builds one button per option; data names the session and question
func questionMarkup(q *review.Question, pos review.Position) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(q.Options)+1)
	for i, option := range q.Options {
		ref := answerRef{Session: pos.Session, Question: pos.Answered, Option: i}
		rows = append(rows, markup.Row(markup.Data(option, ref.String())))
	}
	rows = append(rows, markup.Row(btnAbandon))
	markup.Inline(rows...)
	return markup
}

// answerRef is the payload of an answer button
type answerRef struct {
	Session  uint32
	Question int
	Option   int
}

func (r answerRef) String() string {
	return fmt.Sprintf("%s%d_%d_%d", answerPrefix, r.Session, r.Question, r.Option)
}

// matches reports whether the button belongs to the question now on screen
func (r answerRef) matches(pos review.Position) bool {
	return pos.Session != 0 && r.Session == pos.Session && r.Question == pos.Answered
}

// parseAnswerData reads "ans_<session>_<question>_<option>"
func parseAnswerData(data string) (answerRef, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(data), answerPrefix)
	if !ok {
		return answerRef{}, errBadAnswerData
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 3 {
		return answerRef{}, errBadAnswerData
	}

	session, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil || session == 0 {
		return answerRef{}, errBadAnswerData
	}
	question, err := strconv.Atoi(parts[1])
	if err != nil || question < 0 {
		return answerRef{}, errBadAnswerData
	}
	option, err := strconv.Atoi(parts[2])
	if err != nil || option < 0 {
		return answerRef{}, errBadAnswerData
	}

	return answerRef{Session: uint32(session), Question: question, Option: option}, nil
}

func formatQuestion(q *review.Question, answered, total int, feedback string) string {
	var b strings.Builder
	if feedback != "" {
		b.WriteString(feedback)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "🧠 Вопрос %d из %d\n\n", answered+1, total)
	if q.Direction == review.DirectionRecall {
		fmt.Fprintf(&b, "Как будет «%s»?", q.Prompt)
	} else {
		fmt.Fprintf(&b, "Что значит «%s»?", q.Prompt)
	}
	return b.String()
}

func formatSummary(s review.Summary) string {
	var b strings.Builder
	b.WriteString("🏁 Повторение завершено!\n\n")
	fmt.Fprintf(&b, "Правильно: %d из %d (%.0f%%)\n", s.CorrectCount, s.Total, s.Accuracy)
	fmt.Fprintf(&b, "Опыт: +%d XP", s.XP)
	if s.Perfect {
		b.WriteString("\n\n🌟 Без единой ошибки!")
	}
	return b.String()
}

func formatStats(s domain.Stats) string {
	var b strings.Builder
	b.WriteString("📊 Статистика\n\n")
	fmt.Fprintf(&b, "Всего слов: %d\n", s.TotalWords)
	fmt.Fprintf(&b, "Ждут повторения: %d\n", s.DueForReview)
	fmt.Fprintf(&b, "Освоено: %d%%\n\n", s.MasteryPercent)
	fmt.Fprintf(&b, "📦 1 Изучаю: %d\n", s.Breakdown.Learning)
	fmt.Fprintf(&b, "📦 2 Знакомо: %d\n", s.Breakdown.Familiar)
	fmt.Fprintf(&b, "📦 3 Практикую: %d\n", s.Breakdown.Practiced)
	fmt.Fprintf(&b, "📦 4 Знаю: %d\n", s.Breakdown.Known)
	fmt.Fprintf(&b, "📦 5 Выучено: %d", s.Breakdown.Mastered)
	return b.String()
}
