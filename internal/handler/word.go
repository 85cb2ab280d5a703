package handler

import (
	"errors"
	"fmt"
	"strings"

	"vocabox/internal/domain"
	"vocabox/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const mainMenuText = "🏠 Главное меню\n\nВыберите действие:"

// handleStart handles /start command and the back buttons
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	if err := h.authService.EnsureUserExists(userID); err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return c.Send("Произошла ошибка. Попробуйте позже.")
	}

	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send("Произошла ошибка. Попробуйте позже.")
	}

	if !authorized {
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingPassword})
		return c.Send("Привет! Это бот для повторения слов. Введи пароль:")
	}

	h.ResetState(userID)
	return h.show(c, mainMenuText, mainMenuMarkup())
}

// handleAddWord starts the word input flow
func (h *Handler) handleAddWord(c tele.Context) error {
	userID := c.Sender().ID
	h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})

	cancelMarkup := &tele.ReplyMarkup{}
	cancelMarkup.Inline(cancelMarkup.Row(btnCancel))

	return h.show(c, "Жду слово", cancelMarkup)
}

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	// Ensure user exists
	if err := h.authService.EnsureUserExists(userID); err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return nil
	}

	// Check authorization first
	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send("Произошла ошибка. Попробуйте позже.")
	}

	// If not authorized, check password
	if !authorized {
		if !h.authService.CheckPassword(text) {
			return c.Send("Неверный пароль")
		}
		if err := h.authService.AuthorizeUser(userID); err != nil {
			h.logger.Error("Failed to authorize user", zap.Error(err))
			return c.Send("Произошла ошибка. Попробуйте позже.")
		}

		h.logger.Info("User authorized", zap.Int64("user_id", userID))
		h.ResetState(userID)
		return c.Send("✅ Доступ разрешён!\n\n"+mainMenuText, mainMenuMarkup())
	}

	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingTranslation:
		return h.saveWord(c, userID, state.CurrentWord, text)

	case domain.StateReviewing:
		return c.Send("Выбери вариант ответа кнопкой под вопросом или нажми «Закончить».")

	default:
		// Idle or waiting for a word: the text is the new word
		cancelMarkup := &tele.ReplyMarkup{}
		cancelMarkup.Inline(cancelMarkup.Row(btnCancel))

		h.SetState(userID, &domain.StateData{
			State:       domain.StateWaitingTranslation,
			CurrentWord: text,
		})

		return c.Send("Жду перевод (можно добавить #категорию)", cancelMarkup)
	}
}

// saveWord stores the word pair and waits for the next word
func (h *Handler) saveWord(c tele.Context, userID int64, word, text string) error {
	translation, category := splitCategory(text)

	added, err := h.learner.LearnWord(userID, word, translation, category)
	if errors.Is(err, service.ErrEmptyWord) {
		return c.Send("Перевод не может быть пустым. Попробуй ещё раз.")
	}
	if err != nil {
		h.logger.Error("Failed to save word",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return c.Send("Не удалось сохранить слово. Попробуйте ещё раз.")
	}

	h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})

	if !added {
		return c.Send(fmt.Sprintf("Пара «%s — %s» уже есть в словаре.\n\nОтправь следующее слово или вернись в /start", word, translation))
	}

	h.logger.Info("Word learned",
		zap.Int64("user_id", userID),
		zap.String("word", word),
		zap.String("category", category),
	)

	reply := "✅ Сохранено!"
	if category != "" {
		reply += fmt.Sprintf(" Категория: %s", category)
	}
	return c.Send(reply + "\n\nМожешь отправить следующее слово или вернуться в /start")
}

// splitCategory separates a trailing "#category" tag from the translation
func splitCategory(text string) (translation, category string) {
	idx := strings.LastIndex(text, "#")
	if idx < 0 {
		return strings.TrimSpace(text), ""
	}
	category = strings.ToLower(strings.TrimSpace(text[idx+1:]))
	if category == "" || strings.ContainsAny(category, " \t") {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:idx]), category
}
