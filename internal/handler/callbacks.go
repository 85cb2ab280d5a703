package handler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"vocabox/internal/domain"
	"vocabox/internal/mastery"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const categoriesPageSize = 7

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Message was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// show edits the message behind a callback, or sends a new one for commands
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// alert answers a callback with a popup, or a plain message for commands
func alert(c tele.Context, text string) error {
	if c.Callback() == nil {
		return c.Send(text, mainMenuMarkup())
	}
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

// handleCallback handles callbacks that no registered button matched
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Buttons whose Unique did not come through
	switch data {
	case btnAddWord.Unique:
		return h.handleAddWord(c)
	case btnPractice.Unique:
		return h.handlePractice(c)
	case btnStats.Unique:
		return h.handleStats(c)
	case btnCategories.Unique:
		return h.handleCategories(c)
	case btnAbandon.Unique:
		return h.handleAbandon(c)
	case btnCancel.Unique:
		return h.handleCancel(c)
	case btnBack.Unique, btnMainMenu.Unique:
		return h.handleStart(c)
	}

	// Dynamic buttons
	switch {
	case strings.HasPrefix(data, answerPrefix):
		return h.handleAnswer(c, data)
	case strings.HasPrefix(data, pagePrefix):
		return h.handlePagination(c, data)
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.show(c, mainMenuText, mainMenuMarkup())
}

// handleStats shows the vocabulary summary
func (h *Handler) handleStats(c tele.Context) error {
	userID := c.Sender().ID

	stats, err := h.learner.Stats(userID)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Ошибка при загрузке статистики")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnPractice),
		markup.Row(btnCategories, btnBack),
	)
	return h.show(c, formatStats(stats), markup)
}

// handleCategories shows the first page of category mastery
func (h *Handler) handleCategories(c tele.Context) error {
	return h.showCategories(c, 1)
}

// handlePagination handles page navigation of the category list
func (h *Handler) handlePagination(c tele.Context, data string) error {
	page, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(data), pagePrefix))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная страница"})
	}
	return h.showCategories(c, page)
}

func (h *Handler) showCategories(c tele.Context, page int) error {
	userID := c.Sender().ID

	byCategory, err := h.learner.CategoryMastery(userID, mastery.DefaultMinBox)
	if err != nil {
		h.logger.Error("Failed to get category mastery", zap.Error(err), zap.Int64("user_id", userID))
		return alert(c, "Ошибка при загрузке")
	}

	if len(byCategory) == 0 {
		return alert(c, "Пока нет слов с категориями. Добавь перевод с #категорией.")
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	names, page, totalPages := paginate(names, page, categoriesPageSize)

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	if totalPages > 1 {
		navRow := tele.Row{}
		if page > 1 {
			navRow = append(navRow, markup.Data("⬅️", fmt.Sprintf("%s%d", pagePrefix, page-1)))
		}
		if page < totalPages {
			navRow = append(navRow, markup.Data("➡️", fmt.Sprintf("%s%d", pagePrefix, page+1)))
		}
		rows = append(rows, navRow)
	}
	rows = append(rows, markup.Row(btnBack))
	markup.Inline(rows...)

	return h.show(c, formatCategories(names, byCategory, page, totalPages), markup)
}

// paginate returns one page of items, the page actually shown and the page count.
// Out of range pages are clamped.
func paginate(items []string, page, pageSize int) ([]string, int, int) {
	if len(items) == 0 {
		return nil, 1, 0
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	page = max(1, min(page, totalPages))

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end], page, totalPages
}

func formatCategories(names []string, byCategory map[string]domain.CategoryMastery, page, totalPages int) string {
	var b strings.Builder
	b.WriteString("🗂 Категории (выучено / всего):\n\n")
	for _, name := range names {
		m := byCategory[name]
		fmt.Fprintf(&b, "• %s: %d/%d\n", name, m.Mastered, m.Total)
	}
	if totalPages > 1 {
		fmt.Fprintf(&b, "\nСтраница %d из %d", page, totalPages)
	}
	return b.String()
}
