package handler

import (
	"sync"

	"vocabox/internal/domain"
	"vocabox/internal/middleware"
	"vocabox/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot         *tele.Bot
	authService *service.AuthService
	learner     *service.LearnerService
	logger      *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Per-user locks so double taps on a button are handled one at a time
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	learner *service.LearnerService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		authService:   authService,
		learner:       learner,
		logger:        logger,
		states:        make(map[int64]*domain.StateData),
		callbackLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	auth := middleware.AuthMiddleware(h.authService, h.logger)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/stats", h.handleStats, auth)
	h.bot.Handle("/review", h.handlePractice, auth)

	// Text messages carry the password, so they are checked in handleText
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons) require an authorized user
	buttons := h.bot.Group()
	buttons.Use(auth)

	buttons.Handle(&btnAddWord, h.handleAddWord)
	buttons.Handle(&btnPractice, h.handlePractice)
	buttons.Handle(&btnStats, h.handleStats)
	buttons.Handle(&btnCategories, h.handleCategories)
	buttons.Handle(&btnAbandon, h.handleAbandon)
	buttons.Handle(&btnCancel, h.handleCancel)
	buttons.Handle(&btnBack, h.handleStart)
	buttons.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	buttons.Handle(tele.OnCallback, h.handleCallback)
}

// Notify sends a message to a user outside of any conversation
func (h *Handler) Notify(userID int64, text string) error {
	_, err := h.bot.Send(&tele.User{ID: userID}, text, mainMenuMarkup())
	return err
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// userLock returns the lock serialising callbacks of one user
func (h *Handler) userLock(userID int64) *sync.Mutex {
	h.callbackMux.Lock()
	defer h.callbackMux.Unlock()

	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	return lock
}

// Inline keyboard buttons
var (
	btnAddWord = tele.Btn{
		Unique: "add_word",
		Text:   "➕ Добавить слово",
	}
	btnPractice = tele.Btn{
		Unique: "practice",
		Text:   "🧠 Повторение",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Статистика",
	}
	btnCategories = tele.Btn{
		Unique: "categories",
		Text:   "🗂 Категории",
	}
	btnAbandon = tele.Btn{
		Unique: "abandon",
		Text:   "⏹ Закончить",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Отменить",
	}
	btnBack = tele.Btn{
		Unique: "back",
		Text:   "🏠 Назад",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Главное меню",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnAddWord),
		menu.Row(btnPractice),
		menu.Row(btnStats, btnCategories),
	)
	return menu
}
