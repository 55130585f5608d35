// Package handler exposes the engagement core as a JSON HTTP API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyloop/studyloop/internal/cache"
	"github.com/studyloop/studyloop/internal/export"
	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/internal/service"
	"github.com/studyloop/studyloop/pkg/utils"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    models.Service
	loader *cache.Loader
}

func New(svc models.Service, loader *cache.Loader) *Handler {
	return &Handler{svc: svc, loader: loader}
}

// Router builds the gin engine with all routes and middleware attached.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", Auth())
	{
		api.POST("/classes", h.CreateClass)
		api.GET("/classes", h.ListClasses)
		api.POST("/classes/:id/notes", h.CreateNote)

		api.POST("/decks", h.CreateDeck)
		api.GET("/decks", h.ListDecks)
		api.GET("/decks/:id", h.GetDeck)
		api.DELETE("/decks/:id", h.DeleteDeck)
		api.POST("/decks/:id/cards", h.AddCard)
		api.GET("/decks/:id/cards", h.ListCards)
		api.GET("/decks/:id/study", h.StudyDeck)
		api.GET("/decks/:id/due-count", h.DueCount)
		api.GET("/decks/:id/export", h.ExportDeck)
		api.DELETE("/cards/:id", h.DeleteCard)

		api.POST("/cards/:id/review", h.ReviewCard)

		api.POST("/study-sessions", h.RecordStudySession)
		api.POST("/pomodoro", h.StartPomodoro)
		api.POST("/pomodoro/:id/complete", h.CompletePomodoro)
		api.POST("/pomodoro/:id/cancel", h.CancelPomodoro)
		api.GET("/pomodoro/stats", h.PomodoroStats)
		api.POST("/quiz-attempts", h.RecordQuizAttempt)

		api.GET("/streak", h.Streak)
		api.GET("/stats/today", h.TodayStats)
		api.GET("/activity/weekly", h.WeeklyActivity)
		api.GET("/activity", h.StudyActivity)

		api.POST("/goals", h.CreateGoal)
		api.GET("/goals/progress", h.GoalProgress)
		api.DELETE("/goals/:id", h.DeleteGoal)

		api.GET("/achievements", h.Achievements)
	}

	return r
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", service.ErrInvalidInput, c.Param("id"))
	}
	return id, nil
}

type createClassRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// POST /api/classes
func (h *Handler) CreateClass(c *gin.Context) {
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	class, err := h.svc.CreateClass(c.Request.Context(), currentUserID(c), req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// GET /api/classes
func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.svc.ListClasses(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

type createNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// POST /api/classes/:id/notes
func (h *Handler) CreateNote(c *gin.Context) {
	classID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	note, err := h.svc.CreateNote(c.Request.Context(), currentUserID(c), classID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

type createDeckRequest struct {
	ClassID     int64  `json:"class_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// POST /api/decks
func (h *Handler) CreateDeck(c *gin.Context) {
	var req createDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	deck, err := h.svc.CreateDeck(c.Request.Context(), currentUserID(c), req.ClassID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deck)
}

// GET /api/decks
func (h *Handler) ListDecks(c *gin.Context) {
	decks, err := h.svc.ListDecks(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decks": decks})
}

// GET /api/decks/:id
func (h *Handler) GetDeck(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	deck, err := h.svc.GetDeck(c.Request.Context(), currentUserID(c), deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

// DELETE /api/decks/:id
func (h *Handler) DeleteDeck(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.DeleteDeck(c.Request.Context(), currentUserID(c), deckID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addCardRequest struct {
	Front string `json:"front" binding:"required"`
	Back  string `json:"back" binding:"required"`
}

// POST /api/decks/:id/cards
func (h *Handler) AddCard(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req addCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	card, err := h.svc.AddCard(c.Request.Context(), currentUserID(c), deckID, req.Front, req.Back)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GET /api/decks/:id/cards
func (h *Handler) ListCards(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	cards, err := h.svc.ListCards(c.Request.Context(), currentUserID(c), deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// DELETE /api/cards/:id
func (h *Handler) DeleteCard(c *gin.Context) {
	cardID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.DeleteCard(c.Request.Context(), currentUserID(c), cardID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reviewRequest struct {
	Quality *int `json:"quality" binding:"required"`
}

// POST /api/cards/:id/review
// Submits one review outcome; responds with the card's next scheduling state.
func (h *Handler) ReviewCard(c *gin.Context) {
	cardID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	result, err := h.svc.ReviewCard(c.Request.Context(), currentUserID(c), cardID, *req.Quality)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/decks/:id/study
// Cards in study order: never-seen first, then most overdue.
func (h *Handler) StudyDeck(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	deck, cards, err := h.svc.StudyDeck(c.Request.Context(), currentUserID(c), deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deck": deck, "cards": cards})
}

// GET /api/decks/:id/due-count
func (h *Handler) DueCount(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.svc.DueCount(c.Request.Context(), currentUserID(c), deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"due_count": count})
}

// GET /api/decks/:id/export
// Streams the deck as an .xlsx workbook.
func (h *Handler) ExportDeck(c *gin.Context) {
	deckID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	deck, err := h.svc.GetDeck(c.Request.Context(), userID, deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	cards, err := h.svc.ListCards(c.Request.Context(), userID, deckID)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := export.Deck(deck, cards)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(deck, utils.NowUTC())))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		zap.S().Errorw("write deck export", "deck_id", deckID, "error", err)
	}
}

type studySessionRequest struct {
	ClassID      *int64 `json:"class_id"`
	ActivityType string `json:"activity_type" binding:"required"`
	Duration     int    `json:"duration"`
}

// POST /api/study-sessions
func (h *Handler) RecordStudySession(c *gin.Context) {
	var req studySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	if err := h.svc.RecordStudySession(c.Request.Context(), currentUserID(c), req.ClassID, req.ActivityType, req.Duration); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type startPomodoroRequest struct {
	ClassID  *int64 `json:"class_id"`
	Type     string `json:"type" binding:"required"`
	Duration int    `json:"duration" binding:"required"`
}

// POST /api/pomodoro
func (h *Handler) StartPomodoro(c *gin.Context) {
	var req startPomodoroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	session, err := h.svc.StartPomodoro(c.Request.Context(), currentUserID(c), req.ClassID, req.Type, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/pomodoro/:id/complete
func (h *Handler) CompletePomodoro(c *gin.Context) {
	sessionID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.CompletePomodoro(c.Request.Context(), currentUserID(c), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": true})
}

// POST /api/pomodoro/:id/cancel
func (h *Handler) CancelPomodoro(c *gin.Context) {
	sessionID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.CancelPomodoro(c.Request.Context(), currentUserID(c), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/pomodoro/stats
func (h *Handler) PomodoroStats(c *gin.Context) {
	userID := currentUserID(c)
	key := fmt.Sprintf("pomodoro_stats:%d", userID)

	stats, err := h.loader.Load(c.Request.Context(), key, func(ctx context.Context) (any, error) {
		return h.svc.PomodoroStats(ctx, userID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type quizAttemptRequest struct {
	QuizID    int64 `json:"quiz_id" binding:"required"`
	Score     int   `json:"score"`
	Total     int   `json:"total" binding:"required"`
	TimeTaken int   `json:"time_taken"`
}

// POST /api/quiz-attempts
func (h *Handler) RecordQuizAttempt(c *gin.Context) {
	var req quizAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	attempt, err := h.svc.RecordQuizAttempt(c.Request.Context(), currentUserID(c), req.QuizID, req.Score, req.Total, req.TimeTaken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

// GET /api/streak
func (h *Handler) Streak(c *gin.Context) {
	record, err := h.svc.Streak(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GET /api/stats/today
func (h *Handler) TodayStats(c *gin.Context) {
	stats, err := h.svc.TodayStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/activity/weekly
func (h *Handler) WeeklyActivity(c *gin.Context) {
	days, err := h.svc.WeeklyActivity(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// GET /api/activity?days=30
func (h *Handler) StudyActivity(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	userID := currentUserID(c)
	key := fmt.Sprintf("activity:%d:%d", userID, days)

	activity, err := h.loader.Load(c.Request.Context(), key, func(ctx context.Context) (any, error) {
		return h.svc.StudyActivity(ctx, userID, days)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": activity})
}

type createGoalRequest struct {
	Type        string `json:"goal_type" binding:"required"`
	TargetValue int    `json:"target_value" binding:"required"`
}

// POST /api/goals
func (h *Handler) CreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err))
		return
	}

	goal, err := h.svc.CreateGoal(c.Request.Context(), currentUserID(c), req.Type, req.TargetValue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// GET /api/goals/progress
func (h *Handler) GoalProgress(c *gin.Context) {
	progress, err := h.svc.ListGoalProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": progress})
}

// DELETE /api/goals/:id
func (h *Handler) DeleteGoal(c *gin.Context) {
	goalID, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.DeleteGoal(c.Request.Context(), currentUserID(c), goalID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/achievements
func (h *Handler) Achievements(c *gin.Context) {
	achievements, err := h.svc.Achievements(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}
