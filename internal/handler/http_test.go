package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop/internal/cache"
	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService overrides only the methods a test exercises; calling anything
// else panics on the nil embedded interface, which is the failure we want.
type stubService struct {
	models.Service

	reviewCard func(userID, cardID int64, quality int) (*models.ReviewResult, error)
	streak     func(userID int64) (*models.StreakRecord, error)
	stats      func(userID int64) (*models.PomodoroStats, error)
}

func (s *stubService) ReviewCard(ctx context.Context, userID, cardID int64, quality int) (*models.ReviewResult, error) {
	return s.reviewCard(userID, cardID, quality)
}

func (s *stubService) Streak(ctx context.Context, userID int64) (*models.StreakRecord, error) {
	return s.streak(userID)
}

func (s *stubService) PomodoroStats(ctx context.Context, userID int64) (*models.PomodoroStats, error) {
	return s.stats(userID)
}

func newTestRouter(svc models.Service) *gin.Engine {
	loader := cache.NewLoader(cache.New(time.Minute))
	return New(svc, loader).Router()
}

func doRequest(router *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodGet, "/api/streak", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/streak", "abc", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/streak", "-3", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthzSkipsAuth(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReviewCard(t *testing.T) {
	svc := &stubService{
		reviewCard: func(userID, cardID int64, quality int) (*models.ReviewResult, error) {
			assert.Equal(t, int64(42), userID)
			assert.Equal(t, int64(7), cardID)
			assert.Equal(t, 0, quality)
			return &models.ReviewResult{EaseFactor: 2.5, IntervalDays: 1, TimesReviewed: 1}, nil
		},
	}
	router := newTestRouter(svc)

	// quality 0 is legal and must survive binding.
	w := doRequest(router, http.MethodPost, "/api/cards/7/review", "42", `{"quality": 0}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ReviewResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.IntervalDays)
}

func TestReviewCardMissingQuality(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodPost, "/api/cards/7/review", "42", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewCardBadID(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodPost, "/api/cards/abc/review", "42", `{"quality": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: card 7", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: quality 9", service.ErrInvalidInput), http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := &stubService{
			reviewCard: func(userID, cardID int64, quality int) (*models.ReviewResult, error) {
				return nil, tt.err
			},
		}
		router := newTestRouter(svc)

		w := doRequest(router, http.MethodPost, "/api/cards/7/review", "1", `{"quality": 4}`)
		assert.Equal(t, tt.code, w.Code, "error %v", tt.err)
	}
}

func TestStreakEndpoint(t *testing.T) {
	svc := &stubService{
		streak: func(userID int64) (*models.StreakRecord, error) {
			return &models.StreakRecord{UserID: userID, CurrentStreak: 5, LongestStreak: 9}, nil
		},
	}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/streak", "11", "")
	require.Equal(t, http.StatusOK, w.Code)

	var record models.StreakRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, 5, record.CurrentStreak)
	assert.Equal(t, 9, record.LongestStreak)
}

func TestPomodoroStatsCached(t *testing.T) {
	calls := 0
	svc := &stubService{
		stats: func(userID int64) (*models.PomodoroStats, error) {
			calls++
			return &models.PomodoroStats{Today: models.PomodoroTotals{Sessions: 2, Minutes: 50}}, nil
		},
	}
	router := newTestRouter(svc)

	for i := 0; i < 3; i++ {
		w := doRequest(router, http.MethodGet, "/api/pomodoro/stats", "11", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, calls, "repeated reads inside the TTL hit the cache")

	// Another user misses the cache.
	w := doRequest(router, http.MethodGet, "/api/pomodoro/stats", "12", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, calls)
}

func TestRequestIDEchoed(t *testing.T) {
	svc := &stubService{
		streak: func(userID int64) (*models.StreakRecord, error) {
			return &models.StreakRecord{UserID: userID}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/streak", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	// Absent header gets a generated one.
	req = httptest.NewRequest(http.MethodGet, "/api/streak", nil)
	req.Header.Set("X-User-ID", "1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
