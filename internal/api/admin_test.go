package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type stubStore struct {
	mock.Mock
}

func (m *stubStore) CreateForecast(ctx context.Context, f *store.Forecast) error {
	return m.Called(ctx, f).Error(0)
}
func (m *stubStore) GetForecast(ctx context.Context, id uuid.UUID) (*store.Forecast, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*store.Forecast)
	return f, args.Error(1)
}
func (m *stubStore) ListForecasts(ctx context.Context, filter store.ForecastFilter) ([]*store.Forecast, error) {
	args := m.Called(ctx, filter)
	fs, _ := args.Get(0).([]*store.Forecast)
	return fs, args.Error(1)
}
func (m *stubStore) UpdateForecast(ctx context.Context, f *store.Forecast) error {
	return m.Called(ctx, f).Error(0)
}
func (m *stubStore) DeleteForecast(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *stubStore) CreateComparison(ctx context.Context, c *store.ComparisonRecord) error {
	return m.Called(ctx, c).Error(0)
}
func (m *stubStore) GetComparison(ctx context.Context, id uuid.UUID) (*store.ComparisonRecord, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*store.ComparisonRecord)
	return c, args.Error(1)
}
func (m *stubStore) ListComparisons(ctx context.Context, filter store.ComparisonFilter) ([]*store.ComparisonRecord, error) {
	args := m.Called(ctx, filter)
	cs, _ := args.Get(0).([]*store.ComparisonRecord)
	return cs, args.Error(1)
}
func (m *stubStore) PruneComparisons(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
func (m *stubStore) GetStats(ctx context.Context) (*store.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*store.Stats)
	return s, args.Error(1)
}
func (m *stubStore) Close() error { return nil }

func TestAdminStats(t *testing.T) {
	s := &stubStore{}
	s.On("GetStats", mock.Anything).Return(&store.Stats{
		TotalForecasts:      12,
		TotalTruths:         3,
		TotalComparisons:    7,
		InfiniteComparisons: 2,
	}, nil)

	h := NewAdminHandler(s, testConfig(t))
	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats store.Stats
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.TotalForecasts)
	assert.Equal(t, 2, stats.InfiniteComparisons)
	s.AssertExpectations(t)
}

func TestAdminPruneDefaultTTL(t *testing.T) {
	s := &stubStore{}
	cfg := testConfig(t)

	// Without an explicit window the cutoff comes from the retention TTL.
	want := time.Now().Add(-cfg.ComparisonTTL())
	s.On("PruneComparisons", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
		return before.Sub(want).Abs() < time.Minute
	})).Return(int64(5), nil)

	h := NewAdminHandler(s, cfg)
	req := httptest.NewRequest("POST", "/api/v1/comparisons/prune", nil)
	w := httptest.NewRecorder()
	h.Prune(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pruned": 5}`, w.Body.String())
	s.AssertExpectations(t)
}

func TestAdminPruneCustomWindow(t *testing.T) {
	s := &stubStore{}

	want := time.Now().Add(-24 * time.Hour)
	s.On("PruneComparisons", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
		return before.Sub(want).Abs() < time.Minute
	})).Return(int64(0), nil)

	h := NewAdminHandler(s, testConfig(t))
	body := bytes.NewReader([]byte(`{"older_than_hours": 24}`))
	req := httptest.NewRequest("POST", "/api/v1/comparisons/prune", body)
	w := httptest.NewRecorder()
	h.Prune(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	s.AssertExpectations(t)
}

func TestAdminPruneStoreError(t *testing.T) {
	s := &stubStore{}
	s.On("PruneComparisons", mock.Anything, mock.Anything).
		Return(int64(0), assert.AnError)

	h := NewAdminHandler(s, testConfig(t))
	req := httptest.NewRequest("POST", "/api/v1/comparisons/prune", nil)
	w := httptest.NewRecorder()
	h.Prune(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
