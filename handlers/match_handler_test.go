package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/matchcenter/server/handlers"
	"github.com/matchcenter/server/models"
	"github.com/matchcenter/server/routes"
	"github.com/matchcenter/server/scoreboard"
	"github.com/matchcenter/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatchService struct {
	appendFn func(ctx context.Context, matchID int, input services.AppendEventInput) (*models.Match, error)
	removeFn func(ctx context.Context, matchID, position int) (*models.Match, error)
	getFn    func(ctx context.Context, id int) (*models.Match, error)
	updateFn func(ctx context.Context, id int, input services.UpdateMatchInput) (*models.Match, error)
}

func (s *stubMatchService) CreateMatch(ctx context.Context, input services.CreateMatchInput) (*models.Match, error) {
	return nil, nil
}

func (s *stubMatchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	return s.getFn(ctx, id)
}

func (s *stubMatchService) ListMatches(ctx context.Context) ([]*models.Match, error) {
	return []*models.Match{}, nil
}

func (s *stubMatchService) UpdateMatch(ctx context.Context, id int, input services.UpdateMatchInput) (*models.Match, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubMatchService) DeleteMatch(ctx context.Context, id int) error { return nil }

func (s *stubMatchService) AppendEvent(ctx context.Context, matchID int, input services.AppendEventInput) (*models.Match, error) {
	return s.appendFn(ctx, matchID, input)
}

func (s *stubMatchService) RemoveEvent(ctx context.Context, matchID, position int) (*models.Match, error) {
	return s.removeFn(ctx, matchID, position)
}

func newTestRouter(svc services.MatchService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		handlers.NewMatchHandler(svc),
		handlers.NewWebSocketHandler(scoreboard.NewHub(logger), logger),
	)
	return router
}

func sampleMatch() *models.Match {
	team := 10
	player := 1
	return &models.Match{
		ID:         5,
		HomeTeamID: 10,
		AwayTeamID: 20,
		Date:       time.Date(2025, 9, 14, 18, 0, 0, 0, time.UTC),
		Status:     models.StatusInProgress,
		HomeSquad:  []int{1, 2},
		AwaySquad:  []int{3, 4},
		Events: models.Ledger{
			{ID: 1, Kind: models.EventKindStart},
			{ID: 2, Kind: models.EventKindGoal, TeamID: &team, PlayerID: &player, Period: models.PeriodFirst},
		},
		HomeScore: 1,
	}
}

func TestAppendEventEndpoint(t *testing.T) {
	svc := &stubMatchService{
		appendFn: func(ctx context.Context, matchID int, input services.AppendEventInput) (*models.Match, error) {
			assert.Equal(t, 5, matchID)
			assert.Equal(t, models.EventKindGoal, input.Kind)
			require.NotNil(t, input.TeamID)
			assert.Equal(t, 10, *input.TeamID)
			return sampleMatch(), nil
		},
	}
	router := newTestRouter(svc)

	body := `{"kind":"goal","team":10,"player":1,"minute":12,"second":30,"period":"first"}`
	req := httptest.NewRequest(http.MethodPost, "/matches/5/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Match struct {
			ID        int                 `json:"id"`
			HomeScore int                 `json:"home_score"`
			Events    []models.MatchEvent `json:"events"`
		} `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Match.ID)
	assert.Equal(t, 1, resp.Match.HomeScore)
	assert.Len(t, resp.Match.Events, 2)
}

func TestAppendEventEndpointValidationFailure(t *testing.T) {
	svc := &stubMatchService{
		appendFn: func(ctx context.Context, matchID int, input services.AppendEventInput) (*models.Match, error) {
			return nil, fmt.Errorf("%w: %w", services.ErrEventValidation, models.ErrEventTeamNotInMatch)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/matches/5/events", strings.NewReader(`{"kind":"goal","team":99}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "neither the home nor the away team")
}

func TestRemoveEventEndpointOutOfRange(t *testing.T) {
	svc := &stubMatchService{
		removeFn: func(ctx context.Context, matchID, position int) (*models.Match, error) {
			assert.Equal(t, 7, position)
			return nil, fmt.Errorf("%w: position 7, ledger length 2", services.ErrEventIndexOutOfRange)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/matches/5/events/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid event index")
}

func TestRemoveEventEndpointRejectsNegativePosition(t *testing.T) {
	router := newTestRouter(&stubMatchService{
		removeFn: func(ctx context.Context, matchID, position int) (*models.Match, error) {
			t.Fatal("service must not be called for a malformed position")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/matches/5/events/-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMatchEndpointNotFound(t *testing.T) {
	svc := &stubMatchService{
		getFn: func(ctx context.Context, id int) (*models.Match, error) {
			return nil, services.ErrMatchNotFound
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/matches/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMatchEndpoint(t *testing.T) {
	svc := &stubMatchService{
		updateFn: func(ctx context.Context, id int, input services.UpdateMatchInput) (*models.Match, error) {
			require.NotNil(t, input.Status)
			assert.Equal(t, models.StatusFinished, *input.Status)
			match := sampleMatch()
			match.Status = models.StatusFinished
			return match, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/matches/5", strings.NewReader(`{"status":"finished"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"finished"`)
}
