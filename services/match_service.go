package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matchcenter/server/models"
	"github.com/matchcenter/server/repositories"
	"github.com/matchcenter/server/scoreboard"
	"golang.org/x/sync/errgroup"
)

// persistTimeout bounds the only potentially slow step of a mutation. A
// timeout surfaces as an error to the caller; there is no retry.
const persistTimeout = 5 * time.Second

// Broadcaster is the fan-out collaborator. Injected rather than reached for
// globally so tests can swap a recorder and deployments can shard it.
type Broadcaster interface {
	Publish(msg scoreboard.Message)
}

type CreateMatchInput struct {
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	Date       time.Time `json:"date"`
	HomeSquad  []int     `json:"home_squad"`
	AwaySquad  []int     `json:"away_squad"`
}

type UpdateMatchInput struct {
	Date       *time.Time          `json:"date,omitempty"`
	HomeTeamID *int                `json:"home_team_id,omitempty"`
	AwayTeamID *int                `json:"away_team_id,omitempty"`
	Status     *models.MatchStatus `json:"status,omitempty"`
	HomeSquad  *[]int              `json:"home_squad,omitempty"`
	AwaySquad  *[]int              `json:"away_squad,omitempty"`
}

type AppendEventInput struct {
	Kind     models.EventKind   `json:"kind"`
	TeamID   *int               `json:"team,omitempty"`
	PlayerID *int               `json:"player,omitempty"`
	Minute   int                `json:"minute"`
	Second   int                `json:"second"`
	Period   models.EventPeriod `json:"period,omitempty"`
	Result   models.EventResult `json:"result,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error
	AppendEvent(ctx context.Context, matchID int, input AppendEventInput) (*models.Match, error)
	RemoveEvent(ctx context.Context, matchID, position int) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	hub       Broadcaster
	archiver  *ArchiveService
	logger    *slog.Logger

	// Per-match lock arena: every read-modify-write of one match's ledger is
	// serialized, while mutations of different matches proceed in parallel.
	// Entries are never removed; matches are few and locks are tiny.
	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	hub Broadcaster,
	archiver *ArchiveService,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		hub:       hub,
		archiver:  archiver,
		logger:    logger,
		locks:     make(map[int]*sync.Mutex),
	}
}

func (s *matchService) lockMatch(matchID int) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[matchID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[matchID] = mu
	}
	return mu
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrMatchSameTeam
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.checkTeamSquad(gctx, input.HomeTeamID, input.HomeSquad) })
	g.Go(func() error { return s.checkTeamSquad(gctx, input.AwayTeamID, input.AwaySquad) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	match := &models.Match{
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		Date:       input.Date,
		Status:     models.StatusScheduled,
		HomeSquad:  input.HomeSquad,
		AwaySquad:  input.AwaySquad,
		Events:     models.Ledger{},
	}

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := s.matchRepo.Create(pctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.Info("match created",
		slog.Int("match_id", match.ID),
		slog.Int("home_team_id", match.HomeTeamID),
		slog.Int("away_team_id", match.AwayTeamID),
	)
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	return s.loadMatch(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	mu := s.lockMatch(id)
	mu.Lock()
	defer mu.Unlock()

	match, err := s.loadMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrMatchInvalidStatus
	}

	homeTeamID := match.HomeTeamID
	if input.HomeTeamID != nil {
		homeTeamID = *input.HomeTeamID
	}
	awayTeamID := match.AwayTeamID
	if input.AwayTeamID != nil {
		awayTeamID = *input.AwayTeamID
	}
	if homeTeamID == awayTeamID {
		return nil, ErrMatchSameTeam
	}

	g, gctx := errgroup.WithContext(ctx)
	if input.HomeTeamID != nil || input.HomeSquad != nil {
		squad := match.HomeSquad
		if input.HomeSquad != nil {
			squad = *input.HomeSquad
		}
		g.Go(func() error { return s.checkTeamSquad(gctx, homeTeamID, squad) })
	}
	if input.AwayTeamID != nil || input.AwaySquad != nil {
		squad := match.AwaySquad
		if input.AwaySquad != nil {
			squad = *input.AwaySquad
		}
		g.Go(func() error { return s.checkTeamSquad(gctx, awayTeamID, squad) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	update := repositories.MatchUpdate{
		Date:       input.Date,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		Status:     input.Status,
		HomeSquad:  input.HomeSquad,
		AwaySquad:  input.AwaySquad,
	}

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := s.matchRepo.UpdateFields(pctx, id, update); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update match %d: %w", id, err)
	}

	updated, err := s.loadMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(scoreboard.Message{
		Type: scoreboard.MessageTypeMatchUpdate,
		Payload: scoreboard.MatchUpdatePayload{
			MatchID: id,
			Updates: matchUpdates(input),
		},
	})
	return updated, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	mu := s.lockMatch(id)
	mu.Lock()
	defer mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := s.matchRepo.Delete(pctx, id); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	s.logger.Info("match deleted", slog.Int("match_id", id))
	return nil
}

// AppendEvent is one transaction against one match: validate, append,
// re-derive, persist, then fan out. Nothing is published on any failure.
func (s *matchService) AppendEvent(ctx context.Context, matchID int, input AppendEventInput) (*models.Match, error) {
	mu := s.lockMatch(matchID)
	mu.Lock()
	defer mu.Unlock()

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	event := models.MatchEvent{
		Kind:     input.Kind,
		TeamID:   input.TeamID,
		PlayerID: input.PlayerID,
		Minute:   input.Minute,
		Second:   input.Second,
		Period:   input.Period,
		Result:   input.Result,
	}
	homeSquad, awaySquad := match.SquadSets()
	if err := event.Validate(match.HomeTeamID, match.AwayTeamID, homeSquad, awaySquad); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEventValidation, err)
	}
	event.ID = match.Events.NextEventID()

	events := match.Events.Snapshot()
	events.Append(event)

	state := scoreboard.Derive(events, match.HomeTeamID, match.AwayTeamID)

	// start and end double as lifecycle instructions, independent of the
	// derived flags.
	status := match.Status
	switch event.Kind {
	case models.EventKindStart:
		status = models.StatusInProgress
	case models.EventKindEnd:
		status = models.StatusFinished
	}

	if err := s.persistLedger(ctx, matchID, events, state, status); err != nil {
		return nil, err
	}

	match.Events = events
	match.HomeScore = state.HomeScore
	match.AwayScore = state.AwayScore
	match.Status = status

	s.hub.Publish(scoreboard.Message{
		Type: scoreboard.MessageTypeEventUpdate,
		Payload: scoreboard.EventUpdatePayload{
			MatchID:   matchID,
			Events:    events,
			HomeScore: state.HomeScore,
			AwayScore: state.AwayScore,
			Action:    scoreboard.ActionAdded,
			LastEvent: &event,
		},
	})

	if status == models.StatusFinished && s.archiver != nil {
		// Fire-and-forget; archival must never delay or fail a commit.
		go s.archiver.ArchiveFinalLedger(context.Background(), match)
	}

	return match, nil
}

func (s *matchService) RemoveEvent(ctx context.Context, matchID, position int) (*models.Match, error) {
	mu := s.lockMatch(matchID)
	mu.Lock()
	defer mu.Unlock()

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	events := match.Events.Snapshot()
	removed, err := events.RemoveAt(position)
	if err != nil {
		return nil, fmt.Errorf("%w: position %d, ledger length %d",
			ErrEventIndexOutOfRange, position, len(events))
	}

	state := scoreboard.Derive(events, match.HomeTeamID, match.AwayTeamID)

	if err := s.persistLedger(ctx, matchID, events, state, match.Status); err != nil {
		return nil, err
	}

	match.Events = events
	match.HomeScore = state.HomeScore
	match.AwayScore = state.AwayScore

	s.hub.Publish(scoreboard.Message{
		Type: scoreboard.MessageTypeEventUpdate,
		Payload: scoreboard.EventUpdatePayload{
			MatchID:      matchID,
			Events:       events,
			HomeScore:    state.HomeScore,
			AwayScore:    state.AwayScore,
			Action:       scoreboard.ActionRemoved,
			RemovedEvent: &removed,
		},
	})

	return match, nil
}

func (s *matchService) loadMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) persistLedger(ctx context.Context, id int, events models.Ledger, state scoreboard.DerivedState, status models.MatchStatus) error {
	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	err := s.matchRepo.UpdateLedger(pctx, id, events, state.HomeScore, state.AwayScore, status)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to persist ledger for match %d: %w", id, err)
	}
	return nil
}

// checkTeamSquad verifies the team exists and every declared squad member
// belongs to its roster.
func (s *matchService) checkTeamSquad(ctx context.Context, teamID int, squad []int) error {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if len(squad) == 0 {
		return nil
	}
	playerIDs, err := s.teamRepo.ListPlayerIDs(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to load roster of team %d: %w", teamID, err)
	}
	roster := make(map[int]bool, len(playerIDs))
	for _, id := range playerIDs {
		roster[id] = true
	}
	for _, id := range squad {
		if !roster[id] {
			return fmt.Errorf("%w: player %d, team %d", ErrSquadPlayerNotInTeam, id, teamID)
		}
	}
	return nil
}

func matchUpdates(input UpdateMatchInput) map[string]interface{} {
	updates := make(map[string]interface{})
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.HomeTeamID != nil {
		updates["home_team_id"] = *input.HomeTeamID
	}
	if input.AwayTeamID != nil {
		updates["away_team_id"] = *input.AwayTeamID
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.HomeSquad != nil {
		updates["home_squad"] = *input.HomeSquad
	}
	if input.AwaySquad != nil {
		updates["away_squad"] = *input.AwaySquad
	}
	return updates
}
