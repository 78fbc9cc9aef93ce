package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/matchcenter/server/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match references an unknown team")
)

// MatchUpdate carries the optional non-ledger fields of a partial update.
// Nil fields are left untouched.
type MatchUpdate struct {
	Date       *time.Time
	HomeTeamID *int
	AwayTeamID *int
	Status     *models.MatchStatus
	HomeSquad  *[]int
	AwaySquad  *[]int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	// UpdateLedger persists the ledger together with its derived projections
	// and the lifecycle status in a single statement, so a reader never sees
	// a ledger that disagrees with the cached scores.
	UpdateLedger(ctx context.Context, id int, events models.Ledger, homeScore, awayScore int, status models.MatchStatus) error
	UpdateFields(ctx context.Context, id int, update MatchUpdate) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, home_team_id, away_team_id, date, status, home_squad, away_squad, events, home_score, away_score, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(home_team_id, away_team_id, date, status, home_squad, away_squad, events, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	eventsJSON, err := json.Marshal(match.Events.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal match events: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		match.HomeTeamID,
		match.AwayTeamID,
		match.Date,
		match.Status,
		intArray(match.HomeSquad),
		intArray(match.AwaySquad),
		eventsJSON,
		match.HomeScore,
		match.AwayScore,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateLedger(ctx context.Context, id int, events models.Ledger, homeScore, awayScore int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET events = $1, home_score = $2, away_score = $3, status = $4
		WHERE id = $5`

	eventsJSON, err := json.Marshal(events.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal match events: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, eventsJSON, homeScore, awayScore, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateFields(ctx context.Context, id int, update MatchUpdate) error {
	var setClauses []string
	var args []interface{}
	placeholder := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}

	if update.Date != nil {
		addClause("date", *update.Date)
	}
	if update.HomeTeamID != nil {
		addClause("home_team_id", *update.HomeTeamID)
	}
	if update.AwayTeamID != nil {
		addClause("away_team_id", *update.AwayTeamID)
	}
	if update.Status != nil {
		addClause("status", *update.Status)
	}
	if update.HomeSquad != nil {
		addClause("home_squad", intArray(*update.HomeSquad))
	}
	if update.AwaySquad != nil {
		addClause("away_squad", intArray(*update.AwaySquad))
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := "UPDATE matches SET " + strings.Join(setClauses, ", ") +
		" WHERE id = $" + strconv.Itoa(placeholder)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var homeSquad, awaySquad pq.Int64Array
	var eventsJSON []byte

	err := row.Scan(
		&match.ID,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.Date,
		&match.Status,
		&homeSquad,
		&awaySquad,
		&eventsJSON,
		&match.HomeScore,
		&match.AwayScore,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	match.HomeSquad = fromInt64Array(homeSquad)
	match.AwaySquad = fromInt64Array(awaySquad)

	match.Events = models.Ledger{}
	if len(eventsJSON) > 0 {
		if err := json.Unmarshal(eventsJSON, &match.Events); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events for match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		// Foreign key violation on home_team_id / away_team_id.
		return ErrMatchTeamInvalid
	}
	return err
}

func intArray(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return arr
}

func fromInt64Array(arr pq.Int64Array) []int {
	ids := make([]int, len(arr))
	for i, v := range arr {
		ids[i] = int(v)
	}
	return ids
}
