package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matchcenter/server/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository is the read-only collaborator over externally managed teams
// and rosters; the match service uses it to validate teams and squad updates.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListPlayerIDs(ctx context.Context, teamID int) ([]int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListPlayerIDs(ctx context.Context, teamID int) ([]int, error) {
	query := `SELECT id FROM players WHERE team_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
