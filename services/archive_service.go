package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/matchcenter/server/models"
	"github.com/matchcenter/server/storage"
)

const archiveTimeout = 30 * time.Second

// ArchiveService exports the final ledger of a finished match to object
// storage. It runs off the mutation path: failures are logged, never
// surfaced to the caller that committed the mutation.
type ArchiveService struct {
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewArchiveService(store storage.ObjectStore, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{store: store, logger: logger}
}

type ledgerArchive struct {
	MatchID    int                 `json:"match_id"`
	HomeTeamID int                 `json:"home_team_id"`
	AwayTeamID int                 `json:"away_team_id"`
	HomeScore  int                 `json:"home_score"`
	AwayScore  int                 `json:"away_score"`
	Events     []models.MatchEvent `json:"events"`
	ArchivedAt time.Time           `json:"archived_at"`
}

func (s *ArchiveService) ArchiveFinalLedger(ctx context.Context, match *models.Match) {
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	doc := ledgerArchive{
		MatchID:    match.ID,
		HomeTeamID: match.HomeTeamID,
		AwayTeamID: match.AwayTeamID,
		HomeScore:  match.HomeScore,
		AwayScore:  match.AwayScore,
		Events:     match.Events.Snapshot(),
		ArchivedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error("failed to marshal ledger archive",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("matches/%d/ledger.json", match.ID)
	result, err := s.store.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to archive match ledger",
			slog.Int("match_id", match.ID), slog.String("key", key), slog.Any("error", err))
		return
	}

	s.logger.Info("match ledger archived",
		slog.Int("match_id", match.ID),
		slog.String("key", result.Key),
		slog.String("location", result.Location),
	)
}
