package models

import "time"

type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusFinished   MatchStatus = "finished"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// Match owns one event ledger. HomeScore and AwayScore are cached projections
// of the ledger, recomputed in full on every committed mutation; they are
// never the source of truth.
type Match struct {
	ID         int         `json:"id"`
	HomeTeamID int         `json:"home_team_id"`
	AwayTeamID int         `json:"away_team_id"`
	Date       time.Time   `json:"date"`
	Status     MatchStatus `json:"status"`
	HomeSquad  []int       `json:"home_squad"`
	AwaySquad  []int       `json:"away_squad"`
	Events     Ledger      `json:"events"`
	HomeScore  int         `json:"home_score"`
	AwayScore  int         `json:"away_score"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SquadSets returns the declared squads as lookup sets keyed by player ID.
func (m *Match) SquadSets() (home, away map[int]bool) {
	home = make(map[int]bool, len(m.HomeSquad))
	for _, id := range m.HomeSquad {
		home[id] = true
	}
	away = make(map[int]bool, len(m.AwaySquad))
	for _, id := range m.AwaySquad {
		away[id] = true
	}
	return home, away
}
