// Package scoreboard derives authoritative match state from an event ledger
// and fans committed mutations out to connected viewers.
package scoreboard

import "github.com/matchcenter/server/models"

// DerivedState is the authoritative projection of a ledger: always a full
// recompute, never an incremental patch of cached scores.
type DerivedState struct {
	HomeScore  int  `json:"home_score"`
	AwayScore  int  `json:"away_score"`
	HasStarted bool `json:"has_started"`
	HasEnded   bool `json:"has_ended"`
}

// Derive folds the event snapshot into scores and lifecycle flags. It is the
// single place score semantics live; every event contributes independently of
// prior totals, so the result does not depend on ledger order.
func Derive(events []models.MatchEvent, homeTeamID, awayTeamID int) DerivedState {
	var state DerivedState

	for _, e := range events {
		switch e.Kind {
		case models.EventKindStart:
			state.HasStarted = true
		case models.EventKindEnd:
			state.HasEnded = true
		case models.EventKindGoal:
			state.addFor(e.TeamID, homeTeamID, awayTeamID)
		case models.EventKindPenalty, models.EventKindTenMeter:
			if e.Result == models.EventResultScore {
				state.addFor(e.TeamID, homeTeamID, awayTeamID)
			}
		case models.EventKindOwnGoal:
			state.addAgainst(e.TeamID, homeTeamID, awayTeamID)
		case models.EventKindYellow, models.EventKindRed, models.EventKindFoul,
			models.EventKindTimeout, models.EventKindFirstHalfEnd,
			models.EventKindSecondHalfStart, models.EventKindRegularTimeEnd,
			models.EventKindExtra1Start, models.EventKindExtra1End,
			models.EventKindExtra2Start, models.EventKindExtra2End,
			models.EventKindShootoutStart:
			// no score effect
		}
	}

	return state
}

func (s *DerivedState) addFor(teamID *int, homeTeamID, awayTeamID int) {
	if teamID == nil {
		return
	}
	switch *teamID {
	case homeTeamID:
		s.HomeScore++
	case awayTeamID:
		s.AwayScore++
	}
}

// addAgainst credits the opposing side: an own goal by the home team counts
// for the away team and vice versa.
func (s *DerivedState) addAgainst(teamID *int, homeTeamID, awayTeamID int) {
	if teamID == nil {
		return
	}
	switch *teamID {
	case homeTeamID:
		s.AwayScore++
	case awayTeamID:
		s.HomeScore++
	}
}
