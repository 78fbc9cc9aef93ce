package scoreboard

import (
	"testing"

	"github.com/matchcenter/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	homeTeam = 10
	awayTeam = 20
)

func intPtr(v int) *int { return &v }

func goal(team int) models.MatchEvent {
	return models.MatchEvent{Kind: models.EventKindGoal, TeamID: intPtr(team), PlayerID: intPtr(1), Period: models.PeriodFirst}
}

func TestDeriveScenarios(t *testing.T) {
	tests := []struct {
		name   string
		events []models.MatchEvent
		want   DerivedState
	}{
		{
			name: "empty ledger",
			want: DerivedState{},
		},
		{
			name: "goals on both sides",
			events: []models.MatchEvent{
				{Kind: models.EventKindStart},
				goal(homeTeam),
				goal(awayTeam),
				goal(homeTeam),
			},
			want: DerivedState{HomeScore: 2, AwayScore: 1, HasStarted: true},
		},
		{
			name: "own goal credits the opponent",
			events: []models.MatchEvent{
				{Kind: models.EventKindStart},
				{Kind: models.EventKindOwnGoal, TeamID: intPtr(homeTeam), Period: models.PeriodFirst},
				{Kind: models.EventKindEnd},
			},
			want: DerivedState{HomeScore: 0, AwayScore: 1, HasStarted: true, HasEnded: true},
		},
		{
			name: "missed penalty does not score",
			events: []models.MatchEvent{
				{Kind: models.EventKindStart},
				{Kind: models.EventKindPenalty, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: models.PeriodShootout, Result: models.EventResultMiss},
				{Kind: models.EventKindPenalty, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: models.PeriodShootout, Result: models.EventResultScore},
			},
			want: DerivedState{HomeScore: 1, AwayScore: 0, HasStarted: true},
		},
		{
			name: "10m scored counts like a goal",
			events: []models.MatchEvent{
				{Kind: models.EventKindTenMeter, TeamID: intPtr(awayTeam), PlayerID: intPtr(3), Period: models.PeriodSecond, Result: models.EventResultScore},
			},
			want: DerivedState{HomeScore: 0, AwayScore: 1},
		},
		{
			name: "cards fouls and timeouts have no score effect",
			events: []models.MatchEvent{
				{Kind: models.EventKindStart},
				{Kind: models.EventKindYellow, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: models.PeriodFirst},
				{Kind: models.EventKindRed, TeamID: intPtr(awayTeam), PlayerID: intPtr(3), Period: models.PeriodFirst},
				{Kind: models.EventKindFoul, TeamID: intPtr(homeTeam), PlayerID: intPtr(2), Period: models.PeriodSecond},
				{Kind: models.EventKindTimeout, TeamID: intPtr(awayTeam), Period: models.PeriodSecond},
				{Kind: models.EventKindFirstHalfEnd},
				{Kind: models.EventKindSecondHalfStart},
			},
			want: DerivedState{HasStarted: true},
		},
		{
			name: "chronology boundaries set only the flags they own",
			events: []models.MatchEvent{
				{Kind: models.EventKindRegularTimeEnd},
				{Kind: models.EventKindExtra1Start},
				{Kind: models.EventKindExtra1End},
				{Kind: models.EventKindExtra2Start},
				{Kind: models.EventKindExtra2End},
				{Kind: models.EventKindShootoutStart},
			},
			want: DerivedState{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.events, homeTeam, awayTeam))
		})
	}
}

func TestDeriveIsPure(t *testing.T) {
	events := []models.MatchEvent{
		{Kind: models.EventKindStart},
		goal(homeTeam),
		{Kind: models.EventKindOwnGoal, TeamID: intPtr(awayTeam), Period: models.PeriodSecond},
	}

	first := Derive(events, homeTeam, awayTeam)
	second := Derive(events, homeTeam, awayTeam)
	assert.Equal(t, first, second)
	assert.Equal(t, DerivedState{HomeScore: 2, AwayScore: 0, HasStarted: true}, first)
}

func TestDeriveOrderIndependentTotals(t *testing.T) {
	forward := []models.MatchEvent{
		{Kind: models.EventKindStart},
		goal(homeTeam),
		goal(awayTeam),
		{Kind: models.EventKindEnd},
	}
	reversed := []models.MatchEvent{
		{Kind: models.EventKindEnd},
		goal(awayTeam),
		goal(homeTeam),
		{Kind: models.EventKindStart},
	}

	assert.Equal(t, Derive(forward, homeTeam, awayTeam), Derive(reversed, homeTeam, awayTeam))
}

func TestDeriveRemovalRestoresPriorState(t *testing.T) {
	ledger := models.Ledger{
		{ID: 1, Kind: models.EventKindStart},
		{ID: 2, Kind: models.EventKindGoal, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: models.PeriodFirst},
	}
	before := Derive(ledger, homeTeam, awayTeam)

	pos := ledger.Append(goal(awayTeam))
	_, err := ledger.RemoveAt(pos)
	require.NoError(t, err)

	assert.Equal(t, before, Derive(ledger, homeTeam, awayTeam))
}

func TestDeriveRemovingScoringEvent(t *testing.T) {
	ledger := models.Ledger{
		{ID: 1, Kind: models.EventKindStart},
		{ID: 2, Kind: models.EventKindGoal, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: models.PeriodFirst},
		{ID: 3, Kind: models.EventKindGoal, TeamID: intPtr(awayTeam), PlayerID: intPtr(3), Period: models.PeriodFirst},
	}

	_, err := ledger.RemoveAt(1)
	require.NoError(t, err)

	state := Derive(ledger, homeTeam, awayTeam)
	assert.Equal(t, DerivedState{HomeScore: 0, AwayScore: 1, HasStarted: true}, state)
	assert.GreaterOrEqual(t, state.HomeScore, 0)
	assert.GreaterOrEqual(t, state.AwayScore, 0)
}
