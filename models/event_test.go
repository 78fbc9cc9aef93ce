package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestMatchEventValidate(t *testing.T) {
	const (
		homeTeam = 10
		awayTeam = 20
	)
	homeSquad := map[int]bool{1: true, 2: true}
	awaySquad := map[int]bool{3: true, 4: true}

	tests := []struct {
		name    string
		event   MatchEvent
		wantErr error
	}{
		{
			name:  "chronology kind with no fields",
			event: MatchEvent{Kind: EventKindStart},
		},
		{
			name:    "chronology kind with team",
			event:   MatchEvent{Kind: EventKindEnd, TeamID: intPtr(homeTeam)},
			wantErr: ErrEventChronologyFields,
		},
		{
			name:    "unknown kind",
			event:   MatchEvent{Kind: EventKind("corner")},
			wantErr: ErrEventKindUnknown,
		},
		{
			name:  "goal by home player",
			event: MatchEvent{Kind: EventKindGoal, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: PeriodFirst},
		},
		{
			name:    "goal without team",
			event:   MatchEvent{Kind: EventKindGoal, PlayerID: intPtr(1), Period: PeriodFirst},
			wantErr: ErrEventTeamRequired,
		},
		{
			name:    "goal by team outside the match",
			event:   MatchEvent{Kind: EventKindGoal, TeamID: intPtr(99), PlayerID: intPtr(1), Period: PeriodFirst},
			wantErr: ErrEventTeamNotInMatch,
		},
		{
			name:    "goal without player",
			event:   MatchEvent{Kind: EventKindGoal, TeamID: intPtr(homeTeam), Period: PeriodFirst},
			wantErr: ErrEventPlayerRequired,
		},
		{
			name:    "goal by away player listed in home squad only",
			event:   MatchEvent{Kind: EventKindGoal, TeamID: intPtr(awayTeam), PlayerID: intPtr(1), Period: PeriodFirst},
			wantErr: ErrEventPlayerNotInSquad,
		},
		{
			name:    "game kind with invalid period",
			event:   MatchEvent{Kind: EventKindYellow, TeamID: intPtr(homeTeam), PlayerID: intPtr(2), Period: EventPeriod("third")},
			wantErr: ErrEventPeriodInvalid,
		},
		{
			name:    "penalty without result",
			event:   MatchEvent{Kind: EventKindPenalty, TeamID: intPtr(awayTeam), PlayerID: intPtr(3), Period: PeriodShootout},
			wantErr: ErrEventResultRequired,
		},
		{
			name:  "penalty with miss result",
			event: MatchEvent{Kind: EventKindPenalty, TeamID: intPtr(awayTeam), PlayerID: intPtr(3), Period: PeriodShootout, Result: EventResultMiss},
		},
		{
			name:    "penalty with bogus result",
			event:   MatchEvent{Kind: EventKindTenMeter, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: PeriodSecond, Result: EventResult("saved")},
			wantErr: ErrEventResultInvalid,
		},
		{
			name:    "goal carrying a result",
			event:   MatchEvent{Kind: EventKindGoal, TeamID: intPtr(homeTeam), PlayerID: intPtr(1), Period: PeriodFirst, Result: EventResultScore},
			wantErr: ErrEventResultInvalid,
		},
		{
			name:  "own goal needs no player",
			event: MatchEvent{Kind: EventKindOwnGoal, TeamID: intPtr(homeTeam), Period: PeriodSecond},
		},
		{
			name:  "timeout needs no player",
			event: MatchEvent{Kind: EventKindTimeout, TeamID: intPtr(awayTeam), Period: PeriodExtra1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate(homeTeam, awayTeam, homeSquad, awaySquad)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEventKindClassification(t *testing.T) {
	assert.True(t, EventKindShootoutStart.IsChronology())
	assert.False(t, EventKindOwnGoal.IsChronology())

	assert.True(t, EventKindTenMeter.RequiresPlayer())
	assert.False(t, EventKindOwnGoal.RequiresPlayer())
	assert.False(t, EventKindTimeout.RequiresPlayer())

	assert.True(t, EventKindPenalty.RequiresResult())
	assert.False(t, EventKindGoal.RequiresResult())
}
