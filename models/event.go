package models

import "errors"

type EventKind string

const (
	// Chronology kinds: phase boundaries of the match clock. They carry no
	// team or player.
	EventKindStart           EventKind = "start"
	EventKindFirstHalfEnd    EventKind = "first_half_end"
	EventKindSecondHalfStart EventKind = "second_half_start"
	EventKindRegularTimeEnd  EventKind = "regular_time_end"
	EventKindExtra1Start     EventKind = "extra1_start"
	EventKindExtra1End       EventKind = "extra1_end"
	EventKindExtra2Start     EventKind = "extra2_start"
	EventKindExtra2End       EventKind = "extra2_end"
	EventKindShootoutStart   EventKind = "shootout_start"
	EventKindEnd             EventKind = "end"

	// Game kinds: in-play occurrences tied to a team and, for most kinds,
	// a player.
	EventKindGoal     EventKind = "goal"
	EventKindYellow   EventKind = "yellow"
	EventKindRed      EventKind = "red"
	EventKindFoul     EventKind = "foul"
	EventKindPenalty  EventKind = "penalty"
	EventKindTenMeter EventKind = "10m"
	EventKindOwnGoal  EventKind = "own_goal"
	EventKindTimeout  EventKind = "timeout"
)

type EventPeriod string

const (
	PeriodFirst    EventPeriod = "first"
	PeriodSecond   EventPeriod = "second"
	PeriodExtra1   EventPeriod = "extra1"
	PeriodExtra2   EventPeriod = "extra2"
	PeriodShootout EventPeriod = "shootout"
)

type EventResult string

const (
	EventResultScore EventResult = "score"
	EventResultMiss  EventResult = "miss"
)

var (
	ErrEventKindUnknown      = errors.New("unknown event kind")
	ErrEventTeamRequired     = errors.New("event kind requires a team")
	ErrEventTeamNotInMatch   = errors.New("event team is neither the home nor the away team")
	ErrEventPlayerRequired   = errors.New("event kind requires a player")
	ErrEventPlayerNotInSquad = errors.New("event player is not in the team's declared squad")
	ErrEventPeriodInvalid    = errors.New("invalid event period")
	ErrEventResultRequired   = errors.New("event kind requires a result of score or miss")
	ErrEventResultInvalid    = errors.New("invalid event result")
	ErrEventChronologyFields = errors.New("chronology event must not carry team or player")
)

// MatchEvent is a single entry of a match's event ledger. ID is assigned by
// the server at append time and stays stable across positional removals of
// other entries; the position inside the ledger is the entry's index.
type MatchEvent struct {
	ID       int         `json:"id"`
	Kind     EventKind   `json:"kind"`
	TeamID   *int        `json:"team,omitempty"`
	PlayerID *int        `json:"player,omitempty"`
	Minute   int         `json:"minute,omitempty"`
	Second   int         `json:"second,omitempty"`
	Period   EventPeriod `json:"period,omitempty"`
	Result   EventResult `json:"result,omitempty"`
}

func (k EventKind) Valid() bool {
	switch k {
	case EventKindStart, EventKindFirstHalfEnd, EventKindSecondHalfStart,
		EventKindRegularTimeEnd, EventKindExtra1Start, EventKindExtra1End,
		EventKindExtra2Start, EventKindExtra2End, EventKindShootoutStart,
		EventKindEnd, EventKindGoal, EventKindYellow, EventKindRed,
		EventKindFoul, EventKindPenalty, EventKindTenMeter,
		EventKindOwnGoal, EventKindTimeout:
		return true
	}
	return false
}

// IsChronology reports whether the kind marks a phase boundary of the match
// clock rather than an in-play occurrence.
func (k EventKind) IsChronology() bool {
	switch k {
	case EventKindStart, EventKindFirstHalfEnd, EventKindSecondHalfStart,
		EventKindRegularTimeEnd, EventKindExtra1Start, EventKindExtra1End,
		EventKindExtra2Start, EventKindExtra2End, EventKindShootoutStart,
		EventKindEnd:
		return true
	}
	return false
}

func (k EventKind) RequiresPlayer() bool {
	switch k {
	case EventKindGoal, EventKindYellow, EventKindRed, EventKindFoul,
		EventKindPenalty, EventKindTenMeter:
		return true
	}
	return false
}

func (k EventKind) RequiresResult() bool {
	return k == EventKindPenalty || k == EventKindTenMeter
}

func (p EventPeriod) Valid() bool {
	switch p {
	case PeriodFirst, PeriodSecond, PeriodExtra1, PeriodExtra2, PeriodShootout:
		return true
	}
	return false
}

// Validate checks the event against the closed kind set and the owning
// match's teams and declared squads. homeSquad and awaySquad are sets of
// player IDs declared for this match.
func (e *MatchEvent) Validate(homeTeamID, awayTeamID int, homeSquad, awaySquad map[int]bool) error {
	if !e.Kind.Valid() {
		return ErrEventKindUnknown
	}

	if e.Kind.IsChronology() {
		if e.TeamID != nil || e.PlayerID != nil {
			return ErrEventChronologyFields
		}
		return nil
	}

	if e.TeamID == nil {
		return ErrEventTeamRequired
	}
	if *e.TeamID != homeTeamID && *e.TeamID != awayTeamID {
		return ErrEventTeamNotInMatch
	}
	if !e.Period.Valid() {
		return ErrEventPeriodInvalid
	}

	if e.Kind.RequiresPlayer() {
		if e.PlayerID == nil {
			return ErrEventPlayerRequired
		}
		squad := homeSquad
		if *e.TeamID == awayTeamID {
			squad = awaySquad
		}
		if !squad[*e.PlayerID] {
			return ErrEventPlayerNotInSquad
		}
	}

	switch {
	case e.Kind.RequiresResult():
		if e.Result == "" {
			return ErrEventResultRequired
		}
		if e.Result != EventResultScore && e.Result != EventResultMiss {
			return ErrEventResultInvalid
		}
	case e.Result != "":
		return ErrEventResultInvalid
	}

	return nil
}
