package models

import "time"

// Team and Player are external identities managed elsewhere; the service only
// reads them to validate match teams and declared squads.
type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Player struct {
	ID        int       `json:"id"`
	TeamID    int       `json:"team_id"`
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}
