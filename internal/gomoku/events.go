package gomoku

import "time"

type EventType string

const (
	EventMoveApplied  EventType = "move_applied"
	EventGameEnded    EventType = "game_ended"
	EventDrawOffered  EventType = "draw_offered"
	EventDrawAnswered EventType = "draw_answered"
)

// Event is an outbound notification describing one state transition.
// Events are immutable and must be delivered to observers in emission
// order per game.
type Event struct {
	Type   EventType `json:"type"`
	GameID string    `json:"game_id"`

	// MoveApplied
	Move         *Move  `json:"move,omitempty"`
	NextPlayerID string `json:"next_player_id,omitempty"`
	Status       Status `json:"status,omitempty"`

	// GameEnded
	Cause    Status `json:"cause,omitempty"`
	WinnerID string `json:"winner_id,omitempty"`

	// DrawOffered / DrawAnswered
	ByID     string `json:"by_id,omitempty"`
	Accepted bool   `json:"accepted,omitempty"`
}

// Move is an immutable entry of the session's append-only move log.
// Numbers start at 1 and are gapless.
type Move struct {
	Number   int       `json:"number"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	Mark     Mark      `json:"mark"`
	PlayerID string    `json:"player_id"`
	PlayedAt time.Time `json:"played_at"`
}
