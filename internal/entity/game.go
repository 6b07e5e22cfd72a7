package entity

import "time"

// GameRecord is the serializable snapshot of a match, the shape stored in
// redis for live games, archived to sqlite once finished, and pushed to
// clients asking for full state. Participant display names are resolved by
// the caller from the player store; the record holds identifiers only.
type GameRecord struct {
	ID         string       `json:"id"`
	BoardSize  int          `json:"board_size"`
	WinLength  int          `json:"win_length"`
	Board      [][]string   `json:"board"`
	Status     string       `json:"status"`
	Turn       string       `json:"player_turn,omitempty"`
	WinnerID   string       `json:"winner_id,omitempty"`
	Players    []*Player    `json:"players,omitempty"`
	Moves      []MoveRecord `json:"moves,omitempty"`
	TotalMoves int          `json:"total_moves"`
	CreatedAt  time.Time    `json:"created_at"`
	EndedAt    time.Time    `json:"ended_at"`
}

// MoveRecord is one entry of a game's move log. Numbers are 1-based and
// gapless.
type MoveRecord struct {
	Number   int       `json:"number"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	Symbol   string    `json:"symbol"`
	PlayerID string    `json:"player_id"`
	PlayedAt time.Time `json:"played_at"`
}

func (that *GameRecord) IsFinished() bool {
	return !that.EndedAt.IsZero()
}
