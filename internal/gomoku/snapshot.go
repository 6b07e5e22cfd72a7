package gomoku

import "time"

// Snapshot is a consistent, self-contained view of a session. It references
// nothing owned by the session, so it stays valid after further moves.
type Snapshot struct {
	ID              string     `json:"id"`
	BoardSize       int        `json:"board_size"`
	WinLength       int        `json:"win_length"`
	Board           [][]string `json:"board"`
	Status          Status     `json:"status"`
	CurrentPlayerID string     `json:"current_player_id,omitempty"`
	WinnerID        string     `json:"winner_id,omitempty"`
	Seats           []Seat     `json:"seats"`
	Moves           []Move     `json:"moves"`
	CreatedAt       time.Time  `json:"created_at"`
	EndedAt         time.Time  `json:"ended_at"`
}

// Snapshot captures the current state of the session. Like every other
// session method it must be serialized by the caller against in-flight
// mutations, so an observer never sees a half-applied move.
func (that *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:              that.id,
		BoardSize:       that.board.Size(),
		WinLength:       that.winLength,
		Board:           that.board.Cells(),
		Status:          that.status,
		CurrentPlayerID: that.nextPlayerID(),
		WinnerID:        that.winnerID,
		Seats:           that.turns.Seats(),
		Moves:           that.Moves(),
		CreatedAt:       that.createdAt,
		EndedAt:         that.endedAt,
	}
}
