package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

const (
	minSeats = 2
	maxSeats = 4
)

// Seat is a participant's fixed position in the turn rotation, assigned
// once at session creation.
type Seat struct {
	PlayerID string `json:"player_id"`
	Mark     Mark   `json:"mark"`
}

// TurnOrder is the cyclic rotation of seats with a cursor at the seat whose
// turn is current. Departed participants stay in the rotation but are
// skipped by Advance, so the cursor always points at an active seat.
type TurnOrder struct {
	seats    []Seat
	departed []bool
	cursor   int
}

// NewTurnOrder builds a rotation from the ordered seat list. The first seat
// holds the opening turn.
func NewTurnOrder(seats []Seat) (*TurnOrder, error) {
	if len(seats) < minSeats {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInsufficientPlayers, len(seats))
	}

	if len(seats) > maxSeats {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrTooManyPlayers, len(seats))
	}

	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if _, ok := seen[seat.PlayerID]; ok {
			return nil, fmt.Errorf("%w: player %s", apperror.ErrDuplicateSeat, seat.PlayerID)
		}
		seen[seat.PlayerID] = struct{}{}
	}

	owned := make([]Seat, len(seats))
	copy(owned, seats)

	return &TurnOrder{
		seats:    owned,
		departed: make([]bool, len(seats)),
	}, nil
}

// Current returns the player holding the turn.
func (that *TurnOrder) Current() string {
	return that.seats[that.cursor].PlayerID
}

// CurrentMark returns the mark of the player holding the turn.
func (that *TurnOrder) CurrentMark() Mark {
	return that.seats[that.cursor].Mark
}

// Advance moves the cursor to the next active seat in the rotation. It
// fails with ErrCorruptTurnState when no active seat remains, which a
// correctly serialized game never reaches: the session ends before the
// last active participant could be skipped.
func (that *TurnOrder) Advance() error {
	for step := 1; step <= len(that.seats); step++ {
		next := (that.cursor + step) % len(that.seats)
		if !that.departed[next] {
			that.cursor = next
			return nil
		}
	}

	return apperror.ErrCorruptTurnState
}

// SeatOf returns the mark assigned to the player, reporting whether the
// player holds a seat at all.
func (that *TurnOrder) SeatOf(playerID string) (Mark, bool) {
	for _, seat := range that.seats {
		if seat.PlayerID == playerID {
			return seat.Mark, true
		}
	}

	return NoMark, false
}

// MarkDeparted flags a seat as left. The seat stays in the rotation but is
// skipped from then on. Flagging an unknown player is a no-op.
func (that *TurnOrder) MarkDeparted(playerID string) {
	for i, seat := range that.seats {
		if seat.PlayerID == playerID {
			that.departed[i] = true
			return
		}
	}
}

// ActiveSeats returns the seats not flagged as departed, in rotation order.
func (that *TurnOrder) ActiveSeats() []Seat {
	active := make([]Seat, 0, len(that.seats))
	for i, seat := range that.seats {
		if !that.departed[i] {
			active = append(active, seat)
		}
	}

	return active
}

// Seats returns every seat in rotation order, departed ones included.
func (that *TurnOrder) Seats() []Seat {
	seats := make([]Seat, len(that.seats))
	copy(seats, that.seats)

	return seats
}
