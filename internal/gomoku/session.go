package gomoku

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// Status is the lifecycle state of a session. Every state except
// StatusInProgress is terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDraw       Status = "draw"
	StatusResigned   Status = "resigned"
	StatusCancelled  Status = "cancelled"
	StatusTimedOut   Status = "timed_out"
)

func (s Status) Terminal() bool {
	return s != StatusInProgress
}

// Session is the authoritative state machine of a single match. It owns the
// board, the turn rotation and the move log; nothing else mutates them.
// Session itself is not safe for concurrent use - the coordinator
// serializes access per game.
type Session struct {
	id        string
	board     *Board
	turns     *TurnOrder
	moves     []Move
	winLength int
	status    Status
	winnerID  string
	createdAt time.Time
	endedAt   time.Time
}

// NewSession validates the match parameters and builds a fresh session with
// the opening turn at the first seat.
func NewSession(id string, boardSize, winLength int, seats []Seat) (*Session, error) {
	if boardSize < MinBoardSize || boardSize > MaxBoardSize {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidBoardSize, boardSize)
	}

	if winLength < MinWinLength || winLength > MaxWinLength || winLength > boardSize {
		return nil, fmt.Errorf("%w: got %d for board %d", apperror.ErrInvalidWinLength, winLength, boardSize)
	}

	turns, err := NewTurnOrder(seats)
	if err != nil {
		return nil, fmt.Errorf("failed to build turn order: %w", err)
	}

	return &Session{
		id:        id,
		board:     NewBoard(boardSize),
		turns:     turns,
		winLength: winLength,
		status:    StatusInProgress,
		createdAt: time.Now().UTC(),
	}, nil
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) Status() Status {
	return that.status
}

func (that *Session) WinnerID() string {
	return that.winnerID
}

// ApplyMove validates and applies one move for the given player. A failed
// call leaves the session untouched. On success it returns the emitted
// events: always one MoveApplied, followed by GameEnded when the move
// finished the game. Win takes precedence over draw when the final cell
// both completes a run and fills the board.
func (that *Session) ApplyMove(playerID string, row, col int) ([]Event, error) {
	if that.status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", apperror.ErrGameNotInProgress, that.status)
	}

	// The seat lookup runs before the turn check: an outsider can never
	// hold the turn, so checking the turn first would report every
	// non-participant as merely out of turn.
	mark, ok := that.turns.SeatOf(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, playerID)
	}

	if that.turns.Current() != playerID {
		return nil, fmt.Errorf("%w: current turn is %s", apperror.ErrNotYourTurn, that.turns.Current())
	}

	if err := that.board.Place(row, col, mark); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	move := Move{
		Number:   len(that.moves) + 1,
		Row:      row,
		Col:      col,
		Mark:     mark,
		PlayerID: playerID,
		PlayedAt: time.Now().UTC(),
	}
	that.moves = append(that.moves, move)

	switch {
	case that.board.CheckWin(row, col, mark, that.winLength):
		that.status = StatusCompleted
		that.winnerID = playerID
		that.endedAt = time.Now().UTC()
	case that.board.IsFull():
		that.status = StatusDraw
		that.endedAt = time.Now().UTC()
	default:
		if err := that.turns.Advance(); err != nil {
			return nil, fmt.Errorf("failed to advance turn: %w", err)
		}
	}

	events := []Event{{
		Type:         EventMoveApplied,
		GameID:       that.id,
		Move:         &move,
		NextPlayerID: that.nextPlayerID(),
		Status:       that.status,
	}}

	if that.status.Terminal() {
		events = append(events, that.endedEvent())
	}

	return events, nil
}

// Resign ends the game on behalf of the resigning participant. In a
// two-player game the remaining seat wins; with three or four players the
// winner stays unset.
func (that *Session) Resign(playerID string) ([]Event, error) {
	if that.status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", apperror.ErrGameNotInProgress, that.status)
	}

	if _, ok := that.turns.SeatOf(playerID); !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, playerID)
	}

	that.turns.MarkDeparted(playerID)
	that.status = StatusResigned
	that.endedAt = time.Now().UTC()

	if seats := that.turns.Seats(); len(seats) == 2 {
		for _, seat := range seats {
			if seat.PlayerID != playerID {
				that.winnerID = seat.PlayerID
				break
			}
		}
	}

	return []Event{that.endedEvent()}, nil
}

// OfferDraw relays a draw offer to the other participants. The session
// keeps no offer state; accepting is a separate RespondDraw call.
func (that *Session) OfferDraw(playerID string) ([]Event, error) {
	if that.status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", apperror.ErrGameNotInProgress, that.status)
	}

	if _, ok := that.turns.SeatOf(playerID); !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, playerID)
	}

	return []Event{{
		Type:   EventDrawOffered,
		GameID: that.id,
		ByID:   playerID,
	}}, nil
}

// RespondDraw answers a draw offer. Accepting ends the game as a draw, the
// same terminal state the full board produces.
func (that *Session) RespondDraw(playerID string, accept bool) ([]Event, error) {
	if that.status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", apperror.ErrGameNotInProgress, that.status)
	}

	if _, ok := that.turns.SeatOf(playerID); !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotAParticipant, playerID)
	}

	events := []Event{{
		Type:     EventDrawAnswered,
		GameID:   that.id,
		ByID:     playerID,
		Accepted: accept,
	}}

	if accept {
		that.status = StatusDraw
		that.endedAt = time.Now().UTC()
		events = append(events, that.endedEvent())
	}

	return events, nil
}

// Cancel terminates the game administratively. The cause must be
// StatusCancelled or StatusTimedOut; timeouts are driven by the
// surrounding application's clock, the session runs no timers of its own.
func (that *Session) Cancel(cause Status) ([]Event, error) {
	if cause != StatusCancelled && cause != StatusTimedOut {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidCancelCause, cause)
	}

	if that.status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", apperror.ErrGameNotInProgress, that.status)
	}

	that.status = cause
	that.endedAt = time.Now().UTC()

	return []Event{that.endedEvent()}, nil
}

// Moves returns a copy of the append-only move log.
func (that *Session) Moves() []Move {
	moves := make([]Move, len(that.moves))
	copy(moves, that.moves)

	return moves
}

func (that *Session) nextPlayerID() string {
	if that.status.Terminal() {
		return ""
	}

	return that.turns.Current()
}

func (that *Session) endedEvent() Event {
	return Event{
		Type:     EventGameEnded,
		GameID:   that.id,
		Cause:    that.status,
		WinnerID: that.winnerID,
	}
}
