package apperror

import "errors"

var (
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotAParticipant   = errors.New("player is not a participant of this game")
	ErrOutOfBounds       = errors.New("cell is out of bounds")
	ErrCellOccupied      = errors.New("cell is already occupied")

	ErrSessionNotFound = errors.New("game session not found")
	ErrSessionExists   = errors.New("game session already exists")
	ErrSessionActive   = errors.New("game session is still in progress")

	ErrInsufficientPlayers = errors.New("at least two players are required")
	ErrTooManyPlayers      = errors.New("at most four players are allowed")
	ErrDuplicateSeat       = errors.New("duplicate seat assignment")
	ErrInvalidBoardSize    = errors.New("board size must be between 10 and 20")
	ErrInvalidWinLength    = errors.New("win length must be between 3 and 10 and must not exceed the board size")
	ErrInvalidCancelCause  = errors.New("invalid cancellation cause")

	// ErrCorruptTurnState signals a programming defect: the turn cursor no
	// longer points at an active seat. It must never surface during a
	// correctly serialized game.
	ErrCorruptTurnState = errors.New("turn cursor does not point at an active seat")
)
