package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Sink receives session events for delivery to connected clients. Events
// for one game arrive in emission order; implementations must not block for
// long, they run inside the game's critical section.
type Sink interface {
	Publish(ctx context.Context, event gomoku.Event)
}

// liveSession pairs a session with the mutex that serializes every
// operation on it, mutating and read-only alike.
type liveSession struct {
	mu      sync.Mutex
	session *gomoku.Session
}

// Coordinator keeps the registry of live sessions and guarantees that at
// most one operation runs at a time per game. The registry lock is held
// only for lookups and registration, so unrelated games never contend.
type Coordinator struct {
	logger *slog.Logger
	sink   Sink

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func New(logger *slog.Logger, sink Sink) *Coordinator {
	return &Coordinator{
		logger:   logger.With("component", "coordinator"),
		sink:     sink,
		sessions: make(map[string]*liveSession),
	}
}

// CreateSession validates the parameters, builds the session and registers
// it under the given game ID.
func (that *Coordinator) CreateSession(_ context.Context, gameID string, boardSize, winLength int, seats []gomoku.Seat) error {
	session, err := gomoku.NewSession(gameID, boardSize, winLength, seats)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[gameID]; ok {
		return fmt.Errorf("%w: game id %s", apperror.ErrSessionExists, gameID)
	}

	that.sessions[gameID] = &liveSession{session: session}
	that.logger.Info("session created", "gameID", gameID, "boardSize", boardSize, "winLength", winLength, "seats", len(seats))

	return nil
}

// SubmitMove applies one move and publishes the resulting events before
// returning. The returned event is the MoveApplied delta; a terminal move
// additionally publishes GameEnded.
func (that *Coordinator) SubmitMove(ctx context.Context, gameID, playerID string, row, col int) (gomoku.Event, error) {
	events, err := that.withSession(ctx, gameID, func(session *gomoku.Session) ([]gomoku.Event, error) {
		return session.ApplyMove(playerID, row, col)
	})
	if err != nil {
		return gomoku.Event{}, err
	}

	return events[0], nil
}

// Resign ends the game on behalf of a participant.
func (that *Coordinator) Resign(ctx context.Context, gameID, playerID string) error {
	_, err := that.withSession(ctx, gameID, func(session *gomoku.Session) ([]gomoku.Event, error) {
		return session.Resign(playerID)
	})

	return err
}

// OfferDraw relays a draw offer to the game's observers.
func (that *Coordinator) OfferDraw(ctx context.Context, gameID, playerID string) error {
	_, err := that.withSession(ctx, gameID, func(session *gomoku.Session) ([]gomoku.Event, error) {
		return session.OfferDraw(playerID)
	})

	return err
}

// RespondDraw answers a pending draw offer; acceptance ends the game.
func (that *Coordinator) RespondDraw(ctx context.Context, gameID, playerID string, accept bool) error {
	_, err := that.withSession(ctx, gameID, func(session *gomoku.Session) ([]gomoku.Event, error) {
		return session.RespondDraw(playerID, accept)
	})

	return err
}

// Cancel terminates the game administratively, either as cancelled or as
// timed out. The per-turn clock lives in the surrounding application; it
// calls this entry point on expiry just like a user action would.
func (that *Coordinator) Cancel(ctx context.Context, gameID string, cause gomoku.Status) error {
	_, err := that.withSession(ctx, gameID, func(session *gomoku.Session) ([]gomoku.Event, error) {
		return session.Cancel(cause)
	})

	return err
}

// Snapshot returns a consistent view of the session, serialized against
// in-flight mutations.
func (that *Coordinator) Snapshot(gameID string) (gomoku.Snapshot, error) {
	live, err := that.lookup(gameID)
	if err != nil {
		return gomoku.Snapshot{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	return live.session.Snapshot(), nil
}

// EndSession evicts a terminal session from the live registry. Later
// lookups fail with ErrSessionNotFound, which tells collaborators to fall
// back to persisted history. A session still in progress is not evicted.
func (that *Coordinator) EndSession(gameID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	live, ok := that.sessions[gameID]
	if !ok {
		return fmt.Errorf("%w: game id %s", apperror.ErrSessionNotFound, gameID)
	}

	// status is written under the session lock, so the read needs it too;
	// the registry lock alone does not serialize against in-flight moves.
	// Terminal states are absorbing, the status cannot regress after unlock.
	live.mu.Lock()
	status := live.session.Status()
	live.mu.Unlock()

	if !status.Terminal() {
		return fmt.Errorf("%w: game id %s", apperror.ErrSessionActive, gameID)
	}

	delete(that.sessions, gameID)
	that.logger.Info("session evicted", "gameID", gameID, "status", status)

	return nil
}

func (that *Coordinator) lookup(gameID string) (*liveSession, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	live, ok := that.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrSessionNotFound, gameID)
	}

	return live, nil
}

// withSession runs one mutating operation inside the game's critical
// section and publishes its events, still under the lock, so per-game
// emission order matches application order. A failed operation publishes
// nothing.
func (that *Coordinator) withSession(ctx context.Context, gameID string, op func(*gomoku.Session) ([]gomoku.Event, error)) ([]gomoku.Event, error) {
	live, err := that.lookup(gameID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	events, err := op(live.session)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		that.sink.Publish(ctx, event)
	}

	return events, nil
}
