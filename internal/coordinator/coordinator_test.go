package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects published events, preserving publication order.
type recordingSink struct {
	mu     sync.Mutex
	events []gomoku.Event
}

func (that *recordingSink) Publish(_ context.Context, event gomoku.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *recordingSink) all() []gomoku.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	events := make([]gomoku.Event, len(that.events))
	copy(events, that.events)

	return events
}

func newTestCoordinator() (*Coordinator, *recordingSink) {
	sink := &recordingSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, sink), sink
}

func seats() []gomoku.Seat {
	return []gomoku.Seat{
		{PlayerID: "alice", Mark: 0},
		{PlayerID: "bob", Mark: 1},
	}
}

func TestCoordinator_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Registers a new session", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		// When: creating a session with valid parameters
		err := coord.CreateSession(ctx, "game-1", 15, 5, seats())

		// Then: the session is registered and can be snapshotted
		require.NoError(t, err)

		snapshot, err := coord.Snapshot("game-1")
		require.NoError(t, err)
		assert.Equal(t, gomoku.StatusInProgress, snapshot.Status)
	})

	t.Run("Error on duplicate game id", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		err := coord.CreateSession(ctx, "game-1", 15, 5, seats())

		assert.ErrorIs(t, err, apperror.ErrSessionExists)
	})

	t.Run("Error on invalid parameters", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		// win length 12 on a board of 10 is impossible
		err := coord.CreateSession(ctx, "game-1", 10, 12, seats())
		assert.ErrorIs(t, err, apperror.ErrInvalidWinLength)

		err = coord.CreateSession(ctx, "game-2", 9, 5, seats())
		assert.ErrorIs(t, err, apperror.ErrInvalidBoardSize)

		err = coord.CreateSession(ctx, "game-3", 15, 5, seats()[:1])
		assert.ErrorIs(t, err, apperror.ErrInsufficientPlayers)

		// a rejected session is not registered
		_, err = coord.Snapshot("game-1")
		assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestCoordinator_SubmitMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies a move and publishes it before returning", func(t *testing.T) {
		coord, sink := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		// When: alice opens the game
		event, err := coord.SubmitMove(ctx, "game-1", "alice", 7, 7)

		// Then: the returned delta matches the published one
		require.NoError(t, err)
		assert.Equal(t, gomoku.EventMoveApplied, event.Type)
		assert.Equal(t, "bob", event.NextPlayerID)

		published := sink.all()
		require.Len(t, published, 1)
		assert.Equal(t, event, published[0])
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		_, err := coord.SubmitMove(ctx, "nope", "alice", 0, 0)

		assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Rejected move publishes nothing", func(t *testing.T) {
		coord, sink := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		// When: bob moves out of turn
		_, err := coord.SubmitMove(ctx, "game-1", "bob", 0, 0)

		// Then: the error passes through untranslated and no event leaks
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, sink.all())
	})

	t.Run("Terminal move publishes MoveApplied then GameEnded", func(t *testing.T) {
		coord, sink := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		for i := 0; i < 4; i++ {
			_, err := coord.SubmitMove(ctx, "game-1", "alice", 7, 7+i)
			require.NoError(t, err)
			_, err = coord.SubmitMove(ctx, "game-1", "bob", 1, i)
			require.NoError(t, err)
		}

		_, err := coord.SubmitMove(ctx, "game-1", "alice", 7, 11)
		require.NoError(t, err)

		published := sink.all()
		require.Len(t, published, 10)
		assert.Equal(t, gomoku.EventMoveApplied, published[8].Type)
		assert.Equal(t, gomoku.EventGameEnded, published[9].Type)
		assert.Equal(t, "alice", published[9].WinnerID)
	})
}

func TestCoordinator_ConcurrentMoves(t *testing.T) {
	ctx := context.Background()

	t.Run("Racing submissions for the same turn admit exactly one", func(t *testing.T) {
		// Given: a session where both players hammer the same turn
		coord, sink := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		const attempts = 50

		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(2)

			go func(i int) {
				defer wg.Done()
				_, _ = coord.SubmitMove(ctx, "game-1", "alice", 0, i)
			}(i)

			go func(i int) {
				defer wg.Done()
				_, _ = coord.SubmitMove(ctx, "game-1", "bob", 1, i)
			}(i)
		}
		wg.Wait()

		// Then: the applied moves strictly alternate actors and the move
		// numbers are gapless, so no two submissions shared a turn
		snapshot, err := coord.Snapshot("game-1")
		require.NoError(t, err)

		for i, move := range snapshot.Moves {
			assert.Equal(t, i+1, move.Number)
			if i%2 == 0 {
				assert.Equal(t, "alice", move.PlayerID)
			} else {
				assert.Equal(t, "bob", move.PlayerID)
			}
		}

		// every published MoveApplied corresponds to one logged move
		applied := 0
		for _, event := range sink.all() {
			if event.Type == gomoku.EventMoveApplied {
				applied++
			}
		}
		assert.Equal(t, len(snapshot.Moves), applied)
	})

	t.Run("Sessions do not contend with each other", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))
		require.NoError(t, coord.CreateSession(ctx, "game-2", 15, 5, seats()))

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			_, err := coord.SubmitMove(ctx, "game-1", "alice", 0, 0)
			assert.NoError(t, err)
		}()

		go func() {
			defer wg.Done()
			_, err := coord.SubmitMove(ctx, "game-2", "alice", 0, 0)
			assert.NoError(t, err)
		}()

		wg.Wait()
	})
}

func TestCoordinator_EndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Evicts a terminal session", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))
		require.NoError(t, coord.Cancel(ctx, "game-1", gomoku.StatusCancelled))

		// When: the finished session is evicted
		err := coord.EndSession("game-1")

		// Then: later lookups signal the fall-back to persisted history
		require.NoError(t, err)

		_, err = coord.Snapshot("game-1")
		assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Refuses to evict a live session", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		err := coord.EndSession("game-1")

		assert.ErrorIs(t, err, apperror.ErrSessionActive)
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		assert.ErrorIs(t, coord.EndSession("nope"), apperror.ErrSessionNotFound)
	})

	t.Run("Eviction is serialized against in-flight mutations", func(t *testing.T) {
		// Given: an evictor hammering the session while the game is played
		coord, _ := newTestCoordinator()
		require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

		done := make(chan struct{})
		evicted := make(chan error, 1)

		go func() {
			for {
				err := coord.EndSession("game-1")
				if err == nil || !errors.Is(err, apperror.ErrSessionActive) {
					evicted <- err
					return
				}

				select {
				case <-done:
					evicted <- coord.EndSession("game-1")
					return
				default:
				}
			}
		}()

		// When: moves land and alice finally resigns
		for i := 0; i < 4; i++ {
			_, err := coord.SubmitMove(ctx, "game-1", "alice", 0, i)
			require.NoError(t, err)
			_, err = coord.SubmitMove(ctx, "game-1", "bob", 1, i)
			require.NoError(t, err)
		}
		require.NoError(t, coord.Resign(ctx, "game-1", "alice"))
		close(done)

		// Then: a live session is never evicted and the terminal one is
		require.NoError(t, <-evicted)

		_, err := coord.Snapshot("game-1")
		assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestCoordinator_DrawFlow(t *testing.T) {
	ctx := context.Background()

	coord, sink := newTestCoordinator()
	require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

	// When: bob offers a draw and alice accepts
	require.NoError(t, coord.OfferDraw(ctx, "game-1", "bob"))
	require.NoError(t, coord.RespondDraw(ctx, "game-1", "alice", true))

	// Then: the events arrive in order and the session ended as a draw
	published := sink.all()
	require.Len(t, published, 3)
	assert.Equal(t, gomoku.EventDrawOffered, published[0].Type)
	assert.Equal(t, gomoku.EventDrawAnswered, published[1].Type)
	assert.Equal(t, gomoku.EventGameEnded, published[2].Type)
	assert.Equal(t, gomoku.StatusDraw, published[2].Cause)

	snapshot, err := coord.Snapshot("game-1")
	require.NoError(t, err)
	assert.Equal(t, gomoku.StatusDraw, snapshot.Status)
}

func TestCoordinator_Resign(t *testing.T) {
	ctx := context.Background()

	coord, sink := newTestCoordinator()
	require.NoError(t, coord.CreateSession(ctx, "game-1", 15, 5, seats()))

	require.NoError(t, coord.Resign(ctx, "game-1", "alice"))

	published := sink.all()
	require.Len(t, published, 1)
	assert.Equal(t, gomoku.EventGameEnded, published[0].Type)
	assert.Equal(t, gomoku.StatusResigned, published[0].Cause)
	assert.Equal(t, "bob", published[0].WinnerID)
}
