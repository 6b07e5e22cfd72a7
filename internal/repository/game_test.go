package repository

import (
	"testing"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a live game snapshot
	game := &entity.GameRecord{
		ID:        "123",
		BoardSize: 15,
		WinLength: 5,
		Status:    "in_progress",
	}

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and the game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game with moves
		game := &entity.GameRecord{
			ID:        "123",
			BoardSize: 15,
			WinLength: 5,
			Status:    "in_progress",
			Turn:      "alice",
			Moves: []entity.MoveRecord{
				{Number: 1, Row: 7, Col: 7, Symbol: "X", PlayerID: "alice"},
			},
		}

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with the existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, game.ID, retrievedGame.ID)
		require.Equal(t, game.Status, retrievedGame.Status)
		require.Equal(t, game.Moves, retrievedGame.Moves)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrGameNotFound, err)
		assert.Empty(t, retrievedGame.ID)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a stored game
	game := &entity.GameRecord{
		ID:     "123",
		Status: "in_progress",
	}
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// When: DeleteByID is called
	err := gameRepo.DeleteByID(ctx, game.ID)

	// Then: the game is gone
	require.NoError(t, err)

	_, err = gameRepo.GetByID(ctx, game.ID)
	assert.Equal(t, ErrGameNotFound, err)
}

func TestPlayerRepository(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player bound to a game
	player := &entity.Player{
		ID:     "alice",
		Mark:   "X",
		GameID: "123",
	}

	// When: the player is stored and read back
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

	retrieved, err := playerRepo.GetByID(ctx, "alice")

	// Then: the stored player round-trips
	require.NoError(t, err)
	assert.Equal(t, player, retrieved)

	// Then: an unknown player returns ErrPlayerNotFound
	_, err = playerRepo.GetByID(ctx, "nobody")
	assert.Equal(t, ErrPlayerNotFound, err)
}
