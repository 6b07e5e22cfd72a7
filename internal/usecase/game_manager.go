package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type sessionCoordinator interface {
	CreateSession(ctx context.Context, gameID string, boardSize, winLength int, seats []gomoku.Seat) error
	SubmitMove(ctx context.Context, gameID, playerID string, row, col int) (gomoku.Event, error)
	Resign(ctx context.Context, gameID, playerID string) error
	OfferDraw(ctx context.Context, gameID, playerID string) error
	RespondDraw(ctx context.Context, gameID, playerID string, accept bool) error
	Cancel(ctx context.Context, gameID string, cause gomoku.Status) error
	Snapshot(gameID string) (gomoku.Snapshot, error)
	EndSession(gameID string) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.GameRecord) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type archiveRepo interface {
	Save(ctx context.Context, game *entity.GameRecord) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
	ListByPlayer(ctx context.Context, playerID string, page, pageSize int) ([]*entity.GameRecord, error)
}

// GameManager drives the lifecycle around the session engine: it starts
// sessions for a room's seated players, keeps the live snapshot in the
// game repository after every accepted mutation, and once a game reaches a
// terminal state archives the final record and evicts the session.
type GameManager struct {
	logger *slog.Logger

	coordinator sessionCoordinator
	gameRepo    gameRepo
	playerRepo  playerRepo
	archive     archiveRepo
}

func NewGameManager(logger *slog.Logger, coordinator sessionCoordinator, gameRepo gameRepo, playerRepo playerRepo, archive archiveRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		coordinator: coordinator,
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		archive:     archive,
	}
}

// StartGame creates a session for the room's ready players, in seat order.
// Marks are the seat indexes; each player keeps the mark for the whole
// game.
func (that *GameManager) StartGame(ctx context.Context, players []*entity.Player, boardSize, winLength int) (*entity.GameRecord, error) {
	gameID := uuid.NewString()

	seats := make([]gomoku.Seat, len(players))
	for i := range players {
		seats[i] = gomoku.Seat{
			PlayerID: players[i].ID,
			Mark:     gomoku.Mark(i), //nolint:gosec // seat count is capped at 4
		}
	}

	if err := that.coordinator.CreateSession(ctx, gameID, boardSize, winLength, seats); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	for i, player := range players {
		player.GameID = gameID
		player.Mark = seats[i].Mark.Symbol()

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}
	}

	record, err := that.persistSnapshot(ctx, gameID)
	if err != nil {
		return nil, err
	}

	that.logger.Info("game started", "gameID", gameID, "players", len(players))

	return record, nil
}

// MakeTurn submits one move and persists the resulting snapshot. A
// finished game is archived and its session evicted before returning.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, playerID string, row, col int) (*entity.GameRecord, error) {
	if _, err := that.coordinator.SubmitMove(ctx, gameID, playerID, row, col); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	return that.persistSnapshot(ctx, gameID)
}

// Resign ends the game on behalf of a participant.
func (that *GameManager) Resign(ctx context.Context, gameID, playerID string) (*entity.GameRecord, error) {
	if err := that.coordinator.Resign(ctx, gameID, playerID); err != nil {
		return nil, fmt.Errorf("failed to resign: %w", err)
	}

	return that.persistSnapshot(ctx, gameID)
}

// OfferDraw relays a draw offer; it changes no game state.
func (that *GameManager) OfferDraw(ctx context.Context, gameID, playerID string) error {
	if err := that.coordinator.OfferDraw(ctx, gameID, playerID); err != nil {
		return fmt.Errorf("failed to offer draw: %w", err)
	}

	return nil
}

// RespondDraw answers a draw offer; acceptance ends the game as a draw.
func (that *GameManager) RespondDraw(ctx context.Context, gameID, playerID string, accept bool) (*entity.GameRecord, error) {
	if err := that.coordinator.RespondDraw(ctx, gameID, playerID, accept); err != nil {
		return nil, fmt.Errorf("failed to respond to draw: %w", err)
	}

	return that.persistSnapshot(ctx, gameID)
}

// Cancel terminates the game administratively. The surrounding
// application's turn clock calls this with gomoku.StatusTimedOut on expiry.
func (that *GameManager) Cancel(ctx context.Context, gameID string, cause gomoku.Status) (*entity.GameRecord, error) {
	if err := that.coordinator.Cancel(ctx, gameID, cause); err != nil {
		return nil, fmt.Errorf("failed to cancel game: %w", err)
	}

	return that.persistSnapshot(ctx, gameID)
}

// GameState returns the live snapshot of a game, falling back to the
// archive once the session has been evicted.
func (that *GameManager) GameState(ctx context.Context, gameID string) (*entity.GameRecord, error) {
	snapshot, err := that.coordinator.Snapshot(gameID)
	if err == nil {
		return recordFromSnapshot(snapshot), nil
	}

	if !errors.Is(err, apperror.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	record, err := that.archive.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get archived game: %w", err)
	}

	return record, nil
}

// History returns finished games the player took part in, newest first.
func (that *GameManager) History(ctx context.Context, playerID string, page, pageSize int) ([]*entity.GameRecord, error) {
	games, err := that.archive.ListByPlayer(ctx, playerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{ID: uuid.NewString()}

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// persistSnapshot stores the current snapshot of a live game, or finalizes
// it when the last mutation was terminal.
func (that *GameManager) persistSnapshot(ctx context.Context, gameID string) (*entity.GameRecord, error) {
	snapshot, err := that.coordinator.Snapshot(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	record := recordFromSnapshot(snapshot)

	if !snapshot.Status.Terminal() {
		if err = that.gameRepo.CreateOrUpdate(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		return record, nil
	}

	that.finalizeGame(ctx, record)

	return record, nil
}

// finalizeGame archives the final record, frees the players, drops the
// live snapshot and evicts the session. Cleanup failures are logged, not
// returned: the game itself has ended either way.
func (that *GameManager) finalizeGame(ctx context.Context, record *entity.GameRecord) {
	log := that.logger.With("method", "finalizeGame", "gameID", record.ID)

	if err := that.archive.Save(ctx, record); err != nil {
		log.Error("failed to archive game", "error", err)
	}

	for _, player := range record.Players {
		stored, err := that.playerRepo.GetByID(ctx, player.ID)
		if err != nil {
			log.Error("failed to get player", "playerID", player.ID, "error", err)
			continue
		}

		stored.Mark = ""
		stored.GameID = ""

		if err = that.playerRepo.CreateOrUpdate(ctx, stored); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}

	if err := that.gameRepo.DeleteByID(ctx, record.ID); err != nil {
		log.Error("failed to delete live game", "error", err)
	}

	if err := that.coordinator.EndSession(record.ID); err != nil {
		log.Error("failed to evict session", "error", err)
	}

	log.Info("game finalized", "status", record.Status)
}

func recordFromSnapshot(snapshot gomoku.Snapshot) *entity.GameRecord {
	players := make([]*entity.Player, len(snapshot.Seats))
	for i, seat := range snapshot.Seats {
		players[i] = &entity.Player{
			ID:     seat.PlayerID,
			Mark:   seat.Mark.Symbol(),
			GameID: snapshot.ID,
		}
	}

	moves := make([]entity.MoveRecord, len(snapshot.Moves))
	for i, move := range snapshot.Moves {
		moves[i] = entity.MoveRecord{
			Number:   move.Number,
			Row:      move.Row,
			Col:      move.Col,
			Symbol:   move.Mark.Symbol(),
			PlayerID: move.PlayerID,
			PlayedAt: move.PlayedAt,
		}
	}

	return &entity.GameRecord{
		ID:         snapshot.ID,
		BoardSize:  snapshot.BoardSize,
		WinLength:  snapshot.WinLength,
		Board:      snapshot.Board,
		Status:     string(snapshot.Status),
		Turn:       snapshot.CurrentPlayerID,
		WinnerID:   snapshot.WinnerID,
		Players:    players,
		Moves:      moves,
		TotalMoves: len(moves),
		CreatedAt:  snapshot.CreatedAt,
		EndedAt:    snapshot.EndedAt,
	}
}
