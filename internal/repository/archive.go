package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// ArchiveRepository stores the final records of finished games. Live state
// never touches it; the game manager archives exactly once, after the
// session reached a terminal status.
type ArchiveRepository interface {
	Save(ctx context.Context, game *entity.GameRecord) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
	ListByPlayer(ctx context.Context, playerID string, page, pageSize int) ([]*entity.GameRecord, error)
}

type dbArchive struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &dbArchive{
		conn: conn,
	}
}

// Save writes the game row together with its moves and seat assignments in
// one transaction.
func (that *dbArchive) Save(ctx context.Context, game *entity.GameRecord) error {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `INSERT INTO games (id, board_size, win_length, status, winner_id, total_moves, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		game.ID, game.BoardSize, game.WinLength, game.Status, game.WinnerID,
		game.TotalMoves, game.CreatedAt, game.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	moveQuery := `INSERT INTO moves (game_id, move_number, row, col, symbol, player_id, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, move := range game.Moves {
		_, err = tx.ExecContext(ctx, moveQuery,
			game.ID, move.Number, move.Row, move.Col, move.Symbol, move.PlayerID, move.PlayedAt,
		)
		if err != nil {
			return fmt.Errorf("can't save move %d: %w", move.Number, err)
		}
	}

	playerQuery := `INSERT INTO game_players (game_id, player_id, mark) VALUES (?, ?, ?)`

	for _, player := range game.Players {
		if _, err = tx.ExecContext(ctx, playerQuery, game.ID, player.ID, player.Mark); err != nil {
			return fmt.Errorf("can't save player %s: %w", player.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}

func (that *dbArchive) GetByID(ctx context.Context, id string) (*entity.GameRecord, error) {
	query := `SELECT id, board_size, win_length, status, winner_id, total_moves, started_at, ended_at
		FROM games WHERE id = ?`

	game, err := scanGame(that.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get game: %w", err)
	}

	if err = that.loadMoves(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// ListByPlayer returns finished games the player took part in, most recent
// first. Pages are 1-based.
func (that *dbArchive) ListByPlayer(ctx context.Context, playerID string, page, pageSize int) ([]*entity.GameRecord, error) {
	if page < 1 {
		page = 1
	}

	query := `SELECT g.id, g.board_size, g.win_length, g.status, g.winner_id, g.total_moves, g.started_at, g.ended_at
		FROM games g
		JOIN game_players gp ON gp.game_id = g.id
		WHERE gp.player_id = ?
		ORDER BY g.ended_at DESC
		LIMIT ? OFFSET ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("can't list games: %w", err)
	}
	defer rows.Close()

	var games []*entity.GameRecord

	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan game: %w", err)
		}

		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate games: %w", err)
	}

	return games, nil
}

func (that *dbArchive) loadMoves(ctx context.Context, game *entity.GameRecord) error {
	query := `SELECT move_number, row, col, symbol, player_id, played_at
		FROM moves WHERE game_id = ? ORDER BY move_number`

	rows, err := that.conn.QueryContext(ctx, query, game.ID)
	if err != nil {
		return fmt.Errorf("can't load moves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var move entity.MoveRecord
		if err = rows.Scan(&move.Number, &move.Row, &move.Col, &move.Symbol, &move.PlayerID, &move.PlayedAt); err != nil {
			return fmt.Errorf("can't scan move: %w", err)
		}

		game.Moves = append(game.Moves, move)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("can't iterate moves: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*entity.GameRecord, error) {
	var game entity.GameRecord
	var winnerID sql.NullString

	err := row.Scan(&game.ID, &game.BoardSize, &game.WinLength, &game.Status,
		&winnerID, &game.TotalMoves, &game.CreatedAt, &game.EndedAt)
	if err != nil {
		return nil, err
	}

	game.WinnerID = winnerID.String

	return &game, nil
}
