package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init creates the archive schema for finished games.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			board_size INTEGER NOT NULL,
			win_length INTEGER NOT NULL,
			status TEXT NOT NULL,
			winner_id TEXT,
			total_moves INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS moves (
			game_id TEXT NOT NULL REFERENCES games(id),
			move_number INTEGER NOT NULL,
			row INTEGER NOT NULL,
			col INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			player_id TEXT NOT NULL,
			played_at TIMESTAMP NOT NULL,
			PRIMARY KEY (game_id, move_number)
		)`,
		`CREATE TABLE IF NOT EXISTS game_players (
			game_id TEXT NOT NULL REFERENCES games(id),
			player_id TEXT NOT NULL,
			mark TEXT NOT NULL,
			PRIMARY KEY (game_id, player_id)
		)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	return that.Connection.Close()
}
