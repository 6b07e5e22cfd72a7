package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type gameStates interface {
	GameState(ctx context.Context, gameID string) (*entity.GameRecord, error)
	History(ctx context.Context, playerID string, page, pageSize int) ([]*entity.GameRecord, error)
}

// Start runs the plain HTTP server: a health check plus polling fallbacks
// for clients without a live WebSocket connection.
func Start(port string, games gameStates) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("GET /games/{id}", gameStateHandler(games))
	mux.HandleFunc("GET /players/{id}/games", gameHistoryHandler(games))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
