package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	StartGame(ctx context.Context, players []*entity.Player, boardSize, winLength int) (*entity.GameRecord, error)
	MakeTurn(ctx context.Context, gameID, playerID string, row, col int) (*entity.GameRecord, error)
	Resign(ctx context.Context, gameID, playerID string) (*entity.GameRecord, error)
	OfferDraw(ctx context.Context, gameID, playerID string) error
	RespondDraw(ctx context.Context, gameID, playerID string, accept bool) (*entity.GameRecord, error)
	GameState(ctx context.Context, gameID string) (*entity.GameRecord, error)
}

// Server accepts WebSocket connections, dispatches client actions to the
// game manager and streams each watched game's events back in emission
// order.
type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	hub         *Hub

	defaultBoardSize int
	defaultWinLength int
}

func New(logger *slog.Logger, useCase gameUseCase, hub *Hub, boardSize, winLength int) *Server {
	return &Server{
		logger:      logger.With("component", "ws_server"),
		gameUseCase: useCase,
		hub:         hub,

		defaultBoardSize: boardSize,
		defaultWinLength: winLength,
	}
}

func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error("failed to accept connection", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := newClient(conn)
	defer client.stopWatching(that.hub)

	for {
		var msg Message
		if err = wsjson.Read(connCtx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}

			log.Debug("read failed, dropping connection", "error", err)
			return
		}

		if err = that.dispatch(connCtx, client, &msg); err != nil {
			log.Error("failed to handle message", "action", msg.Action, "error", err)
			return
		}
	}
}

func (that *Server) dispatch(ctx context.Context, client *client, msg *Message) error {
	switch msg.Action {
	case actionConnect:
		return that.handleConnect(ctx, client, msg)
	case actionGameStart:
		return that.handleGameStart(ctx, client, msg)
	case actionGameWatch:
		return that.handleGameWatch(ctx, client, msg)
	case actionGameState:
		return that.handleGameState(ctx, client, msg)
	case actionGameMove:
		return that.handleGameMove(ctx, client, msg)
	case actionGameResign:
		return that.handleGameResign(ctx, client, msg)
	case actionDrawOffer:
		return that.handleDrawOffer(ctx, client, msg)
	case actionDrawRespond:
		return that.handleDrawRespond(ctx, client, msg)
	default:
		return sendErrorResponse(ctx, client.conn, msg.Action, "unknown action")
	}
}

// client is one connection's state: the identified player and the game it
// currently watches.
type client struct {
	conn *websocket.Conn

	playerID     string
	watchedGame  string
	subscription *Subscription
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn}
}

// watch switches the connection's event feed to the given game. The pump
// goroutine exits when the subscription is closed.
func (that *client) watch(ctx context.Context, hub *Hub, gameID string) {
	if that.watchedGame == gameID {
		return
	}

	that.stopWatching(hub)

	that.watchedGame = gameID
	that.subscription = hub.Subscribe(gameID)

	go func(sub *Subscription) {
		for raw := range sub.Events() {
			msg := Message{Action: actionGameEvent, Payload: raw}
			if err := wsjson.Write(ctx, that.conn, msg); err != nil {
				return
			}
		}
	}(that.subscription)
}

func (that *client) stopWatching(hub *Hub) {
	if that.subscription == nil {
		return
	}

	hub.Unsubscribe(that.watchedGame, that.subscription)
	that.subscription = nil
	that.watchedGame = ""
}
