package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Message is the envelope of the WebSocket protocol: a client action or a
// server push, with a JSON payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	actionConnect     = "connect"
	actionGameStart   = "game:start"
	actionGameWatch   = "game:watch"
	actionGameState   = "game:state"
	actionGameMove    = "game:move"
	actionGameResign  = "game:resign"
	actionDrawOffer   = "game:draw:offer"
	actionDrawRespond = "game:draw:respond"
	actionGameEvent   = "game:event"
)

// Payload carries the fields of every request and response; unused fields
// stay empty and are omitted on the wire.
type Payload struct {
	Player  *entity.Player     `json:"player,omitempty"`
	Players []*entity.Player   `json:"players,omitempty"`
	Game    *entity.GameRecord `json:"game,omitempty"`

	GameID    string `json:"game_id,omitempty"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Accept    bool   `json:"accept,omitempty"`
	BoardSize int    `json:"board_size,omitempty"`
	WinLength int    `json:"win_length,omitempty"`

	Error string `json:"error,omitempty"`
}

func sendMessage(ctx context.Context, conn *websocket.Conn, action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: raw,
	}

	if err = wsjson.Write(ctx, conn, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func sendErrorResponse(ctx context.Context, conn *websocket.Conn, action, message string) error {
	return sendMessage(ctx, conn, action, Payload{Error: message})
}
