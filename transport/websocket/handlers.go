package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleConnect(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, "failed to create a new player")
	}

	client.playerID = player.ID

	if player.GameID != "" {
		client.watch(ctx, that.hub, player.GameID)
	}

	if err = sendMessage(ctx, client.conn, msg.Action, Payload{Player: player}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

// handleGameStart starts a match for the room's seated players. The first
// player in the list opens the game; seat order is the list order.
func (that *Server) handleGameStart(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameStart")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if len(payloadReq.Players) == 0 {
		log.Error("Players are missing in payload")
		return sendErrorResponse(ctx, client.conn, msg.Action, "Players are required")
	}

	boardSize := payloadReq.BoardSize
	if boardSize == 0 {
		boardSize = that.defaultBoardSize
	}

	winLength := payloadReq.WinLength
	if winLength == 0 {
		winLength = that.defaultWinLength
	}

	game, err := that.gameUseCase.StartGame(ctx, payloadReq.Players, boardSize, winLength)
	if err != nil {
		log.Error("failed to start game", "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, err.Error())
	}

	client.watch(ctx, that.hub, game.ID)

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}

func (that *Server) handleGameWatch(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameWatch")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.GameID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "Game ID is required")
	}

	game, err := that.gameUseCase.GameState(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to get game state", "gameID", payloadReq.GameID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, "failed to get the game")
	}

	client.watch(ctx, that.hub, game.ID)

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}

func (that *Server) handleGameState(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameState")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.GameID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "Game ID is required")
	}

	game, err := that.gameUseCase.GameState(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to get game state", "gameID", payloadReq.GameID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, "failed to get the game")
	}

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}

func (that *Server) handleGameMove(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameMove")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if client.playerID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "connect first")
	}

	if payloadReq.GameID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "Game ID is required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.GameID, client.playerID, payloadReq.Row, payloadReq.Col)
	if err != nil {
		log.Debug("move rejected", "gameID", payloadReq.GameID, "playerID", client.playerID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, err.Error())
	}

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}

func (that *Server) handleGameResign(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameResign")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if client.playerID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "connect first")
	}

	game, err := that.gameUseCase.Resign(ctx, payloadReq.GameID, client.playerID)
	if err != nil {
		log.Debug("resign rejected", "gameID", payloadReq.GameID, "playerID", client.playerID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, err.Error())
	}

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}

func (that *Server) handleDrawOffer(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleDrawOffer")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if client.playerID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "connect first")
	}

	if err := that.gameUseCase.OfferDraw(ctx, payloadReq.GameID, client.playerID); err != nil {
		log.Debug("draw offer rejected", "gameID", payloadReq.GameID, "playerID", client.playerID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, err.Error())
	}

	return sendMessage(ctx, client.conn, msg.Action, Payload{GameID: payloadReq.GameID})
}

func (that *Server) handleDrawRespond(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleDrawRespond")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if client.playerID == "" {
		return sendErrorResponse(ctx, client.conn, msg.Action, "connect first")
	}

	game, err := that.gameUseCase.RespondDraw(ctx, payloadReq.GameID, client.playerID, payloadReq.Accept)
	if err != nil {
		log.Debug("draw response rejected", "gameID", payloadReq.GameID, "playerID", client.playerID, "error", err)
		return sendErrorResponse(ctx, client.conn, msg.Action, err.Error())
	}

	return sendMessage(ctx, client.conn, msg.Action, Payload{Game: game})
}
