package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"planning_poker/internal/models"
	"planning_poker/internal/service"
	"planning_poker/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the frontend host is fixed
	},
}

// WebSocketHandler owns the connection lifecycle: every client action
// arrives as one JSON message on the socket and maps onto one registry
// or voting operation
type WebSocketHandler struct {
	wsManager     *service.WebSocketManager
	roomService   *service.RoomService
	votingService *service.VotingService
}

func NewWebSocketHandler(wsManager *service.WebSocketManager, roomService *service.RoomService, votingService *service.VotingService) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:     wsManager,
		roomService:   roomService,
		votingService: votingService,
	}
}

// actionMessage is the envelope of every client-to-server message
type actionMessage struct {
	Action             string `json:"action"`
	Name               string `json:"name,omitempty"`
	Code               string `json:"code,omitempty"`
	Scale              string `json:"scale,omitempty"`
	Questions          string `json:"questions,omitempty"`
	SessionMinutes     int    `json:"sessionMinutes,omitempty"`
	CoffeeBreakEnabled bool   `json:"coffeeBreakEnabled,omitempty"`
	Shuffle            bool   `json:"shuffle,omitempty"`
	Value              string `json:"value,omitempty"`
	Token              string `json:"token,omitempty"`
}

// HandleWebSocket upgrades the connection, assigns it a fresh
// transport identity and pumps client actions until the socket drops
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "websocket upgrade failed"})
		return
	}

	client := service.NewClient(uuid.NewString(), conn)
	go client.WritePump()

	defer h.handleClose(client)

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket unexpected close: %v", err)
			}
			return
		}

		var msg actionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(client, "malformed message")
			continue
		}

		h.dispatch(client, msg)
	}
}

func (h *WebSocketHandler) dispatch(client *service.Client, msg actionMessage) {
	switch msg.Action {
	case "create_room":
		h.createRoom(client, msg)
	case "join_room":
		h.joinRoom(client, msg)
	case "rejoin_room":
		h.rejoinRoom(client, msg)
	case "vote":
		h.vote(client, msg)
	case "reveal":
		h.reveal(client)
	case "accept_estimate":
		h.acceptEstimate(client, msg)
	case "revote":
		h.revote(client)
	case "next_question":
		h.nextQuestion(client)
	case "results":
		h.results(client)
	case "room_state":
		h.roomState(client)
	default:
		h.sendError(client, "unknown action")
	}
}

func (h *WebSocketHandler) createRoom(client *service.Client, msg actionMessage) {
	room, owner, err := h.roomService.CreateRoom(service.CreateRoomInput{
		OwnerName:          msg.Name,
		Scale:              msg.Scale,
		Questions:          msg.Questions,
		SessionMinutes:     msg.SessionMinutes,
		CoffeeBreakEnabled: msg.CoffeeBreakEnabled,
		Shuffle:            msg.Shuffle,
	}, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.Register(room.Code, client)
	h.welcome(client, room.Code, owner, models.EventTypeRoomCreated)
}

func (h *WebSocketHandler) joinRoom(client *service.Client, msg actionMessage) {
	room, player, reconnected, err := h.roomService.JoinRoom(msg.Code, msg.Name, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.Register(room.Code, client)
	h.welcome(client, room.Code, player, models.EventTypeRoomState)
	h.broadcastJoined(room.Code, player, reconnected)
}

func (h *WebSocketHandler) rejoinRoom(client *service.Client, msg actionMessage) {
	claims, err := utils.ParsePlayerToken(msg.Token)
	if err != nil {
		h.sendError(client, "invalid player token")
		return
	}

	code := msg.Code
	if code == "" {
		code = claims.RoomCode
	}

	room, player, err := h.roomService.RejoinRoom(code, claims.PlayerID, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.Register(room.Code, client)
	h.welcome(client, room.Code, player, models.EventTypeRoomState)
	h.broadcastJoined(room.Code, player, true)
}

// welcome replies to the acting client only, with the snapshot and its
// rejoin token
func (h *WebSocketHandler) welcome(client *service.Client, code string, player *models.Player, eventType string) {
	snapshot, err := h.roomService.Snapshot(code)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	token, err := utils.GeneratePlayerToken(player.ID, code)
	if err != nil {
		log.Printf("player token generation failed: %v", err)
	}

	client.Send(models.Event{
		Type: eventType,
		Payload: models.RoomWelcome{
			Room:        snapshot,
			PlayerName:  player.Name,
			PlayerToken: token,
		},
	})
}

func (h *WebSocketHandler) broadcastJoined(code string, player *models.Player, reconnected bool) {
	h.wsManager.BroadcastToRoom(code, models.Event{
		Type: models.EventTypePlayerJoined,
		Payload: models.PlayerJoined{
			Player: models.PlayerInfo{
				Name:        player.Name,
				IsOwner:     player.IsOwner,
				IsSpectator: player.IsSpectator,
				Connected:   true,
			},
			Reconnect: reconnected,
		},
	})
}

func (h *WebSocketHandler) vote(client *service.Client, msg actionMessage) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	player, revealed, err := h.votingService.Vote(room.Code, client.ID, msg.Value)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	// Before the reveal votes stay anonymous; after it the changed
	// value is public
	if revealed {
		h.wsManager.BroadcastToRoom(room.Code, models.Event{
			Type:    models.EventTypeVoteUpdated,
			Payload: models.VoteUpdate{Name: player.Name, Value: msg.Value},
		})
		return
	}
	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypeVoteSubmitted,
		Payload: models.VoteNotice{Name: player.Name},
	})
}

func (h *WebSocketHandler) reveal(client *service.Client) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	payload, err := h.votingService.Reveal(room.Code, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypeCardsRevealed,
		Payload: payload,
	})
}

func (h *WebSocketHandler) acceptEstimate(client *service.Client, msg actionMessage) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	payload, err := h.votingService.AcceptEstimate(room.Code, client.ID, msg.Value)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypeEstimateAccepted,
		Payload: payload,
	})
}

func (h *WebSocketHandler) revote(client *service.Client) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	payload, err := h.votingService.Revote(room.Code, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypeNewRound,
		Payload: payload,
	})
}

func (h *WebSocketHandler) nextQuestion(client *service.Client) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	payload, finished, err := h.votingService.NextQuestion(room.Code, client.ID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	if finished {
		results, err := h.votingService.Results(room.Code)
		if err != nil {
			h.sendError(client, err.Error())
			return
		}
		h.wsManager.BroadcastToRoom(room.Code, models.Event{
			Type:    models.EventTypeGameFinished,
			Payload: results,
		})
		return
	}

	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypeNewRound,
		Payload: payload,
	})
}

func (h *WebSocketHandler) results(client *service.Client) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	results, err := h.votingService.Results(room.Code)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	client.Send(models.Event{
		Type:    models.EventTypeGameFinished,
		Payload: results,
	})
}

func (h *WebSocketHandler) roomState(client *service.Client) {
	room, ok := h.roomService.FindRoomByIdentity(client.ID)
	if !ok {
		h.sendError(client, models.ErrPlayerNotInRoom.Error())
		return
	}

	snapshot, err := h.roomService.Snapshot(room.Code)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	client.Send(models.Event{
		Type:    models.EventTypeRoomState,
		Payload: snapshot,
	})
}

// handleClose resolves a dropped connection: the player stays in the
// room as disconnected until the sweeper's grace period runs out
func (h *WebSocketHandler) handleClose(client *service.Client) {
	h.wsManager.Unregister(client)
	client.Conn.Close()

	room, player, newOwner, ok := h.roomService.Disconnect(client.ID)
	if !ok {
		return
	}

	left := models.PlayerLeft{Name: player.Name}
	if newOwner != nil {
		left.NewOwner = newOwner.Name
	}
	h.wsManager.BroadcastToRoom(room.Code, models.Event{
		Type:    models.EventTypePlayerLeft,
		Payload: left,
	})
}

func (h *WebSocketHandler) sendError(client *service.Client, message string) {
	client.Send(models.Event{
		Type:    models.EventTypeError,
		Payload: gin.H{"message": message},
	})
}
