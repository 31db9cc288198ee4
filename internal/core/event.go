package core

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Duel/internal/domain"
)

// Inbound event names.
const (
	EventCreateRoom = "createRoom"
	EventJoinRoom   = "joinRoom"
	EventMove       = "move"
	EventLeaveRoom  = "leaveRoom"
	EventPing       = "ping"
)

// Outbound event names.
const (
	EventRoomCreated  = "roomCreated"
	EventRoomError    = "roomError"
	EventPlayerJoined = "playerJoined"
	EventGameStart    = "gameStart"
	EventMoveMade     = "moveMade"
	EventPlayerLeft   = "playerLeft"
	EventPong         = "pong"
)

// Wire messages of roomError.
const (
	MsgRoomExists   = "Room already exists"
	MsgRoomNotFound = "Room not found"
	MsgRoomFull     = "Room is full"
)

// Envelope is the inbound frame: an event name plus its raw payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is the outbound frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type CreateRoomPayload struct {
	RoomID     domain.RoomID `json:"roomId"`
	PlayerName string        `json:"playerName"`
}

type JoinRoomPayload struct {
	RoomID     domain.RoomID `json:"roomId"`
	PlayerName string        `json:"playerName"`
}

// MovePayload carries an opaque move; it is never inspected.
type MovePayload struct {
	RoomID domain.RoomID   `json:"roomId"`
	Move   json.RawMessage `json:"move"`
}

type LeaveRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type RoomCreatedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type PlayersPayload struct {
	Players []domain.Participant `json:"players"`
}

type PlayerLeftPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
}

func RoomCreated(id domain.RoomID) Event {
	return Event{Type: EventRoomCreated, Data: RoomCreatedPayload{RoomID: id}}
}

func PlayerJoined(players []domain.Participant) Event {
	return Event{Type: EventPlayerJoined, Data: PlayersPayload{Players: players}}
}

func GameStart(players []domain.Participant) Event {
	return Event{Type: EventGameStart, Data: PlayersPayload{Players: players}}
}

// MoveMade forwards the move unwrapped. A missing move is sent as null.
func MoveMade(move json.RawMessage) Event {
	if len(move) == 0 {
		move = json.RawMessage("null")
	}
	return Event{Type: EventMoveMade, Data: move}
}

func PlayerLeft(id domain.PlayerID) Event {
	return Event{Type: EventPlayerLeft, Data: PlayerLeftPayload{PlayerID: id}}
}

func Pong() Event { return Event{Type: EventPong} }

// RoomError maps a domain rejection to its wire message.
func RoomError(err error) Event {
	return Event{Type: EventRoomError, Data: ErrorMessage(err)}
}

func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateRoom):
		return MsgRoomExists
	case errors.Is(err, domain.ErrRoomNotFound):
		return MsgRoomNotFound
	case errors.Is(err, domain.ErrRoomFull):
		return MsgRoomFull
	default:
		return err.Error()
	}
}
