package main

import (
	"errors"
	"fmt"
)

const (
	TypeCreate          = "create"
	TypeJoin            = "join"
	TypeMove            = "move"
	TypeRematchRequest  = "rematch-request"
	TypeRematchAccepted = "rematch-accepted"

	TypeRoomCreated = "room-created"
	TypeStart       = "start"
	TypeError       = "error"
	TypePlayerLeft  = "player-left"
)

const (
	roomNotJoinableText = "Room not found or full"
	createFailedText    = "Could not create room"
	playerLeftText      = "Other player left the game"
)

var (
	ErrUndefinedType    = errors.New("incorrect type")
	ErrMalformedMessage = errors.New("malformed message")
)

type Move struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
}

func (m Move) validate() error {
	if m.Index < 0 || m.Index > 8 {
		return fmt.Errorf("%w: move index %d out of range", ErrMalformedMessage, m.Index)
	}
	if m.Symbol != "X" && m.Symbol != "O" {
		return fmt.Errorf("%w: move symbol %q", ErrMalformedMessage, m.Symbol)
	}
	return nil
}

// Inbound messages.

type CreateMessage struct{}

type JoinMessage struct {
	Code string `json:"code"`
}

type MoveMessage struct {
	Move Move `json:"move"`
}

type RematchRequestMessage struct{}

type RematchAcceptedMessage struct{}

// Outbound messages.

type CodeMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type TextMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RelayedMoveMessage struct {
	Type string `json:"type"`
	Move Move   `json:"move"`
}

type SignalMessage struct {
	Type string `json:"type"`
}

func NewRoomCreatedMessage(roomCode string) CodeMessage {
	return CodeMessage{Type: TypeRoomCreated, Code: roomCode}
}

func NewStartMessage(roomCode string) CodeMessage {
	return CodeMessage{Type: TypeStart, Code: roomCode}
}

func NewErrorMessage(text string) TextMessage {
	return TextMessage{Type: TypeError, Message: text}
}

func NewPlayerLeftMessage() TextMessage {
	return TextMessage{Type: TypePlayerLeft, Message: playerLeftText}
}

func NewMoveMessage(move Move) RelayedMoveMessage {
	return RelayedMoveMessage{Type: TypeMove, Move: move}
}

func NewSignalMessage(messageType string) SignalMessage {
	return SignalMessage{Type: messageType}
}

// ParseMessage decodes one inbound envelope into one of the inbound message
// structs. Unknown types yield ErrUndefinedType, anything that does not
// decode yields ErrMalformedMessage.
func ParseMessage(data []byte) (any, error) {
	envelope, err := UnmarshalJSON[struct {
		Type string `json:"type"`
	}](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch envelope.Type {
	case TypeCreate:
		return CreateMessage{}, nil
	case TypeJoin:
		join, err := UnmarshalJSON[JoinMessage](data)
		if err != nil {
			return nil, fmt.Errorf("%w: join code: %v", ErrMalformedMessage, err)
		}
		return join, nil
	case TypeMove:
		payload, err := UnmarshalJSON[struct {
			Move *Move `json:"move"`
		}](data)
		if err != nil {
			return nil, fmt.Errorf("%w: move: %v", ErrMalformedMessage, err)
		}
		if payload.Move == nil {
			return nil, fmt.Errorf("%w: move without payload", ErrMalformedMessage)
		}
		if err := payload.Move.validate(); err != nil {
			return nil, err
		}
		return MoveMessage{Move: *payload.Move}, nil
	case TypeRematchRequest:
		return RematchRequestMessage{}, nil
	case TypeRematchAccepted:
		return RematchAcceptedMessage{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUndefinedType, envelope.Type)
	}
}
