package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/table"
)

// MessageType names a WebSocket message.
type MessageType string

// Client → Server
const (
	MessageTypeJoin   MessageType = "join"
	MessageTypeLeave  MessageType = "leave"
	MessageTypeSitOut MessageType = "sit_out"
	MessageTypeSitIn  MessageType = "sit_in"
	MessageTypeStart  MessageType = "start"
	MessageTypeAction MessageType = "action"
)

// Server → Client
const (
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeEvent   MessageType = "event"
	MessageTypeAck     MessageType = "ack"
	MessageTypeError   MessageType = "error"
)

func (t MessageType) String() string {
	return string(t)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// JoinData takes a seat. A nil Seat takes the first open one.
type JoinData struct {
	Seat  *int `json:"seat,omitempty"`
	BuyIn int  `json:"buyIn"`
}

// ActionData is a betting action. Amount is the raise-to total for RAISE.
// Seq must increase with every action the player sends.
type ActionData struct {
	Action *game.ActionType `json:"action"`
	Amount int              `json:"amount,omitempty"`
	Seq    uint64           `json:"seq"`
}

type WelcomeData struct {
	Player string        `json:"player"`
	Seat   int           `json:"seat"`
	Table  game.Snapshot `json:"table"`
}

type AckData struct {
	Request MessageType `json:"request"`
	Seat    int         `json:"seat"`
}

type ErrorData struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorData maps an error onto the wire format.
func errorData(err error) ErrorData {
	var ge *game.Error
	switch {
	case errors.As(err, &ge):
		return ErrorData{Kind: ge.Kind.String(), Code: ge.Code, Message: ge.Error()}
	case errors.Is(err, table.ErrClosed):
		return ErrorData{Kind: game.KindState.String(), Code: "TABLE_CLOSED", Message: err.Error()}
	}
	return ErrorData{Kind: "internal", Code: "INTERNAL", Message: err.Error()}
}
