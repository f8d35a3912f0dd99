package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Bound on a single table command issued for a client
	commandTimeout = 5 * time.Second
)

// Connection is one player's WebSocket session at one table.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	player    string
	actor     *table.Actor
	sub       *table.Subscription
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	onClose   func(*Connection)
}

func newConnection(conn *websocket.Conn, actor *table.Actor, player string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		player: player,
		actor:  actor,
		logger: logger.WithPrefix("conn").With("table", actor.ID(), "player", player),
		ctx:    ctx,
		cancel: cancel,
	}
}

// start subscribes to the table, restores a held seat and begins pumping.
func (c *Connection) start() error {
	c.sub = c.actor.SubscribePlayer(c.player)

	ctx, cancel := context.WithTimeout(c.ctx, commandTimeout)
	defer cancel()
	seat, err := c.actor.SeatOf(ctx, c.player)
	if err != nil {
		c.sub.Close()
		return err
	}
	if seat >= 0 {
		if err := c.actor.Reconnect(ctx, seat); err != nil {
			c.sub.Close()
			return err
		}
	}
	snap, err := c.actor.Snapshot(ctx)
	if err != nil {
		c.sub.Close()
		return err
	}
	c.reply(MessageTypeWelcome, "", WelcomeData{Player: c.player, Seat: seat, Table: snap})

	go c.writePump()
	go c.readPump()
	go c.forward()
	return nil
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.sub != nil {
			c.sub.Close()
		}
		err = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

// SendMessage queues msg for the client. A full buffer closes the
// connection.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return websocket.ErrCloseSent
	}
}

// forward relays table events until the subscription ends.
func (c *Connection) forward() {
	for e := range c.sub.C {
		msg, err := NewMessage(MessageTypeEvent, e)
		if err != nil {
			c.logger.Error("Failed to encode event", "type", e.Type, "error", err)
			continue
		}
		if err := c.SendMessage(msg); err != nil {
			return
		}
	}
	if c.ctx.Err() == nil {
		c.logger.Warn("Event stream dropped, closing connection")
		_ = c.Close()
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage applies one client request to the table.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	ctx, cancel := context.WithTimeout(c.ctx, commandTimeout)
	defer cancel()

	seat, err := c.handle(ctx, msg)
	if err != nil {
		c.logger.Debug("Request rejected", "type", msg.Type, "error", err)
		c.reply(MessageTypeError, msg.RequestID, errorData(err))
		return
	}
	c.reply(MessageTypeAck, msg.RequestID, AckData{Request: msg.Type, Seat: seat})
}

func (c *Connection) handle(ctx context.Context, msg *Message) (int, error) {
	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := decode(msg, &data); err != nil {
			return -1, err
		}
		seat := -1
		if data.Seat != nil {
			seat = *data.Seat
		}
		return c.actor.Join(ctx, c.player, seat, data.BuyIn)

	case MessageTypeStart:
		return -1, c.actor.StartHand(ctx)

	case MessageTypeLeave, MessageTypeSitOut, MessageTypeSitIn, MessageTypeAction:
		seat, err := c.actor.SeatOf(ctx, c.player)
		if err != nil {
			return -1, err
		}
		if seat < 0 {
			return -1, game.ErrNotSeated
		}
		switch msg.Type {
		case MessageTypeLeave:
			return seat, c.actor.Leave(ctx, seat)
		case MessageTypeSitOut:
			return seat, c.actor.SitOut(ctx, seat)
		case MessageTypeSitIn:
			return seat, c.actor.SitIn(ctx, seat)
		}
		var data ActionData
		if err := decode(msg, &data); err != nil {
			return seat, err
		}
		if data.Action == nil {
			return seat, game.ErrInvalidAction
		}
		return seat, c.actor.Act(ctx, game.ActionRequest{
			TableID:   c.actor.ID(),
			Seat:      seat,
			Type:      *data.Action,
			Amount:    data.Amount,
			ClientSeq: data.Seq,
		})
	}
	return -1, &game.Error{Kind: game.KindValidation, Code: "UNKNOWN_MESSAGE", Msg: "unknown message type: " + msg.Type.String()}
}

func decode(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		var ge *game.Error
		if errors.As(err, &ge) {
			return ge
		}
		return &game.Error{Kind: game.KindValidation, Code: "INVALID_MESSAGE", Msg: fmt.Sprintf("failed to parse %s data: %v", msg.Type, err)}
	}
	return nil
}

func (c *Connection) reply(t MessageType, requestID string, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}
