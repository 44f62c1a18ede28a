/*
Package chat contains the core logic for the one-to-one real-time messaging hub.

This file defines the Client struct, representing an active WebSocket connection.
It manages the connection's lifecycle, the message communication loops (ReadPump
and WritePump), and the dispatch of inbound events to the Hub.
*/
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192
)

// Client represents an active WebSocket connection and its authenticated session.
type Client struct {
	// hub receives the session's events.
	hub *Hub

	// registry tracks this connection for targeted delivery.
	registry *Registry

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// sess is the authenticated identity and connection handle.
	sess Session

	// peerHint optionally names the conversation partner whose history is
	// loaded immediately on connect.
	peerHint string

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// structured logger with session context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(hub *Hub, registry *Registry, wsConn *websocket.Conn, sess Session, peerHint string) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", sess.User.ID).
		Str("connection_id", sess.ConnectionID).
		Logger()

	return &Client{
		hub:      hub,
		registry: registry,
		conn:     wsConn,
		sess:     sess,
		peerHint: peerHint,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}
}

// Send queues an encoded event frame for delivery to the client. It never
// blocks: if the client's queue is full the frame is dropped and an error
// returned, which the registry logs and swallows.
func (c *Client) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("client send queue full")
	}
}

// Run registers the connection, announces the session to the hub, and then
// blocks in the read loop until the connection closes.
func (c *Client) Run() {
	go c.writePump()

	c.registry.Add(c.sess.ConnectionID, c)
	c.hub.Connect(context.Background(), c.sess, c.peerHint)

	c.readPump()
}

// readPump handles reading events from the WebSocket connection.
// It handles heartbeats (Pong), event parsing, and performs cleanup upon
// connection closure.
func (c *Client) readPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading event (client close/going away)")
			}
			break
		}

		c.processInboundEvent(frame)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the read loop
// terminates: the connection leaves the registry, the hub removes the session
// from presence, and the socket is closed.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.registry.Remove(c.sess.ConnectionID)

	// A background context: presence removal and the snapshot broadcast must
	// complete even though this connection is gone.
	c.hub.Disconnect(context.Background(), c.sess)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent handles raw frames received from the client and
// dispatches them to the hub with this session's identity attached. Each
// operation runs on a context detached from the connection so that in-flight
// store writes complete even if the client disconnects mid-operation.
func (c *Client) processInboundEvent(frame []byte) {
	var inbound struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame", frame).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Event {
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid send-message payload")
			return
		}
		c.hub.SendMessage(context.Background(), c.sess, payload.ReceiverID, payload.Content)

	case EventLoadMessages:
		var payload LoadMessagesPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid load-messages payload")
			return
		}
		if payload.Page < 1 {
			payload.Page = 1
		}
		c.hub.LoadHistory(context.Background(), c.sess, payload.PeerID, payload.Page)

	case EventNotifyTyping:
		var payload NotifyTypingPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid notify-typing payload")
			return
		}
		c.hub.NotifyTyping(c.sess, payload.PeerName)

	default:
		c.logger.Warn().Str("event", inbound.Event).Msg("Client sent unsupported event")
	}
}

// writePump handles writing frames from the Client.send channel to the
// WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame handles frames pulled from the send channel, writing them to
// the WebSocket. Returns true if the write loop should continue, false if it
// should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing event frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the
// connection heartbeat. Returns false if the write loop should terminate due
// to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
