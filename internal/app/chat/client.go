/*
Package chat is the WebSocket transport for the presence core.

This file defines the Client struct, one live WebSocket session for an
authenticated user. It runs the read/write pumps, dispatches inbound frames
to the message router, and tears down presence state when the connection
closes.
*/
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pulsechat/internal/pkg/auth/jwt"
	"pulsechat/internal/pkg/errs"
	"pulsechat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// MaxContentBytes caps the length of a single chat message.
	MaxContentBytes = 5000

	// capacity of the per-client outbound queue.
	sendQueueSize = 256

	// tokenRefreshWindow is how long before expiry a fresh token is pushed.
	tokenRefreshWindow = 2 * time.Minute
)

// Client represents one active WebSocket connection and its authenticated
// user. One user may hold several clients at once (tabs, devices); presence
// transitions are tracked per user, delivery per connection.
type Client struct {
	// opaque connection identifier, unique per session.
	id string

	// trusted username resolved from the session token before the upgrade.
	username string

	// service carrying the hub, tracker and router this client talks to.
	svc *Service

	// underlying WebSocket connection.
	conn *websocket.Conn

	// buffered outbound frame queue drained by WritePump.
	send chan []byte

	// mu guards closed; enqueue and closeSend may race between the hub,
	// delivery fan-outs and the client's own cleanup.
	mu     sync.Mutex
	closed bool

	// tokenExpiry records when the session token used to connect expires.
	tokenExpiry time.Time

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(svc *Service, conn *websocket.Conn, username, connID string, tokenExpiry time.Time) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("username", username).
		Logger()

	return &Client{
		id:          connID,
		username:    username,
		svc:         svc,
		conn:        conn,
		send:        make(chan []byte, sendQueueSize),
		tokenExpiry: tokenExpiry,
		logger:      clientLogger,
	}
}

// ReadPump reads inbound frames until the connection closes, then tears down
// the client's presence and hub state.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundFrame(messageBytes)
	}
}

// cleanupOnDisconnect runs when ReadPump exits. The presence disconnect goes
// first so the userDisconnected event, if this was the last connection, fires
// while the registry already reflects the departure.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.svc.Tracker.Disconnect(c.username, c.id)
	c.svc.Hub.Remove(c)
	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}
}

// processInboundFrame parses and dispatches one raw inbound frame.
func (c *Client) processInboundFrame(messageBytes []byte) {
	var inbound struct {
		Type    MessageType     `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case TypeSend:
		c.handleSend(inbound.Payload)

	case TypeUsers:
		c.handleUsers()

	default:
		c.logger.Warn().Str("msg_type", string(inbound.Type)).Msg("Client sent unsupported frame type")
		c.SendError(errs.NewError(errs.ErrMessageTypeUnknown))
	}
}

// handleSend routes a chat message: empty "to" broadcasts, otherwise the
// message goes directly to the named user. Routing is fire and forget; a
// direct message to an offline user is dropped without feedback.
func (c *Client) handleSend(payloadBytes json.RawMessage) {
	var payload SendPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid SEND payload")
		return
	}

	if len(payload.Content) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	if payload.To == "" {
		c.svc.Router.Broadcast(c.username, payload.Content)
		return
	}

	c.svc.Router.SendDirect(c.username, payload.To, payload.Content)
}

// handleUsers answers with the usernames currently online, excluding any
// user whose connection set contains this connection id.
func (c *Client) handleUsers() {
	c.sendEvent(EventConnectedUsers, c.svc.Tracker.Online(c.id))
}

// WritePump drains the send queue to the WebSocket and keeps the heartbeat
// going.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedFrame(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}

			c.checkAndRefreshToken()
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue. It returns
// false when the pump should terminate.
func (c *Client) writeQueuedFrame(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends the periodic heartbeat Ping. It returns false when
// the pump should terminate.
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

// checkAndRefreshToken pushes a fresh session token when the current one is
// close to expiry, so long-lived connections never go stale mid-session.
func (c *Client) checkAndRefreshToken() {
	if time.Now().Before(c.tokenExpiry.Add(-tokenRefreshWindow)) {
		return
	}

	c.logger.Info().
		Time("current_expiry", c.tokenExpiry).
		Dur("refresh_window", tokenRefreshWindow).
		Msg("Session token nearing expiry, attempting refresh.")

	payload := &jwt.Payload{
		Username: c.username,
	}

	tokenString, err := jwt.GenerateToken(payload, c.svc.jwtSecret, jwt.SessionExpiration)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to generate refreshed token. Aborting refresh.")
		return
	}

	if err := c.sendEvent(EventTokenUpdate, TokenUpdatePayload{Token: tokenString}); err != nil {
		c.logger.Error().Err(err).Msg("Failed to send token update.")
		return
	}

	c.tokenExpiry = time.Now().Add(jwt.SessionExpiration)
}

// sendEvent marshals one frame addressed to this client only and enqueues it.
func (c *Client) sendEvent(event string, payload any) error {
	frame, err := json.Marshal(Frame{Event: event, Payload: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling frame for client")
		return err
	}

	c.enqueue(frame)
	return nil
}

// SendError reports a rejected inbound frame back to this client.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	if sendErr := c.sendEvent(EventError, ErrorPayload{Code: code, Message: message}); sendErr != nil {
		c.logger.Error().Err(sendErr).Msg("Failed to queue error frame")
	}
}

// enqueue places a marshaled frame on the send queue without blocking. A
// full or closed queue drops the frame; the write pump's heartbeat deadline
// eventually disposes of receivers that never drain.
func (c *Client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame")
	}
}

// closeSend closes the send queue exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}
