/*
Package chat contains the core logic for relaying real-time room chat between connections.

This file defines the Client struct, representing an active WebSocket connection. It manages the
connection's read and write loops (ReadPump and WritePump), decodes request frames, forwards them
to the Coordinator and answers each one with exactly one acknowledgment.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
	"relaychat/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// frameOverhead is the allowance for JSON framing on top of the escaped message text.
	frameOverhead = 1024

	// maxEscapeFactor is the worst-case growth of text under JSON string escaping ("\u00XX").
	maxEscapeFactor = 6

	// defaultSendQueueSize is used when the configuration leaves the queue size unset.
	defaultSendQueueSize = 256
)

// Client struct represents an active WebSocket connection.
type Client struct {
	// opaque connection id, also the registry key of the joined user.
	id string

	// the manager that owns this connection.
	manager *Manager

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue encoded frames waiting to be written.
	send chan []byte

	// limiter throttles request frames from this connection.
	limiter *rate.Limiter

	// dropOnce limits a connection to a single forced close.
	dropOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client for conn with a fresh connection id.
func NewClient(manager *Manager, wsConn *websocket.Conn) *Client {
	id := randx.ConnectionID()

	queueSize := manager.config.SendQueueSize
	if queueSize <= 0 {
		queueSize = defaultSendQueueSize
	}

	return &Client{
		id:      id,
		manager: manager,
		conn:    wsConn,
		send:    make(chan []byte, queueSize),
		limiter: rate.NewLimiter(rate.Limit(manager.config.MessageRate), manager.config.MessageBurst),
		logger:  logx.Logger().With().Str("connection_id", id).Logger(),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// ReadPump handles reading frames from the WebSocket connection until it fails or the
// client must be disconnected, then unregisters the client.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(readLimit(c.manager.config.MaxMessageBytes))

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
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if !c.processInbound(messageBytes) {
			break
		}
	}
}

// readLimit is the largest inbound frame accepted for a message size limit of maxMessageBytes.
// Frames are bounded by the escaped size; the unescaped text is checked by the Coordinator.
func readLimit(maxMessageBytes int) int64 {
	if maxMessageBytes <= 0 {
		maxMessageBytes = DefaultMaxMessageBytes
	}
	return int64(maxEscapeFactor*maxMessageBytes + frameOverhead)
}

// cleanupOnDisconnect unregisters the client. The connection itself is closed by WritePump
// once the queued frames (such as a final acknowledgment) have been flushed.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")
	c.manager.Unregister(c)
}

// processInbound decodes one frame and dispatches it.
// It returns false when the connection should be closed.
func (c *Client) processInbound(messageBytes []byte) (keepOpen bool) {
	keepOpen = true

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Interface("panic", r).
				Msg("Recovered from panic while handling client frame. Closing connection.")
			keepOpen = false
		}
	}()

	var frame InboundFrame
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return true
	}

	var ackID int64
	if frame.AckID != nil {
		ackID = *frame.AckID
	}

	switch frame.Event {
	case EventJoin, EventSendMessage, EventSendLocation:
	default:
		c.logger.Warn().Str("event", string(frame.Event)).Msg("Client sent unsupported event")
		if frame.AckID != nil {
			c.ack(ackID, errs.NewError(errs.ErrUnknownEvent, frame.Event))
		}
		return true
	}

	if !c.limiter.Allow() {
		c.ack(ackID, errs.NewError(errs.ErrRateLimitExceeded))
		return true
	}

	switch frame.Event {
	case EventJoin:
		return c.handleJoin(frame.Payload, ackID)
	case EventSendMessage:
		c.handleSendMessage(frame.Payload, ackID)
	case EventSendLocation:
		c.handleSendLocation(frame.Payload, ackID)
	}

	return true
}

// handleJoin processes a join request. A failed join closes the connection after the ack.
func (c *Client) handleJoin(payloadBytes json.RawMessage, ackID int64) bool {
	var payload JoinPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
		c.ack(ackID, errs.NewError(errs.ErrInvalidParams))
		return false
	}

	_, joinErr := c.manager.coordinator.HandleJoin(c.id, payload.Username, payload.Room)
	if joinErr != nil {
		c.ack(ackID, joinErr)

		// an existing session survives a repeated join attempt
		return joinErr.Code == errs.ErrAlreadyJoined
	}

	c.ack(ackID, nil)
	return true
}

// handleSendMessage processes a text message request.
func (c *Client) handleSendMessage(payloadBytes json.RawMessage, ackID int64) {
	var payload SendMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
		c.ack(ackID, errs.NewError(errs.ErrInvalidParams))
		return
	}

	c.ack(ackID, c.manager.coordinator.HandleSendMessage(c.id, payload.Text))
}

// handleSendLocation processes a location sharing request.
func (c *Client) handleSendLocation(payloadBytes json.RawMessage, ackID int64) {
	var payload SendLocationPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil || payload.Latitude == nil || payload.Longitude == nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendLocation payload")
		c.ack(ackID, errs.NewError(errs.ErrInvalidParams))
		return
	}

	c.ack(ackID, c.manager.coordinator.HandleSendLocation(c.id, *payload.Latitude, *payload.Longitude))
}

// ack queues the acknowledgment for one request. A nil error acknowledges success.
func (c *Client) ack(ackID int64, customErr *errs.CustomError) {
	frame := AckFrame{Name: EventAck, AckID: ackID}
	if customErr != nil {
		frame.Error = customErr.Message
	}

	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling ack frame")
		return
	}

	if !c.manager.send(c, data) {
		c.logger.Warn().Int64("ack_id", ackID).Msg("Failed to queue ack")
	}
}

// WritePump writes queued frames to the WebSocket connection and keeps the heartbeat alive.
// It closes the connection when the send channel is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame pulled from the send channel.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
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

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
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

// Drop forcibly closes the connection with a policy close frame. ReadPump then fails and
// the client is unregistered through the normal path. Only the first call has any effect.
func (c *Client) Drop(reason string) {
	c.dropOnce.Do(func() { c.drop(reason) })
}

// dropAsync schedules Drop on its own goroutine, at most once per connection.
// Used where the caller holds locks that a blocking close must not run under.
func (c *Client) dropAsync(reason string) {
	c.dropOnce.Do(func() { go c.drop(reason) })
}

func (c *Client) drop(reason string) {
	metrics.DroppedConnections.Inc()
	c.logger.Warn().Str("reason", reason).Msg("Dropping client connection.")

	if c.conn == nil {
		return
	}

	closeMessage := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close frame while dropping client.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error in Drop")
	}
}
