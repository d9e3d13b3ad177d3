/*
Package chat contains the core logic for relaying real-time room chat between connections.

This file defines the Coordinator, which runs the join / send / disconnect protocol for every
connection: it validates requests, mutates the Registry and decides who hears about it.
*/
package chat

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"relaychat/internal/app/user"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
	"relaychat/internal/pkg/profanity"
)

// DefaultMaxMessageBytes is the message size limit when none is configured.
const DefaultMaxMessageBytes = 2000

// Coordinator orchestrates session lifecycle and message fanout.
type Coordinator struct {
	// registry owns all user records.
	registry *user.Registry

	// broadcaster computes targets and hands events to the transport.
	broadcaster *Broadcaster

	// filter rejects profane message text.
	filter profanity.Filter

	// maxMessageBytes caps the size of a text message.
	maxMessageBytes int

	// now stamps outgoing messages.
	now func() time.Time

	// mu serializes every operation, so mutation, target computation and queueing
	// happen as one step and each peer observes room events in mutation order.
	mu sync.Mutex

	// closed is set by Close; later joins are refused.
	closed bool

	// structured logger with Coordinator context.
	logger zerolog.Logger
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock sets the clock used for createdAt timestamps.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithMaxMessageBytes sets the maximum accepted message size in bytes.
func WithMaxMessageBytes(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxMessageBytes = n
		}
	}
}

// NewCoordinator constructs a Coordinator over registry, delivering through transport.
// A nil filter accepts all text.
func NewCoordinator(registry *user.Registry, transport Transport, filter profanity.Filter, opts ...CoordinatorOption) *Coordinator {
	if filter == nil {
		filter = profanity.Allow
	}

	c := &Coordinator{
		registry:        registry,
		broadcaster:     NewBroadcaster(registry, transport),
		filter:          filter,
		maxMessageBytes: DefaultMaxMessageBytes,
		now:             time.Now,
		logger:          logx.Component("Coordinator"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HandleJoin registers connectionID as username in room.
// On success the joiner is welcomed, the rest of the room is told, and everyone
// (joiner included) receives the new roster. On failure nothing is delivered.
func (c *Coordinator) HandleJoin(connectionID, username, room string) (user.User, *errs.CustomError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return user.User{}, c.reject(EventJoin, connectionID, errs.NewError(errs.ErrServerShuttingDown))
	}

	u, err := c.registry.AddUser(connectionID, username, room)
	if err != nil {
		c.reject(EventJoin, connectionID, err)
		return user.User{}, err
	}

	now := c.now()
	c.broadcaster.ToConnection(u.ID, NewMessage(AdminUsername, welcomeText, now))
	c.broadcaster.ToRoomExcept(u.Room, u.ID, NewMessage(AdminUsername, joinedText(u.Username), now))
	c.broadcaster.ToRoom(u.Room, NewRoomData(u.Room, c.registry.GetUsersInRoom(u.Room)))

	metrics.Joins.Inc()
	metrics.SessionUsers.Set(float64(c.registry.Count()))

	c.logger.Info().
		Str("connection_id", u.ID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User joined room.")

	return u, nil
}

// HandleSendMessage posts text from connectionID to everyone in its room, sender included.
func (c *Coordinator) HandleSendMessage(connectionID, text string) *errs.CustomError {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.registry.GetUser(connectionID)
	if !ok {
		return c.reject(EventSendMessage, connectionID, errs.NewError(errs.ErrNotJoined))
	}

	if strings.TrimSpace(text) == "" {
		return c.reject(EventSendMessage, connectionID, errs.NewError(errs.ErrEmptyMessage))
	}

	if len(text) > c.maxMessageBytes {
		return c.reject(EventSendMessage, connectionID, errs.NewError(errs.ErrMessageContentTooLong, c.maxMessageBytes))
	}

	if c.filter.IsProfane(text) {
		return c.reject(EventSendMessage, connectionID, errs.NewError(errs.ErrProfanity))
	}

	c.broadcaster.ToRoom(u.Room, NewMessage(u.Username, text, c.now()))
	metrics.Messages.WithLabelValues("text").Inc()

	return nil
}

// HandleSendLocation shares a map link for the coordinates with everyone in the sender's room.
func (c *Coordinator) HandleSendLocation(connectionID string, latitude, longitude float64) *errs.CustomError {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.registry.GetUser(connectionID)
	if !ok {
		return c.reject(EventSendLocation, connectionID, errs.NewError(errs.ErrNotJoined))
	}

	if !validCoordinate(latitude, 90) || !validCoordinate(longitude, 180) {
		return c.reject(EventSendLocation, connectionID, errs.NewError(errs.ErrInvalidCoordinates))
	}

	c.broadcaster.ToRoom(u.Room, NewLocationMessage(u.Username, latitude, longitude, c.now()))
	metrics.Messages.WithLabelValues("location").Inc()

	return nil
}

// HandleDisconnect ends the session of connectionID, if any, and tells the remaining members.
// Unknown or already-removed connections are ignored.
func (c *Coordinator) HandleDisconnect(connectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.registry.RemoveUser(connectionID)
	if !ok {
		return
	}

	c.broadcaster.ToRoom(u.Room, NewMessage(AdminUsername, leftText(u.Username), c.now()))
	c.broadcaster.ToRoom(u.Room, NewRoomData(u.Room, c.registry.GetUsersInRoom(u.Room)))

	metrics.SessionUsers.Set(float64(c.registry.Count()))

	c.logger.Info().
		Str("connection_id", u.ID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User left room.")
}

// Close ends every session without notifications and refuses further joins.
// It returns the number of sessions discarded.
func (c *Coordinator) Close() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	n := c.registry.Clear()
	metrics.SessionUsers.Set(0)

	return n
}

// Roster returns the current members of room.
func (c *Coordinator) Roster(room string) []user.User {
	return c.registry.GetUsersInRoom(room)
}

// reject records a refused request and returns err unchanged.
func (c *Coordinator) reject(event EventName, connectionID string, err *errs.CustomError) *errs.CustomError {
	metrics.Rejections.WithLabelValues(string(event), strconv.Itoa(err.Code)).Inc()

	c.logger.Debug().
		Str("connection_id", connectionID).
		Str("event", string(event)).
		Int("code", err.Code).
		Msg("Request rejected.")

	return err
}

func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}
