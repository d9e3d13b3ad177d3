/*
Package chat contains the core logic for relaying real-time room chat between connections.

This file defines the event model exchanged with clients: inbound request frames, outbound
events (message, locationMessage, roomData) and the per-request acknowledgment frame.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"relaychat/internal/app/user"
)

// EventName identifies the kind of a frame on the wire.
type EventName string

const (
	// EventJoin is the inbound request to join a room.
	EventJoin EventName = "join"

	// EventSendMessage is the inbound request to post a text message.
	EventSendMessage EventName = "sendMessage"

	// EventSendLocation is the inbound request to share a location.
	EventSendLocation EventName = "sendLocation"

	// EventMessage carries a text message (user or system) to clients.
	EventMessage EventName = "message"

	// EventLocationMessage carries a shared location link to clients.
	EventLocationMessage EventName = "locationMessage"

	// EventRoomData carries the current roster of a room.
	EventRoomData EventName = "roomData"

	// EventAck answers exactly one inbound request.
	EventAck EventName = "ack"
)

// AdminUsername is the sender name used for system notices.
const AdminUsername = "Admin"

// mapURLBase is the prefix of generated location links.
const mapURLBase = "https://google.com/maps?q="

// Event is one outbound event together with its payload.
type Event struct {
	Name    EventName `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// MessagePayload is the payload of EventMessage.
type MessagePayload struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationPayload is the payload of EventLocationMessage.
type LocationPayload struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// RoomDataPayload is the payload of EventRoomData.
type RoomDataPayload struct {
	Room  string      `json:"room"`
	Users []user.User `json:"users"`
}

// AckFrame is the single response to a request-style inbound frame.
// Error is empty on success.
type AckFrame struct {
	Name  EventName `json:"event"`
	AckID int64     `json:"ackId"`
	Error string    `json:"error,omitempty"`
}

// InboundFrame is a raw frame received from a client.
type InboundFrame struct {
	Event   EventName       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	AckID   *int64          `json:"ackId,omitempty"`
}

// JoinPayload is the payload of EventJoin.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendMessagePayload is the payload of EventSendMessage.
type SendMessagePayload struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts either {"text": "..."} or a bare JSON string.
func (p *SendMessagePayload) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		p.Text = text
		return nil
	}

	type plain SendMessagePayload
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = SendMessagePayload(decoded)
	return nil
}

// SendLocationPayload is the payload of EventSendLocation.
// Pointers distinguish a missing coordinate from zero.
type SendLocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NewMessage builds an EventMessage stamped with at.
func NewMessage(username, text string, at time.Time) Event {
	return Event{
		Name: EventMessage,
		Payload: MessagePayload{
			Username:  username,
			Text:      text,
			CreatedAt: at.UnixMilli(),
		},
	}
}

// NewLocationMessage builds an EventLocationMessage linking to latitude/longitude.
func NewLocationMessage(username string, latitude, longitude float64, at time.Time) Event {
	return Event{
		Name: EventLocationMessage,
		Payload: LocationPayload{
			Username:  username,
			URL:       MapURL(latitude, longitude),
			CreatedAt: at.UnixMilli(),
		},
	}
}

// NewRoomData builds an EventRoomData for room with the given roster.
func NewRoomData(room string, users []user.User) Event {
	if users == nil {
		users = []user.User{}
	}
	return Event{
		Name: EventRoomData,
		Payload: RoomDataPayload{
			Room:  room,
			Users: users,
		},
	}
}

// MapURL returns a map link for the coordinates using the shortest exact decimal form.
func MapURL(latitude, longitude float64) string {
	return fmt.Sprintf("%s%s,%s",
		mapURLBase,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)
}

// welcomeText is the private greeting sent to a user who just joined.
const welcomeText = "Welcome!"

func joinedText(username string) string { return fmt.Sprintf("%s has joined!", username) }

func leftText(username string) string { return fmt.Sprintf("%s has left!", username) }
