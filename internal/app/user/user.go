/*
Package user contains core data structures and logic related to connected chat participants.

It defines the User record bound to a live connection and the Registry that owns every
record, enforcing that a display name is unique (case-insensitively) within its room.
*/
package user

import "strings"

// User represents one participant bound to one live connection.
// Only Username and Room are serialized; the connection id never leaves the server.
type User struct {

	// ID is the opaque connection identifier supplied by the transport layer.
	ID string `json:"-"`

	// Username is the trimmed display name, stored with its original casing.
	Username string `json:"username"`

	// Room is the trimmed room name, stored with its original casing.
	Room string `json:"room"`

	// seq is the registry-assigned join order used for stable roster ordering.
	seq uint64
}

// normalize folds a raw name or room into its comparison key.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameRoom reports whether room names the same room as the user's, ignoring case and surrounding space.
func (u User) SameRoom(room string) bool {
	return normalize(u.Room) == normalize(room)
}
