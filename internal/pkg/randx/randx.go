/*
Package randx provides functions for generating unique identifiers.

Connection identifiers are opaque to clients and only need to be unique for the
lifetime of the process; they are derived from random UUIDs.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionIDPrefix is prepended to every generated connection id.
const ConnectionIDPrefix = "conn_"

// ConnectionID generates a new opaque connection identifier.
func ConnectionID() string {
	return ConnectionIDPrefix + uuid.NewString()
}

// Token generates an unguessable single-use token string.
func Token() string {
	return uuid.NewString()
}
