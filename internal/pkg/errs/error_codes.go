/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific session or system errors
both internally within the relay and in acknowledgments sent back to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or frame parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnknownEvent indicates that a client frame named an event the relay does not handle.
	ErrUnknownEvent = 1008
)

// 2xxx: Room and Session Errors
const (
	// ErrValidation indicates an empty username or room after trimming.
	ErrValidation = 2001

	// ErrDuplicateName indicates the username is already taken in the room (case-insensitive).
	ErrDuplicateName = 2002

	// ErrAlreadyJoined indicates the connection already holds a live session.
	ErrAlreadyJoined = 2003

	// ErrNotJoined indicates an operation attempted without a live session.
	ErrNotJoined = 2004

	// ErrProfanity indicates the message text was flagged by the profanity filter.
	ErrProfanity = 2201

	// ErrEmptyMessage indicates the message text was blank.
	ErrEmptyMessage = 2202

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2203

	// ErrInvalidCoordinates indicates a latitude or longitude outside the valid range.
	ErrInvalidCoordinates = 2204
)

// 3xxx: Connection Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid or incorrect.
	ErrPowChallengeInvalid = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrServerShuttingDown indicates the relay is stopping and accepts no new sessions.
	ErrServerShuttingDown = 5001
)
