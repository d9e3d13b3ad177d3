package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorSessionMessages(t *testing.T) {
	cases := map[int]string{
		ErrValidation:    "Username and room are required",
		ErrDuplicateName: "Username is in use!",
		ErrProfanity:     "Profanity is not allowed!",
		ErrNotJoined:     "You must join a room first.",
	}

	for code, want := range cases {
		err := NewError(code)
		require.NotNil(t, err)
		assert.Equal(t, code, err.Code)
		assert.Equal(t, want, err.Message)
		assert.Equal(t, http.StatusOK, err.Status)
	}
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrMessageContentTooLong, 512)
	assert.Equal(t, "Message is too long (max 512 bytes).", err.Message)

	err = NewError(ErrUnknownEvent, "typing")
	assert.Equal(t, "Unsupported event: typing", err.Message)
}

func TestNewErrorIgnoresDetailsWithoutPlaceholder(t *testing.T) {
	err := NewError(ErrDuplicateName, "extra")
	assert.Equal(t, "Username is in use!", err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)
	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorReturnsIndependentCopies(t *testing.T) {
	a := NewError(ErrMessageContentTooLong, 1)
	b := NewError(ErrMessageContentTooLong, 2)
	assert.NotEqual(t, a.Message, b.Message)
	assert.Equal(t, "Message is too long (max %d bytes).", errorMap[ErrMessageContentTooLong].Message)
}
