package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConnectionID(t *testing.T) {
	a := ConnectionID()
	b := ConnectionID()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, ConnectionIDPrefix))

	_, err := uuid.Parse(strings.TrimPrefix(a, ConnectionIDPrefix))
	assert.NoError(t, err)
}
