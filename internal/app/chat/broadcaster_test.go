package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/user"
)

func seededRegistry(t *testing.T) *user.Registry {
	t.Helper()

	reg := user.NewRegistry()
	for _, u := range []struct{ id, name, room string }{
		{"a", "Ann", "Lobby"},
		{"b", "Bob", "lobby"},
		{"c", "Cid", "Kitchen"},
	} {
		_, err := reg.AddUser(u.id, u.name, u.room)
		require.Nil(t, err)
	}
	return reg
}

func TestBroadcasterTargets(t *testing.T) {
	reg := seededRegistry(t)
	tr := &recordingTransport{}
	b := NewBroadcaster(reg, tr)
	ev := NewMessage("x", "y", time.Now())

	b.ToConnection("c", ev)
	b.ToRoom("LOBBY", ev)
	b.ToRoomExcept("Lobby", "a", ev)

	got := tr.all()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c"}, got[0].targets)
	assert.Equal(t, []string{"a", "b"}, got[1].targets)
	assert.Equal(t, []string{"b"}, got[2].targets)
}

func TestBroadcasterSkipsEmptyTargetSets(t *testing.T) {
	reg := seededRegistry(t)
	tr := &recordingTransport{}
	b := NewBroadcaster(reg, tr)
	ev := NewMessage("x", "y", time.Now())

	b.ToRoom("attic", ev)
	b.ToRoomExcept("Kitchen", "c", ev)

	assert.Empty(t, tr.all())
}

func TestBroadcasterReadsRegistryAtDeliveryTime(t *testing.T) {
	reg := seededRegistry(t)
	tr := &recordingTransport{}
	b := NewBroadcaster(reg, tr)

	reg.RemoveUser("b")
	b.ToRoom("lobby", NewMessage("x", "y", time.Now()))

	got := tr.all()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a"}, got[0].targets)
}
