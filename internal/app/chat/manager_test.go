package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"relaychat/internal/configs"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
)

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:     "development",
		MessageRate:     100,
		MessageBurst:    100,
		MaxMessageBytes: 2000,
		SendQueueSize:   16,
	}
}

// newFakeClient builds a registered client without a network connection.
func newFakeClient(t *testing.T, m *Manager, id string, queue int) *Client {
	t.Helper()

	c := &Client{
		id:      id,
		manager: m,
		send:    make(chan []byte, queue),
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logx.Logger().With().Str("connection_id", id).Logger(),
	}
	require.True(t, m.Register(c))
	return c
}

// drainEvents reads every queued frame and returns the decoded event names.
func drainEvents(t *testing.T, c *Client) []string {
	t.Helper()

	var names []string
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return names
			}
			var frame struct {
				Event string `json:"event"`
			}
			require.NoError(t, json.Unmarshal(data, &frame))
			names = append(names, frame.Event)
		default:
			return names
		}
	}
}

func TestManagerJoinDeliversThroughClients(t *testing.T) {
	m := NewManager(testConfig(), nil, WithClock(fixedClock))
	ann := newFakeClient(t, m, "ann", 16)
	bob := newFakeClient(t, m, "bob", 16)

	_, err := m.Coordinator().HandleJoin("ann", "Ann", "Lobby")
	require.Nil(t, err)
	assert.Equal(t, []string{"message", "roomData"}, drainEvents(t, ann))

	_, err = m.Coordinator().HandleJoin("bob", "Bob", "Lobby")
	require.Nil(t, err)
	assert.Equal(t, []string{"message", "roomData"}, drainEvents(t, ann))
	assert.Equal(t, []string{"message", "roomData"}, drainEvents(t, bob))
	assert.Equal(t, 2, m.ClientCount())
}

func TestManagerDeliverSkipsUnknownTargets(t *testing.T) {
	m := NewManager(testConfig(), nil)
	ann := newFakeClient(t, m, "ann", 4)

	m.Deliver([]string{"ghost", "ann"}, NewMessage("x", "y", fixedTime))
	assert.Equal(t, []string{"message"}, drainEvents(t, ann))
}

func TestManagerDeliverDropsOnFullQueue(t *testing.T) {
	m := NewManager(testConfig(), nil)
	slow := newFakeClient(t, m, "slow", 1)

	m.Deliver([]string{"slow"}, NewMessage("x", "1", fixedTime))
	m.Deliver([]string{"slow"}, NewMessage("x", "2", fixedTime))

	assert.Len(t, slow.send, 1)
}

func TestManagerUnregisterRunsDisconnectOnce(t *testing.T) {
	m := NewManager(testConfig(), nil, WithClock(fixedClock))
	ann := newFakeClient(t, m, "ann", 16)
	bob := newFakeClient(t, m, "bob", 16)
	_, err := m.Coordinator().HandleJoin("ann", "Ann", "Lobby")
	require.Nil(t, err)
	_, err = m.Coordinator().HandleJoin("bob", "Bob", "Lobby")
	require.Nil(t, err)
	drainEvents(t, ann)
	drainEvents(t, bob)

	m.Unregister(ann)
	m.Unregister(ann)

	_, ok := <-ann.send
	assert.False(t, ok, "send channel should be closed")
	assert.Equal(t, []string{"message", "roomData"}, drainEvents(t, bob))
	assert.Equal(t, 1, m.Registry().Count())
	assert.Equal(t, 1, m.ClientCount())
}

func TestManagerSendToUnregisteredClientFails(t *testing.T) {
	m := NewManager(testConfig(), nil)
	c := newFakeClient(t, m, "c", 4)
	m.Unregister(c)

	assert.False(t, m.send(c, []byte(`{}`)))
}

func TestManagerShutdown(t *testing.T) {
	m := NewManager(testConfig(), nil)
	c := newFakeClient(t, m, "c", 4)
	_, err := m.Coordinator().HandleJoin("c", "Cid", "Lobby")
	require.Nil(t, err)

	m.Shutdown()

	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, 0, m.Registry().Count())
	drainEvents(t, c)
	_, ok := <-c.send
	assert.False(t, ok)

	late := &Client{id: "late", manager: m, send: make(chan []byte, 1)}
	assert.False(t, m.Register(late))

	u, joinErr := m.Coordinator().HandleJoin("c", "Cid", "Lobby")
	require.NotNil(t, joinErr)
	assert.Equal(t, errs.ErrServerShuttingDown, joinErr.Code)
	assert.Empty(t, u.ID)
	assert.Equal(t, 0, m.Registry().Count())
}

func TestManagerOverflowDropsClientOnce(t *testing.T) {
	m := NewManager(testConfig(), nil)
	slow := newFakeClient(t, m, "slow", 1)
	before := testutil.ToFloat64(metrics.DroppedConnections)

	for i := 0; i < 50; i++ {
		m.Deliver([]string{"slow"}, NewMessage("x", "flood", fixedTime))
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.DroppedConnections)-before >= 1
	}, time.Second, 5*time.Millisecond)

	rerun := false
	slow.dropOnce.Do(func() { rerun = true })
	assert.False(t, rerun, "overflow should have consumed the single drop")

	slow.Drop("again")
	assert.Len(t, slow.send, 1)
}
