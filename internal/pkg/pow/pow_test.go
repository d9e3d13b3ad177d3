package pow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solve brute-forces a counter for nonce.
func solve(t *testing.T, nonce string, difficulty int) string {
	t.Helper()
	for i := 0; i < 10_000_000; i++ {
		counter := strconv.Itoa(i)
		if Satisfies(nonce, counter, difficulty) {
			return counter
		}
	}
	t.Fatal("no solution found")
	return ""
}

func newTestGate(t *testing.T, difficulty int) *Gate {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewGate(ctx, difficulty)
}

func TestGateIssuesSingleUseTicket(t *testing.T) {
	g := newTestGate(t, 2)
	require.True(t, g.Enabled())

	nonce := g.GenerateNonce()
	ticket, err := g.ValidateProof(nonce, solve(t, nonce, 2))
	require.NoError(t, err)

	_, err = g.ValidateProof(nonce, solve(t, nonce, 2))
	assert.ErrorIs(t, err, ErrNonceInvalid)

	req := httptest.NewRequest(http.MethodGet, "/ws?"+TokenQueryKey+"="+ticket, nil)
	assert.True(t, g.ConsumeTicket(req))
	assert.False(t, g.ConsumeTicket(req))
}

func TestGateRejectsBadProof(t *testing.T) {
	g := newTestGate(t, 2)
	nonce := g.GenerateNonce()

	counter := "0"
	for i := 1; Satisfies(nonce, counter, 2); i++ {
		counter = strconv.Itoa(i)
	}

	_, err := g.ValidateProof(nonce, counter)
	assert.ErrorIs(t, err, ErrProofInsufficient)
}

func TestGateRejectsExpired(t *testing.T) {
	g := newTestGate(t, 1)
	current := time.Now()
	g.now = func() time.Time { return current }

	nonce := g.GenerateNonce()
	counter := solve(t, nonce, 1)

	current = current.Add(NonceExpiryDuration + time.Second)
	_, err := g.ValidateProof(nonce, counter)
	assert.ErrorIs(t, err, ErrNonceInvalid)

	nonce = g.GenerateNonce()
	ticket, err := g.ValidateProof(nonce, solve(t, nonce, 1))
	require.NoError(t, err)

	current = current.Add(TicketDuration + time.Second)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(TokenHeaderKey, ticket)
	assert.False(t, g.ConsumeTicket(req))

	g.sweep()
	assert.Empty(t, g.nonces)
	assert.Empty(t, g.tickets)
}

func TestGateDisabled(t *testing.T) {
	var nilGate *Gate
	assert.False(t, nilGate.Enabled())
	assert.False(t, newTestGate(t, 0).Enabled())
}
