/*
Package pow implements the Proof-of-Work (PoW) gate placed in front of relay connections.

A client fetches a nonce, searches for a counter whose SHA-256 hash of nonce+counter has the
required number of leading hex zeros, and exchanges the proof for a short-lived, single-use
connect ticket that the WebSocket upgrade consumes.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"relaychat/internal/pkg/randx"
)

const (
	// TokenHeaderKey is the HTTP header key used by the client to send the connect ticket.
	TokenHeaderKey = "X-PoW-Token"

	// TokenQueryKey is the query parameter alternative to TokenHeaderKey (browsers cannot set
	// headers on WebSocket upgrades).
	TokenQueryKey = "pow_token"

	// TicketDuration is the validity period of a connect ticket.
	TicketDuration = 30 * time.Second

	// NonceExpiryDuration is the validity period for the challenge nonce.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already-used nonces.
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrProofInsufficient is returned when the hash lacks the required leading zeros.
	ErrProofInsufficient = errors.New("proof does not meet difficulty requirement")
)

// Gate manages the lifecycle of PoW challenges and connect tickets.
// It is concurrency-safe.
type Gate struct {
	// difficulty is the required number of leading zeros for the PoW challenge hash.
	difficulty int

	// nonces stores active nonces and their expiration times.
	nonces map[string]time.Time

	// tickets stores issued connect tickets and their expiration times.
	tickets map[string]time.Time

	// now is the gate's clock.
	now func() time.Time

	// mu protects nonces and tickets.
	mu sync.Mutex
}

// NewGate creates a Gate with the given difficulty. Expired entries are swept in the
// background until ctx is cancelled.
func NewGate(ctx context.Context, difficulty int) *Gate {
	g := &Gate{
		difficulty: difficulty,
		nonces:     make(map[string]time.Time),
		tickets:    make(map[string]time.Time),
		now:        time.Now,
	}

	go g.cleanupExpiredEntries(ctx)

	return g
}

// Enabled reports whether connections must present a ticket.
func (g *Gate) Enabled() bool {
	return g != nil && g.difficulty > 0
}

// Difficulty returns the number of leading hex zeros required.
func (g *Gate) Difficulty() int {
	return g.difficulty
}

// GenerateNonce issues a new challenge nonce.
func (g *Gate) GenerateNonce() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	nonce := randx.Token()
	g.nonces[nonce] = g.now().Add(NonceExpiryDuration)
	return nonce
}

// ValidateProof checks the proof for nonce and, on success, consumes the nonce and
// returns a new connect ticket.
func (g *Gate) ValidateProof(nonce, counter string) (string, error) {
	if !Satisfies(nonce, counter, g.difficulty) {
		return "", ErrProofInsufficient
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.nonces[nonce]
	if !ok || g.now().After(expiry) {
		return "", ErrNonceInvalid
	}
	delete(g.nonces, nonce)

	ticket := randx.Token()
	g.tickets[ticket] = g.now().Add(TicketDuration)
	return ticket, nil
}

// ConsumeTicket checks the ticket carried by r and invalidates it.
// The ticket is read from the TokenHeaderKey header or the TokenQueryKey query parameter.
func (g *Gate) ConsumeTicket(r *http.Request) bool {
	ticket := r.Header.Get(TokenHeaderKey)
	if ticket == "" {
		ticket = r.URL.Query().Get(TokenQueryKey)
	}

	if ticket == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.tickets[ticket]
	if !ok {
		return false
	}
	delete(g.tickets, ticket)

	return !g.now().After(expiry)
}

// Satisfies reports whether sha256(nonce+counter) starts with difficulty hex zeros.
func Satisfies(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

// cleanupExpiredEntries periodically removes expired nonces and tickets.
func (g *Gate) cleanupExpiredEntries(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *Gate) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for nonce, expiry := range g.nonces {
		if now.After(expiry) {
			delete(g.nonces, nonce)
		}
	}
	for ticket, expiry := range g.tickets {
		if now.After(expiry) {
			delete(g.tickets, ticket)
		}
	}
}
