package identity

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/cha-ryne/ratings-sync/internal/logging"
	"github.com/redis/go-redis/v9"
)

// userIDKey is the single Redis key holding the device-scoped user ID.
const userIDKey = "ratings:user_id"

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Provider derives and persists a stable pseudo-anonymous user identifier.
// With no reachable storage it degrades to an ephemeral in-memory ID that
// stays stable for the lifetime of the process.
type Provider struct {
	client *redis.Client // may be nil when storage is unavailable

	mu     sync.Mutex
	cached string
}

// NewProvider creates a Provider backed by the given Redis client.
// A nil client is allowed and yields ephemeral IDs.
func NewProvider(client *redis.Client) *Provider {
	return &Provider{client: client}
}

// GetOrCreate returns the persisted user ID, creating and persisting one on
// first use. It never fails: persistence errors degrade to an ephemeral ID.
func (p *Provider) GetOrCreate(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	logger := logging.New(ctx)

	if p.client != nil {
		id, err := p.client.Get(ctx, userIDKey).Result()
		if err == nil && id != "" {
			p.cached = id
			return id
		}
		if err != nil && err != redis.Nil {
			logger.Warnf("identity_get", "storage unavailable, using ephemeral id: %v", err)
			p.cached = newUserID()
			return p.cached
		}
	}

	id := newUserID()
	if p.client != nil {
		if err := p.client.Set(ctx, userIDKey, id, 0).Err(); err != nil {
			logger.Warnf("identity_persist", "could not persist user id: %v", err)
		} else {
			logger.Infof("identity_persist", "user id initialized: %s", id)
		}
	}

	p.cached = id
	return id
}

// newUserID generates a short random token, e.g. "user_k3f9x2a".
// Collision probability is treated as negligible.
func newUserID() string {
	return "user_" + randomToken(7)
}

func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively unrecoverable; zero bytes
		// still map into the alphabet below.
		for i := range b {
			b[i] = byte(i)
		}
	}
	for i := range b {
		b[i] = tokenAlphabet[int(b[i])%len(tokenAlphabet)]
	}
	return string(b)
}
