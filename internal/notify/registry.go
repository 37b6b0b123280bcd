// Package notify fans out push notifications for published reports: one
// message to the fixed broadcast topic and one per registered web token.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TokenRegistry is the set of registered web push tokens. It never contains
// an empty entry or a duplicate, and registration is safe under concurrent
// callers. The in-memory set is the delivery source of truth; when a pool is
// provided, tokens are also persisted and reloaded across restarts.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewTokenRegistry creates an empty registry. pool may be nil for a purely
// in-memory registry.
func NewTokenRegistry(pool *pgxpool.Pool, logger *zap.SugaredLogger) *TokenRegistry {
	return &TokenRegistry{
		tokens: make(map[string]struct{}),
		pool:   pool,
		logger: logger,
	}
}

// Load restores persisted tokens into the in-memory set.
func (r *TokenRegistry) Load(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}

	rows, err := r.pool.Query(ctx, `SELECT token FROM push_tokens`)
	if err != nil {
		return fmt.Errorf("load push tokens: %w", err)
	}
	defer rows.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return fmt.Errorf("scan push token: %w", err)
		}
		if token != "" {
			r.tokens[token] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate push tokens: %w", err)
	}

	r.logger.Infow("loaded registered push tokens", "count", len(r.tokens))
	return nil
}

// Register adds a token to the set. Empty input and already-present tokens
// are no-ops.
func (r *TokenRegistry) Register(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	r.mu.Lock()
	_, exists := r.tokens[token]
	if !exists {
		r.tokens[token] = struct{}{}
	}
	r.mu.Unlock()

	if exists || r.pool == nil {
		return
	}

	// Persistence is best effort: the in-memory set already holds the token,
	// so a failed insert only costs durability across restarts.
	_, err := r.pool.Exec(ctx,
		`INSERT INTO push_tokens (token) VALUES ($1) ON CONFLICT (token) DO NOTHING`, token)
	if err != nil {
		r.logger.Warnw("failed to persist push token", "error", err)
	}
}

// Tokens returns a snapshot copy of the registered tokens.
func (r *TokenRegistry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]string, 0, len(r.tokens))
	for token := range r.tokens {
		snapshot = append(snapshot, token)
	}
	return snapshot
}

// Size returns the number of registered tokens.
func (r *TokenRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
