// Package session persists per-conversation state between turns. The memory
// backend serves single-process deployments; the Redis backend lets several
// instances share sessions and expires idle ones via TTL.
package session

import (
	"context"

	"vehicle-finance-bot/internal/models"
)

// Store loads and saves conversation sessions by id.
type Store interface {
	// Get returns the session for id, or a SESSION_NOT_FOUND error.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Put stores the session, resetting its idle TTL where the backend
	// supports one.
	Put(ctx context.Context, sess *models.Session) error
	// Delete removes the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
