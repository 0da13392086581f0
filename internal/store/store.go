// Package store persists finalized applications. Two backends exist: an
// append-only JSON file for single-instance deployments, and a PostgreSQL
// table for shared ones.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vehicle-finance-bot/internal/models"
)

// Store appends a finalized application and returns its generated id.
// Implementations must copy the fields snapshot; the caller's map is live
// session state.
type Store interface {
	Save(ctx context.Context, appType models.ApplicationType, fields map[string]interface{}) (string, error)
}

// newApplicationID carries a human-readable timestamp plus a uuid fragment
// so rapid-succession saves cannot collide.
func newApplicationID(now time.Time) string {
	return fmt.Sprintf("APP_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
}

func newRecord(appType models.ApplicationType, fields map[string]interface{}, now time.Time) models.ApplicationRecord {
	snapshot := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		snapshot[k] = v
	}
	return models.ApplicationRecord{
		ID:        newApplicationID(now),
		Type:      appType,
		Fields:    snapshot,
		CreatedAt: now,
		Status:    models.StatusPending,
	}
}
