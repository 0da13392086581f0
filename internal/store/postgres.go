package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/common/metrics"
	"vehicle-finance-bot/internal/models"
)

// PostgresStore appends applications to the applications table. The fields
// snapshot is stored as JSONB.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

func (s *PostgresStore) Save(ctx context.Context, appType models.ApplicationType, fields map[string]interface{}) (string, error) {
	record := newRecord(appType, fields, time.Now().UTC())

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		metrics.ApplicationSaveFailures.WithLabelValues("postgres").Inc()
		return "", apperrors.NewApplicationSaveFailed(fmt.Errorf("marshal fields: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, type, fields, created_at, status)
		VALUES ($1, $2, $3, $4, $5)`,
		record.ID,
		string(record.Type),
		fieldsJSON,
		record.CreatedAt.Format(time.RFC3339),
		record.Status,
	)
	if err != nil {
		metrics.ApplicationSaveFailures.WithLabelValues("postgres").Inc()
		return "", apperrors.NewApplicationSaveFailed(fmt.Errorf("insert failed: %w", err))
	}

	metrics.ApplicationsSaved.WithLabelValues(string(appType), "postgres").Inc()
	s.logger.Info("application saved", map[string]interface{}{
		"applicationId": record.ID,
		"type":          appType,
	})
	return record.ID, nil
}
