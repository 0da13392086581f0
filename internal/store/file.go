package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/common/metrics"
	"vehicle-finance-bot/internal/models"
)

// FileStore keeps the application list in a single JSON file. Every save
// loads the full list, appends, and rewrites it through a temp-file rename
// so a failed write never corrupts earlier records. A process-local mutex
// serializes writers; cross-process writers are not coordinated.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log.WithFields(map[string]interface{}{"component": "file-store", "path": path}),
	}
}

func (s *FileStore) Save(_ context.Context, appType models.ApplicationType, fields map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		metrics.ApplicationSaveFailures.WithLabelValues("file").Inc()
		return "", apperrors.NewApplicationSaveFailed(err)
	}

	record := newRecord(appType, fields, time.Now().UTC())
	records = append(records, record)

	if err := s.write(records); err != nil {
		metrics.ApplicationSaveFailures.WithLabelValues("file").Inc()
		return "", apperrors.NewApplicationSaveFailed(err)
	}

	metrics.ApplicationsSaved.WithLabelValues(string(appType), "file").Inc()
	s.logger.Info("application saved", map[string]interface{}{
		"applicationId": record.ID,
		"type":          appType,
	})
	return record.ID, nil
}

// Load returns all persisted records. Used by tests and reporting tools.
func (s *FileStore) Load() ([]models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() ([]models.ApplicationRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var records []models.ApplicationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore) write(records []models.ApplicationRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".applications-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
