package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/models"
)

func TestPostgresStoreSaveSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(
			sqlmock.AnyArg(), // application ID
			"new",
			sqlmock.AnyArg(), // fields JSON
			sqlmock.AnyArg(), // created_at
			"pending",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewPostgresStore(db, logger.NewTestLogger(t))
	id, err := s.Save(context.Background(), models.ApplicationTypeNew, map[string]interface{}{
		"vehicle_value": 4000000.0,
		"vehicle_model": "Toyota Corolla",
	})

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "APP_"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(errors.New("connection refused"))

	s := NewPostgresStore(db, logger.NewTestLogger(t))
	_, err = s.Save(context.Background(), models.ApplicationTypeUsed, map[string]interface{}{
		"vehicle_value": 1500000.0,
	})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeApplicationSaveFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
