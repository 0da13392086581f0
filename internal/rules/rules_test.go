package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
)

func TestLoad_MissingFileSynthesizesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot_config.json")

	f, err := Load(path, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, float64(7000000), f.FinanceRules.New.MaxVehicleValue)
	assert.Equal(t, 0.6, f.FinanceRules.New.MaxFinancingRatio)
	assert.Equal(t, float64(5000000), f.FinanceRules.New.GuarantorThreshold)
	assert.Equal(t, float64(5), f.FinanceRules.Used.MaxVehicleAge)
	assert.Equal(t, 0.4, f.FinanceRules.Used.MaxFinancingRatio)
	assert.Equal(t, float64(3000000), f.FinanceRules.Used.MaxLoanAmount)

	// the synthesized defaults are persisted for future runs
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted File
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, f.FinanceRules, persisted.FinanceRules)
}

func TestLoad_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot_config.json")
	custom := Defaults()
	custom.FinanceRules.New.MaxVehicleValue = 9000000
	data, err := json.Marshal(custom)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	f, err := Load(path, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, float64(9000000), f.FinanceRules.New.MaxVehicleValue)
}

func TestLoad_SchemaRejectsMalformedFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing used section", content: `{"finance_rules": {"new": {"max_vehicle_value": 1, "max_financing_ratio": 0.5, "guarantor_threshold": 0}}}`},
		{name: "ratio above one", content: `{"finance_rules": {"new": {"max_vehicle_value": 1, "max_financing_ratio": 1.5, "guarantor_threshold": 0}, "used": {"max_vehicle_age": 5, "max_financing_ratio": 0.4, "max_loan_amount": 1}}}`},
		{name: "wrong type", content: `{"finance_rules": {"new": {"max_vehicle_value": "yedi milyon", "max_financing_ratio": 0.6, "guarantor_threshold": 0}, "used": {"max_vehicle_age": 5, "max_financing_ratio": 0.4, "max_loan_amount": 1}}}`},
		{name: "not json", content: `finance_rules:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chatbot_config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path, logger.NewTestLogger(t))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRulesConfigInvalid))
		})
	}
}
