package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/models"
)

func testRules() models.FinanceRules {
	return models.FinanceRules{
		New: models.NewVehicleRules{
			MaxVehicleValue:    7000000,
			MaxFinancingRatio:  0.6,
			GuarantorThreshold: 5000000,
		},
		Used: models.UsedVehicleRules{
			MaxVehicleAge:     5,
			MaxFinancingRatio: 0.4,
			MaxLoanAmount:     3000000,
		},
	}
}

func TestVehicleValue(t *testing.T) {
	rules := testRules()

	assert.NoError(t, VehicleValue(7000000, models.ApplicationTypeNew, rules))

	err := VehicleValue(7000001, models.ApplicationTypeNew, rules)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationRejected))

	// kasko value for used vehicles has no ceiling
	assert.NoError(t, VehicleValue(50000000, models.ApplicationTypeUsed, rules))
}

func TestVehicleAge(t *testing.T) {
	rules := testRules()

	assert.NoError(t, VehicleAge(5, models.ApplicationTypeUsed, rules))

	err := VehicleAge(7, models.ApplicationTypeUsed, rules)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationRejected))

	assert.NoError(t, VehicleAge(7, models.ApplicationTypeNew, rules))
}

func TestLoanAmount_New(t *testing.T) {
	rules := testRules()

	// cap = 4,000,000 * 0.6 = 2,400,000
	assert.NoError(t, LoanAmount(2400000, 4000000, models.ApplicationTypeNew, rules))

	err := LoanAmount(2400001, 4000000, models.ApplicationTypeNew, rules)
	require.Error(t, err)
	assert.Contains(t, err.(*apperrors.StandardError).Message, "2,400,000")
}

func TestLoanAmount_Used(t *testing.T) {
	rules := testRules()

	// ratio cap binds: 2,000,000 * 0.4 = 800,000 < 3,000,000
	assert.NoError(t, LoanAmount(800000, 2000000, models.ApplicationTypeUsed, rules))
	err := LoanAmount(900000, 2000000, models.ApplicationTypeUsed, rules)
	require.Error(t, err)
	assert.Contains(t, err.(*apperrors.StandardError).Message, "800,000")

	// absolute cap binds: 10,000,000 * 0.4 = 4,000,000 > 3,000,000
	assert.NoError(t, LoanAmount(3000000, 10000000, models.ApplicationTypeUsed, rules))
	err = LoanAmount(3000001, 10000000, models.ApplicationTypeUsed, rules)
	require.Error(t, err)
	assert.Contains(t, err.(*apperrors.StandardError).Message, "3,000,000")
}

func TestTCKN(t *testing.T) {
	assert.NoError(t, TCKN("12345678901"))
	assert.NoError(t, TCKN("00123456789"))
	assert.Error(t, TCKN("1234567890"))
	assert.Error(t, TCKN("123456789012"))
	assert.Error(t, TCKN("1234567890a"))
	assert.Error(t, TCKN(""))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "4,000,000", FormatAmount(4000000))
	assert.Equal(t, "800,000", FormatAmount(800000))
	assert.Equal(t, "500", FormatAmount(500))
	assert.Equal(t, "2,400,000.5", FormatAmount(2400000.5))
	assert.Equal(t, "0", FormatAmount(0))
}
