// Package validate applies per-application-type business rules to single
// fields. All checks are pure: they read the finance rules and the values
// passed in, and never mutate state.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/models"
)

var tcknFormat = regexp.MustCompile(`^\d{11}$`)

// VehicleValue checks the vehicle value ceiling. Only new-vehicle
// applications have one; used-vehicle kasko values are unrestricted.
func VehicleValue(value float64, appType models.ApplicationType, rules models.FinanceRules) error {
	if appType == models.ApplicationTypeNew && value > rules.New.MaxVehicleValue {
		return apperrors.NewValidationRejected(string(models.FieldVehicleValue),
			fmt.Sprintf("%s TL üzeri araçlar için başvuru yapılamaz", FormatAmount(rules.New.MaxVehicleValue)))
	}
	return nil
}

// VehicleAge checks the used-vehicle age ceiling.
func VehicleAge(age float64, appType models.ApplicationType, rules models.FinanceRules) error {
	if appType == models.ApplicationTypeUsed && age > rules.Used.MaxVehicleAge {
		return apperrors.NewValidationRejected(string(models.FieldVehicleAge),
			fmt.Sprintf("%s yaş üstü araçlar için başvuru oluşturulamaz", FormatAmount(rules.Used.MaxVehicleAge)))
	}
	return nil
}

// LoanAmount checks the requested amount against the financing cap. For new
// vehicles the cap is vehicleValue x ratio; for used vehicles it is
// additionally bounded by the absolute loan ceiling. The computed cap is
// included in the rejection message.
func LoanAmount(amount, vehicleValue float64, appType models.ApplicationType, rules models.FinanceRules) error {
	switch appType {
	case models.ApplicationTypeNew:
		maxAmount := vehicleValue * rules.New.MaxFinancingRatio
		if amount > maxAmount {
			return apperrors.NewValidationRejected(string(models.FieldLoanAmount),
				fmt.Sprintf("Araç fiyatının en fazla %%%s'ı (%s TL) talep edilebilir",
					formatPercent(rules.New.MaxFinancingRatio), FormatAmount(maxAmount)))
		}
	case models.ApplicationTypeUsed:
		maxAmount := vehicleValue * rules.Used.MaxFinancingRatio
		if rules.Used.MaxLoanAmount < maxAmount {
			maxAmount = rules.Used.MaxLoanAmount
		}
		if amount > maxAmount {
			return apperrors.NewValidationRejected(string(models.FieldLoanAmount),
				fmt.Sprintf("Araç kasko değerinin en fazla %%%s'ı veya %s TL (%s TL) talep edilebilir",
					formatPercent(rules.Used.MaxFinancingRatio), FormatAmount(rules.Used.MaxLoanAmount), FormatAmount(maxAmount)))
		}
	}
	return nil
}

// TCKN checks the 11-digit identity-number format. Used for both guarantor
// and seller fields.
func TCKN(value string) error {
	if !tcknFormat.MatchString(value) {
		return apperrors.NewValidationRejected("tckn", "TCKN 11 haneli olmalıdır")
	}
	return nil
}

// FormatAmount renders a numeric amount with thousands separators, dropping
// the fraction when the value is whole ("4,000,000").
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', -1, 64)
}
