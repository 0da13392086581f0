// Package rules loads the finance-rule configuration the intake engine
// applies. A missing file is replaced by the built-in defaults, which are
// persisted so later runs see the same values.
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/models"
)

// File is the on-disk shape of the rules configuration.
type File struct {
	FinanceRules models.FinanceRules `json:"finance_rules"`
	FAQ          FAQEntries          `json:"faq"`
}

// FAQEntries feed the scripted answers of the AI responder.
type FAQEntries struct {
	SupportedBrands string `json:"supported_brands"`
	InterestRates   string `json:"interest_rates"`
	LoanTerms       string `json:"loan_terms"`
}

// Defaults returns the built-in rule set.
func Defaults() File {
	return File{
		FinanceRules: models.FinanceRules{
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
		},
		FAQ: FAQEntries{
			SupportedBrands: "Tüm marka ve modeller (ticari araçlar hariç)",
			InterestRates:   "Güncel piyasa koşullarına göre belirlenir",
			LoanTerms:       "12-60 ay vade seçenekleri",
		},
	}
}

// Load reads the rules file at path. When the file does not exist the
// defaults are synthesized and persisted there. An existing file is
// schema-checked before use; a malformed file is rejected outright rather
// than half-applied.
func Load(path string, log logger.Logger) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return File{}, apperrors.NewRulesConfigInvalid(fmt.Sprintf("read %s: %v", path, err))
		}

		defaults := Defaults()
		if saveErr := save(path, defaults); saveErr != nil {
			log.Warn("could not persist default finance rules", map[string]interface{}{
				"path":  path,
				"error": saveErr.Error(),
			})
		} else {
			log.Info("synthesized default finance rules", map[string]interface{}{"path": path})
		}
		return defaults, nil
	}

	if err := validateSchema(raw); err != nil {
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, apperrors.NewRulesConfigInvalid(fmt.Sprintf("parse %s: %v", path, err))
	}
	return f, nil
}

func save(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
