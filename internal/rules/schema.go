package rules

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "vehicle-finance-bot/internal/common/errors"
)

// rulesSchema guards the finance-rules file before it is applied. Ratios are
// fractions of the vehicle value, so they must stay within (0, 1].
const rulesSchema = `{
  "type": "object",
  "required": ["finance_rules"],
  "properties": {
    "finance_rules": {
      "type": "object",
      "required": ["new", "used"],
      "properties": {
        "new": {
          "type": "object",
          "required": ["max_vehicle_value", "max_financing_ratio", "guarantor_threshold"],
          "properties": {
            "max_vehicle_value": {"type": "number", "exclusiveMinimum": 0},
            "max_financing_ratio": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
            "guarantor_threshold": {"type": "number", "minimum": 0}
          }
        },
        "used": {
          "type": "object",
          "required": ["max_vehicle_age", "max_financing_ratio", "max_loan_amount"],
          "properties": {
            "max_vehicle_age": {"type": "number", "exclusiveMinimum": 0},
            "max_financing_ratio": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
            "max_loan_amount": {"type": "number", "exclusiveMinimum": 0}
          }
        }
      }
    },
    "faq": {"type": "object"}
  }
}`

func validateSchema(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(rulesSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewRulesConfigInvalid(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return apperrors.NewRulesConfigInvalid(strings.Join(details, "; "))
	}
	return nil
}
