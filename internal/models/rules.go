package models

// FinanceRules are the business limits applied during intake. They are loaded
// once at startup and read-only afterwards.
type FinanceRules struct {
	New  NewVehicleRules  `json:"new" mapstructure:"new"`
	Used UsedVehicleRules `json:"used" mapstructure:"used"`
}

// NewVehicleRules limit new-vehicle applications.
type NewVehicleRules struct {
	MaxVehicleValue    float64 `json:"max_vehicle_value" mapstructure:"max_vehicle_value"`
	MaxFinancingRatio  float64 `json:"max_financing_ratio" mapstructure:"max_financing_ratio"`
	GuarantorThreshold float64 `json:"guarantor_threshold" mapstructure:"guarantor_threshold"`
}

// UsedVehicleRules limit used-vehicle applications. The financing ratio
// applies to the kasko value and is additionally capped by MaxLoanAmount.
type UsedVehicleRules struct {
	MaxVehicleAge     float64 `json:"max_vehicle_age" mapstructure:"max_vehicle_age"`
	MaxFinancingRatio float64 `json:"max_financing_ratio" mapstructure:"max_financing_ratio"`
	MaxLoanAmount     float64 `json:"max_loan_amount" mapstructure:"max_loan_amount"`
}
