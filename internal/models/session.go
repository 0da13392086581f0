package models

import "time"

// Step identifies the position of a conversation in the intake flow.
type Step string

const (
	StepGreeting         Step = "greeting"
	StepDetermineType    Step = "determine_type"
	StepCollectNewInfo   Step = "collect_new_vehicle_info"
	StepCollectUsedInfo  Step = "collect_used_vehicle_info"
	StepConfirmation     Step = "confirmation"
	StepUpdateSelection  Step = "update_selection"
	StepUpdateFieldInput Step = "update_field_input"
	StepHGSOffer         Step = "hgs_offer"
	StepEnd              Step = "end"
	StepExit             Step = "exit"
)

// Field names a single piece of application data. The values double as the
// persisted record keys.
type Field string

const (
	FieldVehicleValue  Field = "vehicle_value"
	FieldVehicleModel  Field = "vehicle_model"
	FieldVehicleAge    Field = "vehicle_age"
	FieldLoanAmount    Field = "loan_amount"
	FieldGuarantorTCKN Field = "guarantor_tckn"
	FieldSellerTCKN    Field = "seller_tckn"
)

// NewVehicleFields holds the data collected for a new-vehicle application.
// A nil pointer means the field has not been collected yet.
type NewVehicleFields struct {
	VehicleValue  *float64 `json:"vehicle_value,omitempty"`
	VehicleModel  *string  `json:"vehicle_model,omitempty"`
	GuarantorTCKN *string  `json:"guarantor_tckn,omitempty"`
	LoanAmount    *float64 `json:"loan_amount,omitempty"`
}

// UsedVehicleFields holds the data collected for a used-vehicle application.
// VehicleValue is the kasko (insurance) value. The seller TCKN is optional:
// SellerDeclined records an explicit "no" so the question is not re-asked.
type UsedVehicleFields struct {
	VehicleValue   *float64 `json:"vehicle_value,omitempty"`
	VehicleAge     *float64 `json:"vehicle_age,omitempty"`
	LoanAmount     *float64 `json:"loan_amount,omitempty"`
	SellerTCKN     *string  `json:"seller_tckn,omitempty"`
	SellerDeclined bool     `json:"seller_declined,omitempty"`
}

// SellerResolved reports whether the optional seller question has been
// answered, either with a TCKN or an explicit decline.
func (f *UsedVehicleFields) SellerResolved() bool {
	return f.SellerTCKN != nil || f.SellerDeclined
}

// Session is the mutable record of one conversation's progress. The intake
// engine treats it as immutable per turn: it clones the session, mutates the
// clone and returns it.
type Session struct {
	ID              string             `json:"id"`
	Step            Step               `json:"step"`
	ApplicationType ApplicationType    `json:"applicationType,omitempty"`
	NewFields       *NewVehicleFields  `json:"newFields,omitempty"`
	UsedFields      *UsedVehicleFields `json:"usedFields,omitempty"`
	LastEditedField Field              `json:"lastEditedField,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewSession creates a fresh session at the greeting step.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Step:      StepGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	if s.NewFields != nil {
		out.NewFields = &NewVehicleFields{
			VehicleValue:  clonePtr(s.NewFields.VehicleValue),
			VehicleModel:  clonePtr(s.NewFields.VehicleModel),
			GuarantorTCKN: clonePtr(s.NewFields.GuarantorTCKN),
			LoanAmount:    clonePtr(s.NewFields.LoanAmount),
		}
	}
	if s.UsedFields != nil {
		out.UsedFields = &UsedVehicleFields{
			VehicleValue:   clonePtr(s.UsedFields.VehicleValue),
			VehicleAge:     clonePtr(s.UsedFields.VehicleAge),
			LoanAmount:     clonePtr(s.UsedFields.LoanAmount),
			SellerTCKN:     clonePtr(s.UsedFields.SellerTCKN),
			SellerDeclined: s.UsedFields.SellerDeclined,
		}
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Reset clears all collected data and returns the session to the greeting
// step, keeping its identity.
func (s *Session) Reset() {
	s.Step = StepGreeting
	s.ApplicationType = ""
	s.NewFields = nil
	s.UsedFields = nil
	s.LastEditedField = ""
	s.UpdatedAt = time.Now().UTC()
}

// FieldMap renders the collected fields as a flat map, used for the per-turn
// result and as the snapshot handed to the application store. A declined
// seller TCKN appears as an explicit nil entry.
func (s *Session) FieldMap() map[string]interface{} {
	out := map[string]interface{}{}
	switch {
	case s.NewFields != nil:
		f := s.NewFields
		if f.VehicleValue != nil {
			out[string(FieldVehicleValue)] = *f.VehicleValue
		}
		if f.VehicleModel != nil {
			out[string(FieldVehicleModel)] = *f.VehicleModel
		}
		if f.GuarantorTCKN != nil {
			out[string(FieldGuarantorTCKN)] = *f.GuarantorTCKN
		}
		if f.LoanAmount != nil {
			out[string(FieldLoanAmount)] = *f.LoanAmount
		}
	case s.UsedFields != nil:
		f := s.UsedFields
		if f.VehicleValue != nil {
			out[string(FieldVehicleValue)] = *f.VehicleValue
		}
		if f.VehicleAge != nil {
			out[string(FieldVehicleAge)] = *f.VehicleAge
		}
		if f.LoanAmount != nil {
			out[string(FieldLoanAmount)] = *f.LoanAmount
		}
		if f.SellerTCKN != nil {
			out[string(FieldSellerTCKN)] = *f.SellerTCKN
		} else if f.SellerDeclined {
			out[string(FieldSellerTCKN)] = nil
		}
	}
	return out
}
