// Package engine is the conversational state machine of the intake flow.
// Each turn maps (session, message) to (response, next session). The session
// is treated as immutable per turn: the engine clones it, mutates the clone
// and returns it alongside the turn result.
package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"vehicle-finance-bot/internal/ai"
	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/common/metrics"
	"vehicle-finance-bot/internal/intake/extract"
	"vehicle-finance-bot/internal/intake/validate"
	"vehicle-finance-bot/internal/models"
	"vehicle-finance-bot/internal/store"
)

// TurnResult is the per-turn output contract.
type TurnResult struct {
	Response   string                 `json:"response"`
	Step       models.Step            `json:"step"`
	Fields     map[string]interface{} `json:"fields"`
	ShouldExit bool                   `json:"shouldExit"`
}

// Engine drives the intake conversation. It is stateless between turns;
// all conversation state lives in the session passed to ProcessMessage.
type Engine struct {
	rules     models.FinanceRules
	store     store.Store
	responder ai.Responder
	logger    logger.Logger
}

func New(rules models.FinanceRules, st store.Store, responder ai.Responder, log logger.Logger) *Engine {
	return &Engine{
		rules:     rules,
		store:     st,
		responder: responder,
		logger:    log.WithFields(map[string]interface{}{"component": "intake-engine"}),
	}
}

// ProcessMessage handles one user turn. The input session is never mutated;
// the returned session carries the advanced state.
func (e *Engine) ProcessMessage(ctx context.Context, sess *models.Session, text string) (*TurnResult, *models.Session) {
	start := time.Now()
	startStep := sess.Step
	defer func() {
		metrics.TurnsProcessed.WithLabelValues(string(startStep)).Inc()
		metrics.TurnDuration.WithLabelValues(string(startStep)).Observe(time.Since(start).Seconds())
	}()

	next := sess.Clone()
	next.UpdatedAt = time.Now().UTC()
	lowered := strings.ToLower(strings.TrimSpace(text))

	// Global interrupts take effect at any step, before step logic.
	if matchAny(lowered, exitKeywords) {
		next.Step = models.StepExit
		return turnResult(next, msgExit, true), next
	}
	if matchAny(lowered, resetKeywords) {
		next.Reset()
		return turnResult(next, msgReset, false), next
	}

	switch next.Step {
	case models.StepGreeting:
		return e.handleGreeting(ctx, next, text, lowered), next
	case models.StepDetermineType:
		return e.handleDetermineType(ctx, next, text, lowered), next
	case models.StepCollectNewInfo:
		return e.handleCollectNew(next, text, lowered), next
	case models.StepCollectUsedInfo:
		return e.handleCollectUsed(next, text, lowered), next
	case models.StepConfirmation:
		return e.handleConfirmation(ctx, next, text, lowered), next
	case models.StepUpdateSelection:
		return e.handleUpdateSelection(next, text, lowered), next
	case models.StepUpdateFieldInput:
		return e.handleUpdateFieldInput(next, text), next
	case models.StepHGSOffer:
		return e.handleHGSOffer(next, lowered), next
	case models.StepEnd, models.StepExit:
		// A new greeting restarts a fresh conversation on the same id.
		if matchAny(lowered, greetingKeywords) {
			next.Reset()
			next.Step = models.StepDetermineType
			return turnResult(next, msgGreeting, false), next
		}
		return e.respondOffScript(ctx, next, text), next
	}

	return e.respondOffScript(ctx, next, text), next
}

func (e *Engine) handleGreeting(ctx context.Context, next *models.Session, text, lowered string) *TurnResult {
	if matchAny(lowered, greetingKeywords) {
		next.Step = models.StepDetermineType
		return turnResult(next, msgGreeting, false)
	}
	return e.respondOffScript(ctx, next, text)
}

func (e *Engine) handleDetermineType(ctx context.Context, next *models.Session, text, lowered string) *TurnResult {
	// "yeni" wins over the used-vehicle keywords when both occur.
	if matchAny(lowered, newVehicleKeywords) {
		next.ApplicationType = models.ApplicationTypeNew
		next.NewFields = &models.NewVehicleFields{}
		next.Step = models.StepCollectNewInfo
		return turnResult(next, msgNewIntro, false)
	}
	if matchAny(lowered, usedVehicleKeywords) {
		next.ApplicationType = models.ApplicationTypeUsed
		next.UsedFields = &models.UsedVehicleFields{}
		next.Step = models.StepCollectUsedInfo
		return turnResult(next, msgUsedIntro, false)
	}
	return e.respondOffScript(ctx, next, text)
}

func (e *Engine) handleCollectNew(next *models.Session, text, lowered string) *TurnResult {
	if next.NewFields == nil {
		next.NewFields = &models.NewVehicleFields{}
	}
	f := next.NewFields

	switch {
	case f.VehicleValue == nil:
		value, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		if err := validate.VehicleValue(value, next.ApplicationType, e.rules); err != nil {
			return e.reject(next, models.FieldVehicleValue, err)
		}
		f.VehicleValue = &value
		return turnResult(next, msgVehicleValueSaved(value), false)

	case f.VehicleModel == nil:
		if matchAny(lowered, modelQuestionKeywords) {
			return turnResult(next, msgModelQuestion, false)
		}
		if matchAny(lowered, commercialKeywords) {
			return turnResult(next, msgCommercialRejected, false)
		}
		model := extract.Text(text)
		if model == "" {
			return turnResult(next, msgInvalidValue, false)
		}
		f.VehicleModel = &model
		if *f.VehicleValue >= e.rules.New.GuarantorThreshold {
			return turnResult(next, msgModelSavedAskGuarantor(e.rules.New.GuarantorThreshold), false)
		}
		return turnResult(next, msgModelSavedAskLoan, false)

	case *f.VehicleValue >= e.rules.New.GuarantorThreshold && f.GuarantorTCKN == nil:
		tckn, ok := extract.TCKN(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		if err := validate.TCKN(tckn); err != nil {
			return e.reject(next, models.FieldGuarantorTCKN, err)
		}
		f.GuarantorTCKN = &tckn
		return turnResult(next, msgGuarantorSaved, false)

	case f.LoanAmount == nil:
		amount, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		if err := validate.LoanAmount(amount, *f.VehicleValue, next.ApplicationType, e.rules); err != nil {
			return e.reject(next, models.FieldLoanAmount, err)
		}
		f.LoanAmount = &amount
		next.Step = models.StepConfirmation
		return turnResult(next, ConfirmationMessage(next), false)
	}

	return turnResult(next, msgInvalidValue, false)
}

func (e *Engine) handleCollectUsed(next *models.Session, text, lowered string) *TurnResult {
	if next.UsedFields == nil {
		next.UsedFields = &models.UsedVehicleFields{}
	}
	f := next.UsedFields

	switch {
	case f.VehicleValue == nil:
		// The kasko value has no ceiling; the loan cap bounds it later.
		value, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		f.VehicleValue = &value
		return turnResult(next, msgKaskoValueSaved(value), false)

	case f.VehicleAge == nil:
		age, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		if err := validate.VehicleAge(age, next.ApplicationType, e.rules); err != nil {
			return e.reject(next, models.FieldVehicleAge, err)
		}
		f.VehicleAge = &age
		return turnResult(next, msgUsedAgeSaved, false)

	case f.LoanAmount == nil:
		amount, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidValue, false)
		}
		if err := validate.LoanAmount(amount, *f.VehicleValue, next.ApplicationType, e.rules); err != nil {
			return e.reject(next, models.FieldLoanAmount, err)
		}
		f.LoanAmount = &amount
		return turnResult(next, msgUsedLoanSaved, false)

	case !f.SellerResolved():
		if matchAny(lowered, sellerDeclineKeywords) {
			f.SellerDeclined = true
		} else if tckn, ok := extract.TCKN(text); ok {
			if err := validate.TCKN(tckn); err != nil {
				return e.reject(next, models.FieldSellerTCKN, err)
			}
			f.SellerTCKN = &tckn
		} else {
			// Free text without a TCKN counts as declining the optional field.
			f.SellerDeclined = true
		}
		next.Step = models.StepConfirmation
		return turnResult(next, ConfirmationMessage(next), false)
	}

	return turnResult(next, msgInvalidValue, false)
}

func (e *Engine) handleConfirmation(ctx context.Context, next *models.Session, text, lowered string) *TurnResult {
	if matchAny(lowered, confirmUpdateKeywords) {
		next.Step = models.StepUpdateSelection
		return turnResult(next, msgAskUpdateField+updateOptions(next), false)
	}
	if matchAny(lowered, confirmApproveKeywords) {
		id, err := e.store.Save(ctx, next.ApplicationType, next.FieldMap())
		if err != nil {
			e.logger.Error("application save failed", map[string]interface{}{
				"sessionId": next.ID,
				"error":     err.Error(),
			})
			// Fields and step are kept so the user can retry with "evet".
			return turnResult(next, msgApplicationSaveFailed(saveCause(err)), false)
		}
		next.Step = models.StepHGSOffer
		return turnResult(next, msgApplicationSaved(id), false)
	}
	return e.respondOffScript(ctx, next, text)
}

func (e *Engine) handleUpdateSelection(next *models.Session, text, lowered string) *TurnResult {
	trimmed := strings.TrimSpace(lowered)

	// Yes/no answers to "further edits?" are exact matches, not substrings,
	// so a free-text field choice is never swallowed.
	if equalsAny(trimmed, updateMoreNoKeywords) {
		next.Step = models.StepConfirmation
		return turnResult(next, ConfirmationMessage(next), false)
	}
	if equalsAny(trimmed, updateMoreYesKeywords) {
		return turnResult(next, msgAskUpdateField+updateOptions(next), false)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return turnResult(next, msgChoiceNotNumber+updateOptions(next), false)
	}

	field, prompt, ok := e.selectUpdateField(next, choice)
	if !ok {
		return turnResult(next, msgInvalidChoice+updateOptions(next), false)
	}

	clearField(next, field)
	next.LastEditedField = field
	next.Step = models.StepUpdateFieldInput
	return turnResult(next, prompt, false)
}

// selectUpdateField maps a numeric menu choice to the field it edits. The
// fourth option only exists while the optional field holds a value.
func (e *Engine) selectUpdateField(next *models.Session, choice int) (models.Field, string, bool) {
	if next.ApplicationType == models.ApplicationTypeNew {
		switch choice {
		case 1:
			return models.FieldVehicleValue, "Yeni araç değerini giriniz:", true
		case 2:
			return models.FieldVehicleModel, "Yeni araç modelini giriniz:", true
		case 3:
			return models.FieldLoanAmount, "Yeni finansman tutarını giriniz:", true
		case 4:
			if next.NewFields != nil && next.NewFields.GuarantorTCKN != nil {
				return models.FieldGuarantorTCKN, "Yeni kefil TCKN giriniz:", true
			}
		}
		return "", "", false
	}

	switch choice {
	case 1:
		return models.FieldVehicleValue, "Yeni kasko değerini giriniz:", true
	case 2:
		return models.FieldVehicleAge, "Yeni araç yaşını giriniz:", true
	case 3:
		return models.FieldLoanAmount, "Yeni finansman tutarını giriniz:", true
	case 4:
		if next.UsedFields != nil && next.UsedFields.SellerTCKN != nil {
			return models.FieldSellerTCKN, "Yeni satıcı TCKN giriniz:", true
		}
	}
	return "", "", false
}

func (e *Engine) handleUpdateFieldInput(next *models.Session, text string) *TurnResult {
	field := next.LastEditedField
	if field == "" {
		next.Step = models.StepConfirmation
		return turnResult(next, msgUpdateStateLost, false)
	}

	switch field {
	case models.FieldVehicleValue, models.FieldVehicleAge, models.FieldLoanAmount:
		value, ok := extract.Number(text)
		if !ok {
			return turnResult(next, msgInvalidUpdateValue, false)
		}
		if err := e.validateNumeric(next, field, value); err != nil {
			return e.reject(next, field, err)
		}
		setNumericField(next, field, value)

	case models.FieldVehicleModel:
		model := extract.Text(text)
		if model == "" {
			return turnResult(next, msgInvalidUpdateValue, false)
		}
		next.NewFields.VehicleModel = &model

	case models.FieldGuarantorTCKN, models.FieldSellerTCKN:
		tckn, ok := extract.TCKN(text)
		if !ok {
			return turnResult(next, msgInvalidUpdateTCKN, false)
		}
		if err := validate.TCKN(tckn); err != nil {
			return e.reject(next, field, err)
		}
		if field == models.FieldGuarantorTCKN {
			next.NewFields.GuarantorTCKN = &tckn
		} else {
			next.UsedFields.SellerTCKN = &tckn
		}

	default:
		next.Step = models.StepConfirmation
		return turnResult(next, msgUpdateStateLost, false)
	}

	next.LastEditedField = ""
	next.Step = models.StepUpdateSelection
	return turnResult(next, msgAskMoreUpdates, false)
}

func (e *Engine) handleHGSOffer(next *models.Session, lowered string) *TurnResult {
	if matchAny(lowered, hgsAcceptKeywords) {
		next.Step = models.StepEnd
		return turnResult(next, msgHGSAccepted, false)
	}
	if matchAny(lowered, hgsDeclineKeywords) {
		next.Step = models.StepEnd
		return turnResult(next, msgHGSDeclined, false)
	}
	return turnResult(next, msgHGSReprompt, false)
}

// respondOffScript answers an unscripted message through the AI responder.
// A responder failure degrades to an apology and leaves the step unchanged.
func (e *Engine) respondOffScript(ctx context.Context, next *models.Session, text string) *TurnResult {
	reply, err := e.responder.Respond(ctx, text)
	if err != nil {
		e.logger.Warn("ai responder failed, substituting apology", map[string]interface{}{
			"sessionId": next.ID,
			"error":     err.Error(),
		})
		reply = msgAIUnavailable
	}
	return turnResult(next, reply, false)
}

func (e *Engine) validateNumeric(next *models.Session, field models.Field, value float64) error {
	switch field {
	case models.FieldVehicleValue:
		return validate.VehicleValue(value, next.ApplicationType, e.rules)
	case models.FieldVehicleAge:
		return validate.VehicleAge(value, next.ApplicationType, e.rules)
	case models.FieldLoanAmount:
		return validate.LoanAmount(value, currentVehicleValue(next), next.ApplicationType, e.rules)
	}
	return nil
}

func currentVehicleValue(next *models.Session) float64 {
	switch {
	case next.NewFields != nil && next.NewFields.VehicleValue != nil:
		return *next.NewFields.VehicleValue
	case next.UsedFields != nil && next.UsedFields.VehicleValue != nil:
		return *next.UsedFields.VehicleValue
	}
	return 0
}

func clearField(next *models.Session, field models.Field) {
	switch field {
	case models.FieldVehicleValue:
		if next.NewFields != nil {
			next.NewFields.VehicleValue = nil
		}
		if next.UsedFields != nil {
			next.UsedFields.VehicleValue = nil
		}
	case models.FieldVehicleModel:
		if next.NewFields != nil {
			next.NewFields.VehicleModel = nil
		}
	case models.FieldVehicleAge:
		if next.UsedFields != nil {
			next.UsedFields.VehicleAge = nil
		}
	case models.FieldLoanAmount:
		if next.NewFields != nil {
			next.NewFields.LoanAmount = nil
		}
		if next.UsedFields != nil {
			next.UsedFields.LoanAmount = nil
		}
	case models.FieldGuarantorTCKN:
		if next.NewFields != nil {
			next.NewFields.GuarantorTCKN = nil
		}
	case models.FieldSellerTCKN:
		if next.UsedFields != nil {
			next.UsedFields.SellerTCKN = nil
			next.UsedFields.SellerDeclined = false
		}
	}
}

func setNumericField(next *models.Session, field models.Field, value float64) {
	if next.NewFields != nil {
		switch field {
		case models.FieldVehicleValue:
			next.NewFields.VehicleValue = &value
		case models.FieldLoanAmount:
			next.NewFields.LoanAmount = &value
		}
		return
	}
	if next.UsedFields != nil {
		switch field {
		case models.FieldVehicleValue:
			next.UsedFields.VehicleValue = &value
		case models.FieldVehicleAge:
			next.UsedFields.VehicleAge = &value
		case models.FieldLoanAmount:
			next.UsedFields.LoanAmount = &value
		}
	}
}

func (e *Engine) reject(next *models.Session, field models.Field, err error) *TurnResult {
	metrics.ValidationRejections.WithLabelValues(string(field)).Inc()
	return turnResult(next, userMessage(err), false)
}

// saveCause surfaces the underlying cause of a failed save.
func saveCause(err error) string {
	var se *apperrors.StandardError
	if errors.As(err, &se) && se.Details != "" {
		return se.Details
	}
	return err.Error()
}

// userMessage unwraps the user-facing text of a validation rejection.
func userMessage(err error) string {
	var se *apperrors.StandardError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

func equalsAny(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

func turnResult(next *models.Session, response string, shouldExit bool) *TurnResult {
	return &TurnResult{
		Response:   response,
		Step:       next.Step,
		Fields:     next.FieldMap(),
		ShouldExit: shouldExit,
	}
}
