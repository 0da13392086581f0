package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-finance-bot/internal/ai"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/models"
	"vehicle-finance-bot/internal/rules"
	"vehicle-finance-bot/internal/store"
)

type savedApp struct {
	appType models.ApplicationType
	fields  map[string]interface{}
}

type fakeStore struct {
	err   error
	saves []savedApp
}

func (f *fakeStore) Save(_ context.Context, appType models.ApplicationType, fields map[string]interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saves = append(f.saves, savedApp{appType: appType, fields: fields})
	return "APP_20250101_120000_abcd1234", nil
}

var _ store.Store = (*fakeStore)(nil)

func newTestEngine(t *testing.T, st store.Store) *Engine {
	t.Helper()
	return New(rules.Defaults().FinanceRules, st, &ai.StaticResponder{Reply: "serbest yanıt"}, logger.NewTestLogger(t))
}

func drive(e *Engine, sess *models.Session, inputs ...string) (*TurnResult, *models.Session) {
	var res *TurnResult
	for _, in := range inputs {
		res, sess = e.ProcessMessage(context.Background(), sess, in)
	}
	return res, sess
}

func TestNewVehicleFlowWithoutGuarantor(t *testing.T) {
	st := &fakeStore{}
	e := newTestEngine(t, st)
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba")
	assert.Equal(t, models.StepDetermineType, res.Step)

	res, sess = drive(e, sess, "yeni araç istiyorum")
	assert.Equal(t, models.StepCollectNewInfo, res.Step)
	assert.Contains(t, res.Response, "proforma fatura")

	res, sess = drive(e, sess, "4000000")
	assert.Contains(t, res.Response, "4,000,000 TL")

	res, sess = drive(e, sess, "Toyota Corolla")
	assert.NotContains(t, res.Response, "kefil", "below the threshold no guarantor may be requested")

	res, sess = drive(e, sess, "2000000")
	assert.Equal(t, models.StepConfirmation, res.Step)
	assert.Contains(t, res.Response, "Toyota Corolla")

	res, sess = drive(e, sess, "evet")
	assert.Equal(t, models.StepHGSOffer, res.Step)
	assert.Contains(t, res.Response, "Başvuru No")

	require.Len(t, st.saves, 1)
	assert.Equal(t, models.ApplicationTypeNew, st.saves[0].appType)
	assert.Equal(t, "Toyota Corolla", st.saves[0].fields["vehicle_model"])
	assert.NotContains(t, st.saves[0].fields, "guarantor_tckn")
}

func TestNewVehicleFlowRequiresGuarantorAboveThreshold(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "6000000", "BMW 520i")
	assert.Contains(t, res.Response, "kefil TCKN", "6M vehicle must request a guarantor before the loan amount")

	// The guarantor is collected before the loan amount is ever requested.
	res, sess = drive(e, sess, "12345678901")
	assert.Contains(t, res.Response, "finansman tutarı")

	res, _ = drive(e, sess, "3000000")
	assert.Equal(t, models.StepConfirmation, res.Step)
	assert.Contains(t, res.Response, "12345678901")
}

func TestNewVehicleValueCeilingRejected(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "merhaba", "yeni", "8000000")
	assert.Equal(t, models.StepCollectNewInfo, res.Step)
	assert.Contains(t, res.Response, "başvuru yapılamaz")
	assert.NotContains(t, res.Fields, "vehicle_value")
}

func TestNewVehicleLoanCapRejectionIncludesCap(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Renault Clio", "3000000")
	assert.Equal(t, models.StepCollectNewInfo, res.Step)
	assert.Contains(t, res.Response, "2,400,000")
	assert.NotContains(t, res.Fields, "loan_amount")

	// The turn after a rejection still accepts a value within the cap.
	res, _ = drive(e, sess, "2400000")
	assert.Equal(t, models.StepConfirmation, res.Step)
}

func TestNewVehicleCommercialModelRejected(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "kamyon")
	assert.Contains(t, res.Response, "ticari modeller için başvuru yapılamaz")
	assert.NotContains(t, res.Fields, "vehicle_model")

	res, _ = drive(e, sess, "Ford Focus")
	assert.Contains(t, res.Fields, "vehicle_model")
}

func TestNewVehicleModelQuestionAnswered(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "merhaba", "yeni", "4000000", "hangi modeller var?")
	assert.Contains(t, res.Response, "tüm marka ve modeller")
	assert.NotContains(t, res.Fields, "vehicle_model")
}

func TestUsedVehicleOverAgeRejected(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "ikinci el", "1500000")
	assert.Contains(t, res.Response, "yaşını")

	res, _ = drive(e, sess, "7")
	assert.Equal(t, models.StepCollectUsedInfo, res.Step)
	assert.Contains(t, res.Response, "yaş üstü araçlar")
	assert.NotContains(t, res.Fields, "vehicle_age")
}

func TestUsedVehicleLoanCapBoundedByAbsoluteCeiling(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	// 40% of 10M is 4M but the absolute ceiling is 3M.
	res, _ := drive(e, sess, "merhaba", "ikinci el", "10000000", "3", "3500000")
	assert.Equal(t, models.StepCollectUsedInfo, res.Step)
	assert.Contains(t, res.Response, "3,000,000")
	assert.NotContains(t, res.Fields, "loan_amount")
}

func TestUsedVehicleSellerDeclineRecordedAsExplicitAbsence(t *testing.T) {
	st := &fakeStore{}
	e := newTestEngine(t, st)
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "ikinci el", "1500000", "3", "500000", "yok")
	assert.Equal(t, models.StepConfirmation, res.Step)
	assert.NotContains(t, res.Response, "Satıcı TCKN")

	drive(e, sess, "evet")
	require.Len(t, st.saves, 1)
	require.Contains(t, st.saves[0].fields, "seller_tckn")
	assert.Nil(t, st.saves[0].fields["seller_tckn"])
}

func TestUsedVehicleSellerTCKNAccepted(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "merhaba", "ikinci el", "1500000", "3", "500000", "12345678901")
	assert.Equal(t, models.StepConfirmation, res.Step)
	assert.Contains(t, res.Response, "Satıcı TCKN: 12345678901")
	assert.Equal(t, "12345678901", res.Fields["seller_tckn"])
}

func TestIdentityNumberLengthEnforced(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})

	for _, input := range []string{"1234567890", "123456789012"} {
		sess := models.NewSession("conv-1")
		res, _ := drive(e, sess, "merhaba", "yeni", "6000000", "BMW 520i", input)
		assert.Equal(t, models.StepCollectNewInfo, res.Step, "input %q must not advance", input)
		assert.NotContains(t, res.Fields, "guarantor_tckn", "input %q must be rejected", input)
	}
}

func TestExitKeywordTerminatesAtAnyStep(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
	}{
		{"greeting", nil},
		{"determine type", []string{"merhaba"}},
		{"collecting new info", []string{"merhaba", "yeni", "4000000"}},
		{"confirmation", []string{"merhaba", "yeni", "4000000", "Toyota Corolla", "2000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{}
			e := newTestEngine(t, st)
			sess := models.NewSession("conv-1")
			_, sess = drive(e, sess, tt.inputs...)

			res, _ := drive(e, sess, "çık")
			assert.True(t, res.ShouldExit)
			assert.Equal(t, models.StepExit, res.Step)
			assert.Empty(t, st.saves, "exit must not persist an application")
		})
	}
}

func TestResetKeywordClearsSession(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "iptal")
	assert.Equal(t, models.StepGreeting, res.Step)
	assert.Empty(t, res.Fields)
	assert.Empty(t, sess.ApplicationType)
	assert.Nil(t, sess.NewFields)
}

func TestUpdateFlowEditsLoanAmount(t *testing.T) {
	st := &fakeStore{}
	e := newTestEngine(t, st)
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "hayır")
	assert.Equal(t, models.StepUpdateSelection, res.Step)
	assert.Contains(t, res.Response, "3. Finansman Tutarı")
	assert.NotContains(t, res.Response, "4. Kefil TCKN", "guarantor option only exists when one was collected")

	res, sess = drive(e, sess, "3")
	assert.Equal(t, models.StepUpdateFieldInput, res.Step)
	assert.Contains(t, res.Response, "Yeni finansman tutarını giriniz")
	assert.NotContains(t, res.Fields, "loan_amount")

	res, sess = drive(e, sess, "1500000")
	assert.Equal(t, models.StepUpdateSelection, res.Step)
	assert.Contains(t, res.Response, "Başka bir değişiklik")

	res, sess = drive(e, sess, "hayır")
	assert.Equal(t, models.StepConfirmation, res.Step)
	assert.Contains(t, res.Response, "1,500,000 TL")

	drive(e, sess, "evet")
	require.Len(t, st.saves, 1)
	assert.Equal(t, 1500000.0, st.saves[0].fields["loan_amount"])
}

func TestUpdateFlowInvalidChoices(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "güncelle")
	assert.Equal(t, models.StepUpdateSelection, res.Step)

	res, sess = drive(e, sess, "belki")
	assert.Equal(t, models.StepUpdateSelection, res.Step)
	assert.Contains(t, res.Response, "Lütfen bir sayı giriniz")

	res, sess = drive(e, sess, "9")
	assert.Equal(t, models.StepUpdateSelection, res.Step)
	assert.Contains(t, res.Response, "Geçersiz seçim")

	// Choice 4 is out of range while no guarantor was collected.
	res, _ = drive(e, sess, "4")
	assert.Equal(t, models.StepUpdateSelection, res.Step)
	assert.Contains(t, res.Response, "Geçersiz seçim")
}

func TestUpdateFlowRejectsOverCapEdit(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "hayır", "3")
	assert.Equal(t, models.StepUpdateFieldInput, res.Step)

	res, _ = drive(e, sess, "3000000")
	assert.Equal(t, models.StepUpdateFieldInput, res.Step)
	assert.Contains(t, res.Response, "2,400,000")
}

func TestConfirmationSaveFailureAllowsRetry(t *testing.T) {
	st := &fakeStore{err: errors.New("disk full")}
	e := newTestEngine(t, st)
	sess := models.NewSession("conv-1")

	res, sess := drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "evet")
	assert.Equal(t, models.StepConfirmation, res.Step, "failed save must keep the confirmation step")
	assert.Contains(t, res.Response, "❌ Başvuru kaydedilemedi")
	assert.Contains(t, res.Fields, "loan_amount", "fields survive a failed save for retry")

	st.err = nil
	res, _ = drive(e, sess, "evet")
	assert.Equal(t, models.StepHGSOffer, res.Step)
	require.Len(t, st.saves, 1)
}

func TestHGSOfferBranches(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		contains string
	}{
		{"accepted", "evet isterim", "HGS başvurunuz da alınmıştır"},
		{"declined", "hayır istemem", "HGS başvurusu alınmadı"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, &fakeStore{})
			sess := models.NewSession("conv-1")
			_, sess = drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "evet")

			res, _ := drive(e, sess, tt.answer)
			assert.Equal(t, models.StepEnd, res.Step)
			assert.Contains(t, res.Response, tt.contains)
		})
	}
}

func TestHGSOfferRepromptsOnUnrecognizedInput(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")
	_, sess = drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "evet")

	res, _ := drive(e, sess, "belki sonra")
	assert.Equal(t, models.StepHGSOffer, res.Step)
	assert.Contains(t, res.Response, "'Evet' veya 'Hayır'")
}

func TestGreetingRestartsAfterEnd(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")
	_, sess = drive(e, sess, "merhaba", "yeni", "4000000", "Toyota Corolla", "2000000", "evet", "hayır istemem")

	res, sess := drive(e, sess, "merhaba")
	assert.Equal(t, models.StepDetermineType, res.Step)
	assert.Empty(t, res.Fields)
	assert.Empty(t, sess.ApplicationType)
}

func TestOffScriptMessageGoesToResponder(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "hava nasıl?")
	assert.Equal(t, models.StepGreeting, res.Step)
	assert.Equal(t, "serbest yanıt", res.Response)
}

func TestResponderFailureDegradesToApology(t *testing.T) {
	e := New(rules.Defaults().FinanceRules, &fakeStore{},
		&ai.StaticResponder{Err: errors.New("upstream down")}, logger.NewTestLogger(t))
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "hava nasıl?")
	assert.Equal(t, models.StepGreeting, res.Step, "responder failure must not change the step")
	assert.Equal(t, msgAIUnavailable, res.Response)
}

func TestInputSessionIsNotMutated(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	_, advanced := e.ProcessMessage(context.Background(), sess, "merhaba")
	assert.Equal(t, models.StepGreeting, sess.Step)
	assert.Equal(t, models.StepDetermineType, advanced.Step)
}

func TestExtractionMissReprompts(t *testing.T) {
	e := newTestEngine(t, &fakeStore{})
	sess := models.NewSession("conv-1")

	res, _ := drive(e, sess, "merhaba", "yeni", "bilmiyorum ki")
	assert.Equal(t, models.StepCollectNewInfo, res.Step)
	assert.Equal(t, msgInvalidValue, res.Response)
}
