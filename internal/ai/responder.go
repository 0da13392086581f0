// Package ai supplies free-form replies for messages that match no scripted
// intake step. The intake engine treats the reply as an opaque string and
// degrades gracefully when a call fails.
package ai

import (
	"context"
	"strings"
)

// Responder answers a single off-script user message.
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

// FAQ carries the canned answer inputs loaded alongside the finance rules.
type FAQ struct {
	SupportedBrands string
	InterestRates   string
	LoanTerms       string
}

var (
	brandKeywords    = []string{"hangi model", "model", "marka", "araç türü"}
	interestKeywords = []string{"faiz", "oran", "vade"}
)

// scriptedAnswer resolves common questions without an LLM round trip.
// First matching keyword set wins.
func scriptedAnswer(message string, faq FAQ) (string, bool) {
	lower := strings.ToLower(message)

	for _, kw := range brandKeywords {
		if strings.Contains(lower, kw) {
			return "Bankamızda tüm marka ve modeller için finansman sağlıyoruz. " +
				"Sadece ticari araçlar (kamyon, minibüs, otobüs) hariçtir. " +
				"Hangi araç modelini tercih ediyorsunuz?", true
		}
	}

	for _, kw := range interestKeywords {
		if strings.Contains(lower, kw) {
			answer := "Faiz oranları güncel piyasa koşullarına göre belirlenir. " +
				"12-60 ay vade seçenekleri mevcuttur. Detaylı bilgi için şubelerimize başvurabilirsiniz."
			if faq.InterestRates != "" && faq.LoanTerms != "" {
				answer = "Faiz oranları: " + faq.InterestRates + " Vade: " + faq.LoanTerms +
					" Detaylı bilgi için şubelerimize başvurabilirsiniz."
			}
			return answer, true
		}
	}

	return "", false
}

// ScriptedResponder serves FAQ matches locally and answers everything else
// with a fixed redirect. Used when no GenAI endpoint is configured.
type ScriptedResponder struct {
	FAQ      FAQ
	Fallback string
}

func (s *ScriptedResponder) Respond(_ context.Context, message string) (string, error) {
	if answer, ok := scriptedAnswer(message, s.FAQ); ok {
		return answer, nil
	}
	return s.Fallback, nil
}

// StaticResponder returns a fixed reply, or a fixed error. Used in tests and
// when the GenAI endpoint is not configured.
type StaticResponder struct {
	Reply string
	Err   error
}

func (s *StaticResponder) Respond(_ context.Context, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}
