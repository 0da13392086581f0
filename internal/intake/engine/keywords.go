package engine

import "strings"

// Keyword tables for intent branching. Each decision point owns an ordered
// table; matching is substring-based on the lowercased message and the first
// hit wins. Tables that gate the same step are checked in the order they are
// listed in the step handler.
var (
	exitKeywords  = []string{"çık", "çıkış", "quit", "exit", "bye", "görüşürüz", "hoşça kal", "bitir", "kapat"}
	resetKeywords = []string{"iptal", "sıfırla", "yeniden başla", "restart", "baştan", "temizle"}

	greetingKeywords = []string{"merhaba", "selam", "iyi", "başla"}

	newVehicleKeywords  = []string{"yeni"}
	usedVehicleKeywords = []string{"ikinci", "2.", "eski", "kullanılmış"}

	// Update keywords are checked before approval keywords at the
	// confirmation step so "hayır" never reads as consent.
	confirmUpdateKeywords  = []string{"hayır", "hayir", "güncelle", "guncelle", "değiştir", "degistir"}
	confirmApproveKeywords = []string{"evet", "onayla", "tamam"}

	hgsAcceptKeywords  = []string{"evet", "isterim", "almak", "olsun"}
	hgsDeclineKeywords = []string{"hayır", "hayir", "istemem", "olmasın", "yok"}

	sellerDeclineKeywords = []string{"hayır", "yok", "istemiyorum", "gerek yok"}

	updateMoreYesKeywords = []string{"evet", "yes", "istiyorum"}
	updateMoreNoKeywords  = []string{"hayır", "hayir", "yok", "istemiyorum"}

	modelQuestionKeywords = []string{"hangi", "model", "marka", "tür", "neler"}
	commercialKeywords    = []string{"ticari", "kamyon", "minibüs", "otobüs"}
)

func matchAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
