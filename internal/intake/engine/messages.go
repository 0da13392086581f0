package engine

import (
	"fmt"

	"vehicle-finance-bot/internal/intake/validate"
)

// User-facing texts. The assistant speaks Turkish; logs and errors stay in
// English.
const (
	msgExit  = "Başvuru işleminiz yarıda kesildi. Teşekkürler, iyi günler! 👋"
	msgReset = "Başvuru sıfırlandı. Yeniden başlamak için 'merhaba' yazabilirsiniz."

	msgGreeting = "Merhaba! Araç finansmanı konusunda size yardımcı olmaktan mutluluk duyarım. " +
		"Yeni araç mı yoksa ikinci el araç finansmanı mı istiyorsunuz?"

	msgNewIntro = "Yeni araç finansmanı için başvurunuzu alıyorum. " +
		"Öncelikle aracın proforma fatura değerini öğrenebilir miyim? \n" +
		"💡 İpucu: İstediğiniz zaman 'çık' yazarak çıkabilirsiniz."
	msgUsedIntro = "İkinci el araç finansmanı için başvurunuzu alıyorum. " +
		"Öncelikle aracın kasko değerini öğrenebilir miyim? \n" +
		"💡 İpucu: İstediğiniz zaman 'çık' yazarak çıkabilirsiniz."

	msgInvalidValue = "Lütfen geçerli bir değer giriniz."

	msgModelQuestion = "Bankamızda tüm marka ve modeller için finansman sağlıyoruz " +
		"(Toyota, Volkswagen, BMW, Mercedes, Renault, Ford vb.). " +
		"Sadece ticari araçlar (kamyon, minibüs, otobüs) hariçtir. Hangi araç modelini seçtiniz?"
	msgCommercialRejected = "Üzgünüm, ticari modeller için başvuru yapılamaz. Farklı bir araç modeli var mı?"

	msgModelSavedAskLoan  = "Araç modeli kaydedildi. Son olarak istediğiniz finansman tutarını belirtiniz:"
	msgGuarantorSaved     = "Kefil TCKN kaydedildi. Son olarak istediğiniz finansman tutarını belirtiniz:"
	msgUsedAgeSaved       = "Araç yaşı kaydedildi. İstediğiniz finansman tutarını belirtiniz:"
	msgUsedLoanSaved      = "Finansman tutarı kaydedildi. Satıcı T.C. kimlik numarası var mı? (İsteğe bağlı - 'hayır' veya 'yok' diyebilirsiniz)"
	msgHGSAccepted        = "✅ HGS başvurunuz da alınmıştır. Tüm başvurularınız başarıyla tamamlandı! Yeni bir başvuru için 'merhaba' yazabilirsiniz. 👋"
	msgHGSDeclined        = "Anlaşıldı, HGS başvurusu alınmadı. Tüm başvurularınız başarıyla tamamlandı! Yeni bir başvuru için 'merhaba' yazabilirsiniz. 👋"
	msgHGSReprompt        = "Lütfen 'Evet' veya 'Hayır' şeklinde yanıt veriniz. HGS ürünümüzü almak ister misiniz?"
	msgAskUpdateField     = "Hangi bilgiyi güncellemek istersiniz?\n"
	msgInvalidChoice      = "Geçersiz seçim. Lütfen tekrar deneyiniz:\n"
	msgChoiceNotNumber    = "Lütfen bir sayı giriniz:\n"
	msgAskMoreUpdates     = "Başka bir değişiklik yapmak ister misiniz? (Evet/Hayır)"
	msgUpdateStateLost    = "Bir hata oluştu. Lütfen tekrar deneyin."
	msgInvalidUpdateValue = "Lütfen geçerli bir değer giriniz:"
	msgInvalidUpdateTCKN  = "Lütfen geçerli bir TCKN giriniz:"

	msgAIUnavailable = "Üzgünüm, teknik bir sorun yaşandı. Lütfen tekrar deneyin."
)

func msgVehicleValueSaved(value float64) string {
	return fmt.Sprintf("Araç değeri %s TL olarak kaydedildi. Şimdi araç modelini belirtir misiniz?",
		validate.FormatAmount(value))
}

func msgKaskoValueSaved(value float64) string {
	return fmt.Sprintf("Araç kasko değeri %s TL olarak kaydedildi. Aracın yaşını belirtir misiniz?",
		validate.FormatAmount(value))
}

func msgModelSavedAskGuarantor(threshold float64) string {
	return fmt.Sprintf("Araç modeli kaydedildi. Araç fiyatı %s TL ve üzeri olduğu için kefil TCKN'i gereklidir. "+
		"Kefil TCKN'ini giriniz:", validate.FormatAmount(threshold))
}

func msgApplicationSaved(id string) string {
	return fmt.Sprintf("🎉 Başvurunuz kaydedildi! Başvuru No: %s\n\nHGS ürünümüzü de almak ister misiniz? (Evet/Hayır)", id)
}

func msgApplicationSaveFailed(cause string) string {
	return fmt.Sprintf("❌ Başvuru kaydedilemedi: %s", cause)
}
