package engine

import (
	"fmt"
	"strings"

	"vehicle-finance-bot/internal/intake/validate"
	"vehicle-finance-bot/internal/models"
)

// ConfirmationMessage renders the collected fields for user approval. Pure
// function of the session's type and field values; calling it repeatedly on
// an unchanged session yields identical text.
func ConfirmationMessage(sess *models.Session) string {
	var b strings.Builder
	b.WriteString("Başvuru bilgilerinizi kontrol ediniz:\n\n")

	switch sess.ApplicationType {
	case models.ApplicationTypeNew:
		f := sess.NewFields
		b.WriteString("• Başvuru Türü: Yeni Araç\n")
		if f.VehicleValue != nil {
			fmt.Fprintf(&b, "• Araç Değeri: %s TL\n", validate.FormatAmount(*f.VehicleValue))
		}
		if f.VehicleModel != nil {
			fmt.Fprintf(&b, "• Araç Modeli: %s\n", *f.VehicleModel)
		}
		if f.GuarantorTCKN != nil {
			fmt.Fprintf(&b, "• Kefil TCKN: %s\n", *f.GuarantorTCKN)
		}
		if f.LoanAmount != nil {
			fmt.Fprintf(&b, "• Finansman Tutarı: %s TL\n", validate.FormatAmount(*f.LoanAmount))
		}
	case models.ApplicationTypeUsed:
		f := sess.UsedFields
		b.WriteString("• Başvuru Türü: İkinci El Araç\n")
		if f.VehicleValue != nil {
			fmt.Fprintf(&b, "• Kasko Değeri: %s TL\n", validate.FormatAmount(*f.VehicleValue))
		}
		if f.VehicleAge != nil {
			fmt.Fprintf(&b, "• Araç Yaşı: %s yıl\n", validate.FormatAmount(*f.VehicleAge))
		}
		if f.LoanAmount != nil {
			fmt.Fprintf(&b, "• Finansman Tutarı: %s TL\n", validate.FormatAmount(*f.LoanAmount))
		}
		if f.SellerTCKN != nil {
			fmt.Fprintf(&b, "• Satıcı TCKN: %s\n", *f.SellerTCKN)
		}
	}

	b.WriteString("\nBilgiler doğru mu? 'Evet' derseniz başvurunuzu tamamlarım, 'Hayır' derseniz güncelleyebilirsiniz.")
	return b.String()
}

// updateOptions lists the editable fields for the active application type.
// The optional fourth entry appears only when that field is currently set.
func updateOptions(sess *models.Session) string {
	switch sess.ApplicationType {
	case models.ApplicationTypeNew:
		options := []string{"1. Araç Değeri", "2. Araç Modeli", "3. Finansman Tutarı"}
		if sess.NewFields != nil && sess.NewFields.GuarantorTCKN != nil {
			options = append(options, "4. Kefil TCKN")
		}
		return strings.Join(options, "\n")
	default:
		options := []string{"1. Kasko Değeri", "2. Araç Yaşı", "3. Finansman Tutarı"}
		if sess.UsedFields != nil && sess.UsedFields.SellerTCKN != nil {
			options = append(options, "4. Satıcı TCKN")
		}
		return strings.Join(options, "\n")
	}
}
