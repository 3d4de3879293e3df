package ledger

import (
	"strings"
	"unicode"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// paymentAliases términos libres conocidos (sin tildes, en minúscula) por medio de pago.
var paymentAliases = map[string]entity.PaymentMethod{
	"cash":                   entity.PaymentCash,
	"efectivo":               entity.PaymentCash,
	"contado":                entity.PaymentCash,
	"transfer":               entity.PaymentTransfer,
	"transferencia":          entity.PaymentTransfer,
	"transferencia bancaria": entity.PaymentTransfer,
	"bank":                   entity.PaymentTransfer,
	"banco":                  entity.PaymentTransfer,
	"deposito":               entity.PaymentTransfer,
	"card":                   entity.PaymentCard,
	"tarjeta":                entity.PaymentCard,
	"tarjeta de credito":     entity.PaymentCard,
	"tarjeta de debito":      entity.PaymentCard,
	"credito":                entity.PaymentCard,
	"debito":                 entity.PaymentCard,
	"credit card":            entity.PaymentCard,
	"debit card":             entity.PaymentCard,
	"mercadopago":            entity.PaymentMercadoPago,
	"mercado pago":           entity.PaymentMercadoPago,
	"mp":                     entity.PaymentMercadoPago,
	"cheque":                 entity.PaymentCheck,
	"check":                  entity.PaymentCheck,
	"echeq":                  entity.PaymentCheck,
}

// NormalizePaymentMethod mapea el texto libre al enum de medios de pago.
// Si el texto no se reconoce devuelve OTHER y agrega el texto original a la referencia,
// de modo que no se pierda información.
func NormalizePaymentMethod(raw, reference string) (entity.PaymentMethod, string) {
	key := foldText(raw)
	if key == "" {
		return entity.PaymentOther, reference
	}
	if m, ok := paymentAliases[key]; ok {
		return m, reference
	}
	if m := entity.PaymentMethod(strings.ToUpper(key)); isKnownMethod(m) {
		return m, reference
	}
	original := "medio de pago: " + strings.TrimSpace(raw)
	if strings.TrimSpace(reference) == "" {
		return entity.PaymentOther, original
	}
	return entity.PaymentOther, strings.TrimSpace(reference) + " | " + original
}

func isKnownMethod(m entity.PaymentMethod) bool {
	switch m {
	case entity.PaymentCash, entity.PaymentTransfer, entity.PaymentCard,
		entity.PaymentMercadoPago, entity.PaymentCheck, entity.PaymentOther:
		return true
	}
	return false
}

// foldText quita tildes, pasa a minúscula y colapsa espacios y separadores.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}
