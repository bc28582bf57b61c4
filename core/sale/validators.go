package sale

import (
	"github.com/go-playground/validator/v10"

	"github.com/telepoint/backoffice/core"
)

var (
	paymentMethodTag  = "payment_method"
	paymentMethodText = "invalid payment method"
)

func init() {
	_ = core.Validate.RegisterValidation(paymentMethodTag, paymentMethodValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, paymentMethodTag, paymentMethodText)
}

func paymentMethodValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, m := range PaymentMethods {
		if val == m {
			return true
		}
	}
	return false
}
