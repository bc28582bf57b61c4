package ticket

import (
	"github.com/go-playground/validator/v10"

	"github.com/telepoint/backoffice/core"
)

var (
	kindTag  = "ticket_kind"
	kindText = "invalid ticket kind"
)

func init() {
	_ = core.Validate.RegisterValidation(kindTag, kindValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, kindTag, kindText)
}

func kindValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, k := range Kinds {
		if val == k {
			return true
		}
	}
	return false
}
