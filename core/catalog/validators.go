package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/telepoint/backoffice/core"
)

var (
	categoryTag  = "category"
	categoryText = "invalid product category"
)

func init() {
	_ = core.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, categoryTag, categoryText)
}

// categoryValidation checks that the provided category is a known one.
func categoryValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, c := range Categories {
		if val == c {
			return true
		}
	}
	return false
}
