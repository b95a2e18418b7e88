package lead

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/absentee/core"
)

var (
	phoneTag  = "phone"
	phoneText = "enter a valid phone number"

	phoneChars     = regexp.MustCompile(`^\+?[0-9 ()./-]+$`)
	phoneMinDigits = 7
	phoneMaxDigits = 15
)

// RegisterValidators registers the lead form's custom tags on validate.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
}

func phoneValidation(fl validator.FieldLevel) bool {
	phone, ok := fl.Field().Interface().(string)
	if !ok || !phoneChars.MatchString(phone) {
		return false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return len(digits) >= phoneMinDigits && len(digits) <= phoneMaxDigits
}
