package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewValidator instantiates the validator and its English translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	initValidators(validate, translator)
	return validate, translator
}

func initValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateValidationErrors flattens validator errors into FieldErrors using
// the given translator.
func TranslateValidationErrors(errs validator.ValidationErrors, translator ut.Translator) []FieldError {
	fldErrs := make([]FieldError, 0, len(errs))
	for _, vErr := range errs {
		fldErrs = append(fldErrs, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
	}
	return fldErrs
}
