package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
)

const (
	isoDateTag  = "isodate"
	isoDateText = "{0} must be a date (YYYY-MM-DD)"

	joinCodeTag  = "joincode"
	joinCodeText = "{0} must be a 6 character group code"

	requiredText = "this field is required"
)

// Validator checks request structs and reports failures as a
// lifecycle.ValidationError keyed by JSON field name.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}

	_en := en.New()
	uni := ut.New(_en, _en)
	v.translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(isoDateTag, isoDate)
	v.translation(isoDateTag, isoDateText, false)
	_ = v.validate.RegisterValidation(joinCodeTag, joinCode)
	v.translation(joinCodeTag, joinCodeText, false)
	v.translation("required", requiredText, true)

	return v
}

func (v *Validator) translation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s. Errors that are not field failures are returned
// unchanged.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]lifecycle.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, lifecycle.FieldError{
			Field: fe.Field(),
			Error: fe.Translate(v.translator),
		})
	}

	return lifecycle.NewValidationError(nil, fields...)
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := lifecycle.ParseDate(fl.Field().String())
	return err == nil
}

func joinCode(fl validator.FieldLevel) bool {
	return ValidJoinCode(fl.Field().String())
}
