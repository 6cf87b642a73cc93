package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/nyaruka/phonenumbers"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phone", validatePhone)

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	_ = validate.RegisterTranslation("phone", translator,
		func(trans ut.Translator) error {
			return trans.Add("phone", "{0} must be a valid phone number", true)
		},
		func(trans ut.Translator, fe validator.FieldError) string {
			t, _ := trans.T("phone", fe.Field())
			return t
		},
	)
}

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	return validate
}

// validatePhone accepts numbers written in international form, e.g. +2348012345678.
func validatePhone(fl validator.FieldLevel) bool {
	return IsPhoneNumber(fl.Field().String())
}

// IsPhoneNumber reports whether s is a possible phone number in
// international format.
func IsPhoneNumber(s string) bool {
	if !strings.HasPrefix(s, "+") {
		return false
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// TranslateFieldError renders a single validation failure in English.
func TranslateFieldError(fe validator.FieldError) string {
	return fe.Translate(translator)
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var errorMessages []string
		for _, e := range errs {
			errorMessages = append(errorMessages, e.Translate(translator))
		}
		return strings.Join(errorMessages, ", ")
	}
	return err.Error()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
