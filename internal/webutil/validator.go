package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator is shared by every handler.
var Validator *validator.Validate

// Trans renders validation errors in English.
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"learning_language_text":         "Learning language text",
	"native_language_text":           "Native language text",
	"required_streak_for_completion": "Required streak",
	"phone_number":                   "Phone number",
	"username":                       "Username",
	"password":                       "Password",
	"text":                           "Answer",
}

func init() {
	Validator = validator.New()

	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	Trans, found = uni.GetTranslator("en")
	if !found {
		log.Fatal("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	registerTranslation("required", "{0} is required.")
	registerTranslation("e164", "{0} must be a phone number in E.164 format, like +15551234567.")
}

// registerTranslation overrides a default message with one that names the
// field in plain words.
func registerTranslation(tag, msg string) {
	Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
		return ut.Add(tag, msg, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		fieldName, ok := fieldNameTranslations[fe.Field()]
		if !ok {
			fieldName = fe.Field()
		}
		t, _ := ut.T(tag, fieldName, fe.Param())
		return t
	})
}
