// Package forms validates login and registration input before any
// network call is made.
package forms

import (
	"reflect"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// LoginInput is what the login form submits.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is what the registration form submits. ConfirmPassword
// never leaves the client.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// FieldError is one human-readable validation failure.
type FieldError struct {
	Field   string
	Message string
}

// Validator wraps go-playground validation with english messages keyed by
// json field names.
type Validator struct {
	core  *validator.Validate
	trans ut.Translator
}

// New creates a Validator.
func New() *Validator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	_ = entranslations.RegisterDefaultTranslations(v, trans)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{core: v, trans: trans}
}

// Struct validates s and returns one error per failing field, nil when
// everything passes.
func (v *Validator) Struct(s any) []FieldError {
	err := v.core.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	result := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		result = append(result, FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.trans),
		})
	}
	return result
}

// First returns the first failure message, or "" when s is valid.
// Terminal forms show one error at a time.
func (v *Validator) First(s any) string {
	errs := v.Struct(s)
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Message
}
