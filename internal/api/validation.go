package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// requestValidator validates request structs and renders failures as
// English sentences keyed by JSON field name.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// newRequestValidator panics if the translations cannot be registered; that
// only happens when a tag or message below is malformed.
func newRequestValidator() *requestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		panic("api: english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("api: failed to register translations: %v", err))
	}

	for _, rule := range []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"positive", isPositive, "{0} must be greater than 0"},
		{"money", isMoney, fmt.Sprintf("{0} must have at most %d decimal places and not exceed %s",
			models.AmountPlaces, models.MaxAmount.StringFixed(models.AmountPlaces))},
	} {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			panic(fmt.Sprintf("api: failed to register %s rule: %v", rule.tag, err))
		}
		if err := registerMessage(validate, trans, rule.tag, rule.message); err != nil {
			panic(fmt.Sprintf("api: failed to register %s message: %v", rule.tag, err))
		}
	}

	return &requestValidator{validate: validate, trans: trans}
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, message string) error {
	return validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return d, ok
}

func isPositive(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive()
}

// isMoney accepts decimals that a DECIMAL(10,2) column stores exactly.
func isMoney(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && models.FitsMoneyColumn(d)
}

// Struct validates s and returns an error whose message lists every failed
// field.
func (v *requestValidator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Translate(v.trans))
	}
	return errors.New(strings.Join(messages, ", "))
}
