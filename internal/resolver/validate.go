package resolver

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
)

var validate *validator.Validate

// fieldTags maps a field name to its validate tag, read from RawInput so the
// prompter and Resolve share one set of rules.
var fieldTags = map[string]string{}

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(fieldName)

	_ = validate.RegisterValidation("yesno", func(fl validator.FieldLevel) bool {
		_, ok := parseYesNo(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := parseDecimal(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	_ = validate.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := parseDecimal(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	_ = validate.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		d, err := parseDecimal(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	_ = validate.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
		_, err := core.ParsePercent(fl.Field().String())
		return err == nil
	})

	t := reflect.TypeOf(RawInput{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fieldTags[fieldName(f)] = f.Tag.Get("validate")
	}
}

func fieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

var tagKinds = map[string]Kind{
	"required":    KindRequired,
	"yesno":       KindNotYesNo,
	"decimal":     KindNotNumber,
	"integer":     KindNotInteger,
	"positive":    KindNotPositive,
	"nonnegative": KindNegative,
	"percent":     KindOutOfRange,
}

func kindForTag(tag string) Kind {
	if k, ok := tagKinds[tag]; ok {
		return k
	}
	return KindInvalid
}

// ValidateField checks a single raw value against the rules of the named
// field. It returns nil when the value is acceptable.
func ValidateField(field, value string) *FieldError {
	tag, ok := fieldTags[field]
	if !ok {
		return &FieldError{Field: field, Kind: KindInvalid}
	}
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &FieldError{Field: field, Kind: kindForTag(verrs[0].Tag())}
	}
	return &FieldError{Field: field, Kind: KindInvalid}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}
