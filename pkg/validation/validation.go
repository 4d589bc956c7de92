package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{9,15}$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("decimal_positive", func(fl validator.FieldLevel) bool {
		d, ok := decimalField(fl.Field())
		return ok && d.IsPositive()
	})
	_ = v.RegisterValidation("decimal_nonneg", func(fl validator.FieldLevel) bool {
		d, ok := decimalField(fl.Field())
		return ok && !d.IsNegative()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func decimalField(field reflect.Value) (decimal.Decimal, bool) {
	switch val := field.Interface().(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	case decimal.Decimal:
		return val, true
	}
	return decimal.Decimal{}, false
}

// Struct validates dest against its `validate` tags. Failures come back as
// a VALIDATION_ERROR whose details map field name to message.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := FieldErrors{}
		for _, fieldErr := range errs {
			fields.Add(fieldPath(fieldErr), validationMessage(fieldErr))
		}
		return fields.Err()
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like "details[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be 9 to 15 digits"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "decimal_positive":
		return "must be a positive number"
	case "decimal_nonneg":
		return "must be zero or a positive number"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	}
	return "is invalid"
}

// FieldErrors collects per-field messages for hand-written form checks.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = msg
}

// Err returns nil when empty, else a VALIDATION_ERROR carrying the fields.
// The message is the first field's message in name order.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	details := make(map[string]string, len(f))
	for k, v := range f {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, keys[0]+" "+f[keys[0]]).WithDetails(details)
}

// Merge folds the details of a validation error into f. Other errors are ignored.
func (f FieldErrors) Merge(err error) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return
	}
	if details, ok := typed.Details().(map[string]string); ok {
		for k, v := range details {
			f.Add(k, v)
		}
	}
}
