package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired        = "is required"
	ErrMinLength       = "must be at least %s characters long"
	ErrMaxLength       = "must be at most %s characters long"
	ErrMinItems        = "must contain at least %s items"
	ErrMaxItems        = "must contain at most %s items"
	ErrMinValue        = "must be at least %s"
	ErrMaxValue        = "must be at most %s"
	ErrNotZero         = "must not be zero"
	ErrOneOf           = "must be one of: %s"
	ErrTicketCategory  = "must be one of: adult child senior"
	ErrPromoCode       = "must be 3 to 32 letters, digits, dashes or underscores"
	ErrJWT             = "must be a valid JWT"
	ErrDefaultInvalid  = "is invalid"
	promoCodeMinLength = 3
	promoCodeMaxLength = 32
)

var promoCodeRgx = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validator.RegisterValidation("ticket_category", validateTicketCategory)
	validator.RegisterValidation("promo_code", validatePromoCode)
	validator.RegisterValidation("promotion_sort", validatePromotionSort)

	return validator
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
	}

	return name
}

// decimalValue lets numeric tags such as min and max apply to decimal fields.
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()
	return f
}

func validateTicketCategory(fl validator.FieldLevel) bool {
	_, err := domain.ParseTicketCategory(fl.Field().String())
	return err == nil
}

// Codes are matched case-sensitively by the backend, so only the character set
// and length are checked here.
func validatePromoCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()

	return len(code) >= promoCodeMinLength &&
		len(code) <= promoCodeMaxLength &&
		promoCodeRgx.MatchString(code)
}

func validatePromotionSort(fl validator.FieldLevel) bool {
	return slices.Contains(domain.PromotionSortColumns, fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	collection := err.Kind() == reflect.Slice || err.Kind() == reflect.Array || err.Kind() == reflect.Map
	numeric := isNumeric(err.Kind())

	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		switch {
		case collection:
			return fmt.Sprintf(ErrMinItems, err.Param())
		case numeric:
			return fmt.Sprintf(ErrMinValue, err.Param())
		}
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		switch {
		case collection:
			return fmt.Sprintf(ErrMaxItems, err.Param())
		case numeric:
			return fmt.Sprintf(ErrMaxValue, err.Param())
		}
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "ne":
		return ErrNotZero
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	case "ticket_category":
		return ErrTicketCategory
	case "promo_code":
		return ErrPromoCode
	case "promotion_sort":
		return fmt.Sprintf(ErrOneOf, strings.Join(domain.PromotionSortColumns, " "))
	case "jwt":
		return ErrJWT
	default:
		return ErrDefaultInvalid
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
