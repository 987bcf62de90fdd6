package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct runs tag validation and converts the first failure into a
// domain error, so transport callers never see validator internals.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidJSON(err)
	}

	fe := verrs[0]
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "min":
		if strings.Contains(strings.ToLower(field), "password") {
			return domain.ErrWeakPassword("min length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "min length "+fe.Param())
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	default:
		return domain.ErrInvalidField(field, fe.Tag())
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
