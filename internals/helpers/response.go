package helper

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const DateLayout = "2006-01-02"

var validate = NewValidator()

// NewValidator builds a validator that reports json field names and knows
// the domain rules: notblank, past (date strictly before today) and year4.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("past", validatePast)
	_ = v.RegisterValidation("year4", func(fl validator.FieldLevel) bool {
		return IsYear4(fl.Field().String())
	})

	return v
}

func validatePast(fl validator.FieldLevel) bool {
	switch f := fl.Field().Interface().(type) {
	case string:
		d, err := time.Parse(DateLayout, f)
		if err != nil {
			return false
		}
		return IsPastDate(d, time.Now())
	case time.Time:
		return IsPastDate(f, time.Now())
	default:
		return false
	}
}

// IsPastDate compares calendar days: today itself is not in the past.
func IsPastDate(d, now time.Time) bool {
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := d.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(today)
}

// IsYear4 accepts exactly four digits with a value above zero.
func IsYear4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, _ := strconv.Atoi(s)
	return n > 0
}

// ValidateStruct returns nil when s is valid, otherwise the field errors keyed
// by json name.
func ValidateStruct(s any) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string][]string{"_": {err.Error()}}
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be empty"
	case "min":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "year4":
		return "must be a 4-digit year greater than 0"
	case "past":
		return "must be a date in the past"
	case "datetime":
		return fmt.Sprintf("must match the layout %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// ✅ Parse body + validasi sekaligus. Returns false when a response was written.
func BindAndValidate(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if n, ok := dst.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if errs := ValidateStruct(dst); errs != nil {
		return false, JsonValidationError(c, errs)
	}
	return true, nil
}
