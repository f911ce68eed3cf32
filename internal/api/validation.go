package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes one JSON object into dst and runs its validate
// tags. Unknown fields are ignored; mobile clients send extra keys.
func decodeAndValidate(body io.Reader, dst any) error {
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return fmt.Errorf("invalid number %q", numErr.Num)
		}
		return fmt.Errorf("invalid JSON body")
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body")
	}

	if err := requestValidator.Struct(dst); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			first := validationErrors[0]
			field := first.Field()
			switch first.Tag() {
			case "required":
				return fmt.Errorf("%s is required", field)
			case "email":
				return fmt.Errorf("invalid email format")
			case "min", "gte":
				return fmt.Errorf("%s must be at least %s", field, first.Param())
			case "max", "lte":
				return fmt.Errorf("%s must be at most %s", field, first.Param())
			default:
				return fmt.Errorf("invalid %s", field)
			}
		}

		return fmt.Errorf("invalid request payload")
	}

	return nil
}

// flexInt accepts a JSON number or a string holding one. Fractions are
// truncated toward zero; values outside the int32 range are rejected.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	v = math.Trunc(v)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return &strconv.NumError{Func: "ParseInt", Num: strings.Trim(strings.TrimSpace(string(data)), `"`), Err: strconv.ErrRange}
	}
	*n = flexInt(int(v))
	return nil
}

func (n *flexInt) value() int {
	if n == nil {
		return 0
	}
	return int(*n)
}

// flexFloat accepts a JSON number or a string holding one.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) value() float64 {
	if f == nil {
		return 0
	}
	return float64(*f)
}

func parseFlexNumber(data []byte) (float64, error) {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: raw, Err: strconv.ErrSyntax}
	}
	return v, nil
}
