package lead

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the JSON names of the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid lead record: %s", strings.Join(e.Fields, ", "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	labels := map[string]func(string) bool{
		"occasion": func(s string) bool { return Occasion(s).Valid() },
		"area":     func(s string) bool { return Area(s).Valid() },
		"budget":   func(s string) bool { return Budget(s).Valid() },
		"venue":    func(s string) bool { return VenuePreference(s).Valid() },
		"supplier": func(s string) bool { return Supplier(s).Valid() },
		"vibe":     func(s string) bool { return Vibe(s).Valid() },
	}
	for tag, ok := range labels {
		ok := ok
		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("guests", func(fl validator.FieldLevel) bool {
		return ValidGuests(int(fl.Field().Int()))
	})
	return v
}

// Validate checks every field of r against its allowed values. Empty
// single-choice fields are accepted; completeness is the wizard's concern.
func (r Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate lead: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Field())
	}
	return ve
}
