// Package schema validates patient records and the request bodies that
// create or modify them. Every failure is a *ValidationError indexed by the
// JSON field name.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"patientms/internal/models"
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field      string      `json:"field"`
	Constraint string      `json:"constraint"`
	Value      interface{} `json:"value"`
	Message    string      `json:"message"`
}

// ValidationError carries every violation found in a candidate, keyed by field.
type ValidationError struct {
	Fields map[string]FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name].Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(fe FieldError) {
	if e.Fields == nil {
		e.Fields = make(map[string]FieldError)
	}
	if _, exists := e.Fields[fe.Field]; !exists {
		e.Fields[fe.Field] = fe
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateFull checks a create candidate. All fields are required.
func ValidateFull(in models.PatientInput) (models.Patient, error) {
	if err := check(in); err != nil {
		return models.Patient{}, err
	}
	return models.Patient{
		ID:     *in.ID,
		Name:   *in.Name,
		City:   *in.City,
		Age:    *in.Age,
		Gender: *in.Gender,
		Weight: *in.Weight,
		Height: *in.Height,
	}, nil
}

// ValidatePartial checks only the fields present in a partial update.
func ValidatePartial(in models.PatientUpdate) (models.PatientUpdate, error) {
	if err := check(in); err != nil {
		return models.PatientUpdate{}, err
	}
	return in, nil
}

func ValidateCity(in models.CityUpdate) (models.CityUpdate, error) {
	if err := check(in); err != nil {
		return models.CityUpdate{}, err
	}
	return in, nil
}

func ValidateStudent(in models.StudentFeatures) (models.StudentFeatures, error) {
	if err := check(in); err != nil {
		return models.StudentFeatures{}, err
	}
	return in, nil
}

func check(candidate interface{}) error {
	err := instance().Struct(candidate)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", candidate, err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(FieldError{
			Field:      fe.Field(),
			Constraint: constraint(fe),
			Value:      offendingValue(fe.Value()),
			Message:    message(fe),
		})
	}
	return verr
}

// FromDecodeError turns a JSON body decoding failure into a ValidationError.
// Type mismatches are reported on the offending field, anything else on "body".
func FromDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		verr := &ValidationError{}
		verr.add(FieldError{
			Field:      field,
			Constraint: "type",
			Value:      typeErr.Value,
			Message:    fmt.Sprintf("must be of type %s", jsonType(typeErr.Type)),
		})
		return verr
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		verr := &ValidationError{}
		verr.add(FieldError{
			Field:      "body",
			Constraint: "json",
			Message:    "request body must be a valid JSON object",
		})
		return verr
	default:
		verr := &ValidationError{}
		verr.add(FieldError{
			Field:      "body",
			Constraint: "json",
			Message:    err.Error(),
		})
		return verr
	}
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "isdefault":
		return "derived field, computed from weight and height"
	default:
		return fmt.Sprintf("failed on the %q constraint", fe.Tag())
	}
}

func offendingValue(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "object"
	}
}
