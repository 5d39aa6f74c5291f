package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Grab the value of `json:"foo,omitempty"`
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			// fallback to the Go field name or skip
			return fld.Name
		}
		return name
	})

	// UUIDs are validated through their canonical string; the nil UUID counts as empty.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		id, ok := v.Interface().(uuid.UUID)
		if !ok || id.IsNil() {
			return ""
		}
		return id.String()
	}, uuid.UUID{})

	// "imgsize" accepts any known display size, original included.
	_ = validate.RegisterValidation("imgsize", func(fl validator.FieldLevel) bool {
		_, err := model.ParseSize(fl.Field().String())
		return err == nil
	})

	// "thumbsize" accepts only sizes backed by a generated variant.
	_ = validate.RegisterValidation("thumbsize", func(fl validator.FieldLevel) bool {
		s, err := model.ParseSize(fl.Field().String())
		return err == nil && !s.IsOriginal()
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ErrorsToJson renders validation errors as a {"field": "tag"} object.
func ErrorsToJson(validationErrs error) (string, error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return "", validationErrs
	}

	errsMap := make(map[string]string)
	for _, fieldErr := range fieldErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	errsJson, err := json.Marshal(errsMap)
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}
