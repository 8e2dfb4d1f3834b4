package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"guest", "host", "agent", "admin"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})

	// Emirate validation
	validate.RegisterValidation("emirate", func(fl validator.FieldLevel) bool {
		emirate := fl.Field().String()
		validEmirates := []string{
			"dubai", "abu_dhabi", "sharjah", "ajman",
			"ras_al_khaimah", "fujairah", "umm_al_quwain", "",
		}
		for _, e := range validEmirates {
			if emirate == e {
				return true
			}
		}
		return false
	})

	// Property type validation
	validate.RegisterValidation("property_type", func(fl validator.FieldLevel) bool {
		propertyType := fl.Field().String()
		validTypes := []string{"apartment", "villa", "townhouse", "studio", "penthouse", ""}
		for _, t := range validTypes {
			if propertyType == t {
				return true
			}
		}
		return false
	})

	// Rental kind validation
	validate.RegisterValidation("rental_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		validKinds := []string{"short_term", "long_term", ""}
		for _, k := range validKinds {
			if kind == k {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "role":
			errors[field] = "Invalid role. Must be: guest, host, agent, or admin"
		case "emirate":
			errors[field] = "Invalid emirate"
		case "property_type":
			errors[field] = "Invalid property type. Must be: apartment, villa, townhouse, studio, or penthouse"
		case "rental_kind":
			errors[field] = "Invalid rental kind. Must be: short_term or long_term"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
