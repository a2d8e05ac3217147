// utils/validator.go - Input validation
package utils

import (
	"fmt"
	"regexp"
	"strings"

	"forms-management-api/models"
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ValidateFormData checks submitted form data against the template's field
// configuration: required fields must be present and non-empty, and values
// must match the declared field type. Unknown keys are rejected so clients
// cannot smuggle arbitrary data past the schema.
func ValidateFormData(fields models.FieldSpecList, data map[string]interface{}) (bool, string) {
	known := make(map[string]models.FieldSpec, len(fields))
	for _, field := range fields {
		known[field.Name] = field
	}

	for name := range data {
		if _, ok := known[name]; !ok {
			return false, fmt.Sprintf("unknown field: %s", name)
		}
	}

	for _, field := range fields {
		value, present := data[field.Name]
		if !present || isEmptyValue(value) {
			if field.Required {
				return false, fmt.Sprintf("missing required field: %s", field.Name)
			}
			continue
		}
		if ok, msg := validateFieldValue(field, value); !ok {
			return false, msg
		}
	}
	return true, ""
}

func validateFieldValue(field models.FieldSpec, value interface{}) (bool, string) {
	switch field.Type {
	case "number":
		// JSON numbers decode as float64.
		if _, ok := value.(float64); !ok {
			return false, fmt.Sprintf("field %s must be a number", field.Name)
		}
	case "checkbox":
		if _, ok := value.(bool); !ok {
			return false, fmt.Sprintf("field %s must be a boolean", field.Name)
		}
	case "select", "radio":
		s, ok := value.(string)
		if !ok {
			return false, fmt.Sprintf("field %s must be a string", field.Name)
		}
		if len(field.Options) > 0 && !containsOption(field.Options, s) {
			return false, fmt.Sprintf("field %s has an invalid option: %s", field.Name, s)
		}
	case "text", "textarea", "date", "file":
		if _, ok := value.(string); !ok {
			return false, fmt.Sprintf("field %s must be a string", field.Name)
		}
	}
	return true, ""
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
