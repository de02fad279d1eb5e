// Package validation provides format validation for contact fields and a
// small rule-based validator for structured input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phonePattern  = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
)

// IsValidEmail reports whether the string is a plausible email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone reports whether the string is an E.164-like phone number:
// a "+" followed by 2-15 digits with a non-zero leading digit.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsValidHandle reports whether the string is a valid social/chat handle
// (1-15 word characters, no sigil).
func IsValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}

// Rule represents a single validation rule.
type Rule interface {
	Validate(value interface{}) error
	Name() string
}

// ValidationResult holds the outcome of validating a data map.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Validator applies registered rules to named fields.
type Validator struct {
	rules map[string][]Rule
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{rules: make(map[string][]Rule)}
}

// AddRule registers a rule for a field.
func (v *Validator) AddRule(field string, rule Rule) {
	v.rules[field] = append(v.rules[field], rule)
}

// Validate checks a data map against all registered rules. Validation of a
// field stops at its first failing rule.
func (v *Validator) Validate(data map[string]interface{}) *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}

	for field, rules := range v.rules {
		value, exists := data[field]
		for _, rule := range rules {
			if !exists && rule.Name() == "required" {
				result.Valid = false
				result.Errors[field] = "field is required"
				break
			}
			if !exists {
				continue
			}
			if err := rule.Validate(value); err != nil {
				result.Valid = false
				result.Errors[field] = err.Error()
				break
			}
		}
	}

	return result
}

// ValidateField applies a field's rules to a single value.
func (v *Validator) ValidateField(field string, value interface{}) error {
	for _, rule := range v.rules[field] {
		if err := rule.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// RequiredRule validates that a value is present and not blank.
type RequiredRule struct{}

func (r RequiredRule) Name() string { return "required" }

func (r RequiredRule) Validate(value interface{}) error {
	if value == nil {
		return fmt.Errorf("value is required")
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("value is required")
		}
	case []string:
		if len(v) == 0 {
			return fmt.Errorf("value is required")
		}
	}
	return nil
}

// EmailRule validates email address format. Empty values pass so the rule
// composes with RequiredRule for required fields.
type EmailRule struct{}

func (r EmailRule) Name() string { return "email" }

func (r EmailRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if str == "" {
		return nil
	}
	if !IsValidEmail(str) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// PhoneRule validates E.164-like phone numbers. Empty values pass.
type PhoneRule struct{}

func (r PhoneRule) Name() string { return "phone" }

func (r PhoneRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if str == "" {
		return nil
	}
	if !IsValidPhone(str) {
		return fmt.Errorf("invalid phone number format")
	}
	return nil
}

// HandleRule validates chat/social handle format. Empty values pass.
type HandleRule struct{}

func (r HandleRule) Name() string { return "handle" }

func (r HandleRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if str == "" {
		return nil
	}
	if !IsValidHandle(str) {
		return fmt.Errorf("invalid handle format")
	}
	return nil
}

// MinLengthRule validates minimum string length.
type MinLengthRule struct {
	Min int
}

func (r MinLengthRule) Name() string { return "min_length" }

func (r MinLengthRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if len(str) < r.Min {
		return fmt.Errorf("value must be at least %d characters long", r.Min)
	}
	return nil
}

// MaxLengthRule validates maximum string length.
type MaxLengthRule struct {
	Max int
}

func (r MaxLengthRule) Name() string { return "max_length" }

func (r MaxLengthRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if len(str) > r.Max {
		return fmt.Errorf("value must be at most %d characters long", r.Max)
	}
	return nil
}

// RegexRule validates against a regular expression.
type RegexRule struct {
	Pattern *regexp.Regexp
	Message string
}

// NewRegexRule compiles a pattern into a RegexRule.
func NewRegexRule(pattern, message string) (*RegexRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return &RegexRule{Pattern: re, Message: message}, nil
}

func (r RegexRule) Name() string { return "regex" }

func (r RegexRule) Validate(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("value must be a string")
	}
	if str == "" {
		return nil
	}
	if !r.Pattern.MatchString(str) {
		if r.Message != "" {
			return fmt.Errorf("%s", r.Message)
		}
		return fmt.Errorf("value does not match required pattern")
	}
	return nil
}

// SanitizeString removes control characters and trims whitespace.
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}
	return strings.TrimSpace(result.String())
}
