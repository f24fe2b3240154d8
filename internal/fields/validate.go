package fields

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// ValidateValue checks one value against one effective field and returns the
// error message, or "" when the value passes. It never panics on input the
// stores already accepted: an uncompilable pattern is simply skipped because
// definition-time validation would have rejected it.
func ValidateValue(f EffectiveField, value any) string {
	if isEmpty(value) {
		if f.Validation.Required {
			return fmt.Sprintf("%s is required", f.DisplayLabel())
		}
		return ""
	}

	if s, ok := value.(string); ok {
		if msg := validateString(f, s); msg != "" {
			return msg
		}
		// number-typed fields posted from text inputs arrive as strings
		if f.Type == TypeNumber {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return validateNumber(f, n)
			}
		}
		return ""
	}

	if n, ok := numericValue(value); ok {
		return validateNumber(f, n)
	}

	return ""
}

// ValidateAll runs ValidateValue for every field against values[field.Name]
// and collects only the failures.
func ValidateAll(effective []EffectiveField, values map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, f := range effective {
		if msg := ValidateValue(f, values[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

func validateString(f EffectiveField, s string) string {
	rule := f.Validation
	n := len([]rune(s))

	if rule.MinLength != nil && n < *rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", f.DisplayLabel(), *rule.MinLength)
	}
	if rule.MaxLength != nil && n > *rule.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", f.DisplayLabel(), *rule.MaxLength)
	}
	if rule.Pattern != "" {
		re, err := regexp.Compile(rule.Pattern)
		if err == nil && !re.MatchString(s) {
			if rule.CustomMessage != "" {
				return rule.CustomMessage
			}
			return fmt.Sprintf("%s has an invalid format", f.DisplayLabel())
		}
	}
	return ""
}

func validateNumber(f EffectiveField, n float64) string {
	rule := f.Validation
	if rule.Min != nil && n < *rule.Min {
		return fmt.Sprintf("%s must be at least %v", f.DisplayLabel(), *rule.Min)
	}
	if rule.Max != nil && n > *rule.Max {
		return fmt.Sprintf("%s must be at most %v", f.DisplayLabel(), *rule.Max)
	}
	return ""
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// numericValue normalizes the number representations that survive a JSON
// round trip.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
