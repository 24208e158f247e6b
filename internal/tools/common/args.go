package common

import (
	"fmt"
	"strings"
)

// GetStringArg returns a trimmed string argument, or "" when missing or of
// another type.
func GetStringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// ParseStringOrArray parses a parameter that can be either a single string
// (comma-separated address list) or an array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string
	switch v := param.(type) {
	case string:
		result = splitAddressList(v)
	case []interface{}:
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str = strings.TrimSpace(str); str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return result, nil
}

// splitAddressList splits s on commas outside quotes and angle brackets. A
// part without "@" is a display name prefix like "Doe, Jane <jane@x.com>"
// and is joined to the part that follows it. Roles containing commas need
// the array form.
func splitAddressList(s string) []string {
	var (
		parts   []string
		cur     strings.Builder
		inQuote bool
		inAngle bool
	)
	for _, r := range s {
		switch {
		case r == '"' && !inAngle:
			inQuote = !inQuote
		case r == '<' && !inQuote:
			inAngle = true
		case r == '>' && !inQuote:
			inAngle = false
		case r == ',' && !inQuote && !inAngle:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	parts = append(parts, cur.String())

	var (
		result  []string
		pending string
	)
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if pending != "" {
			p = pending + "," + p
			pending = ""
		}
		if !strings.Contains(p, "@") {
			pending = p
			continue
		}
		result = append(result, strings.TrimSpace(p))
	}
	if pending = strings.TrimSpace(pending); pending != "" {
		result = append(result, pending)
	}
	return result
}
