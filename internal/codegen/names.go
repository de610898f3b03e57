package codegen

import (
	"go/token"
	"strings"
	"unicode"
)

// toCamel turns a model or field name into an exported Go identifier.
// Existing inner capitalisation is kept, so BlogPost stays BlogPost and
// blog_post becomes BlogPost.
func toCamel(input string) string {
	if input == "" {
		return ""
	}
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	for i, p := range parts {
		parts[i] = applyInitialisms(capitalize(p))
	}
	out := strings.Join(parts, "")
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "M" + out
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func applyInitialisms(part string) string {
	switch strings.ToLower(part) {
	case "id":
		return "ID"
	case "ids":
		return "IDs"
	case "api":
		return "API"
	case "url":
		return "URL"
	case "uuid":
		return "UUID"
	default:
		return part
	}
}

func isValidIdentifier(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name)
}
