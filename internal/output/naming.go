package output

import (
	"strings"
	"unicode"
)

// NamingConvention selects how declaration names are derived from table
// names.
type NamingConvention string

const (
	NamingCamelCase  NamingConvention = "camelCase"
	NamingPascalCase NamingConvention = "PascalCase"
	NamingSnakeCase  NamingConvention = "snake_case"
	NamingPreserve   NamingConvention = "preserve"
)

// ValidNamings returns every supported naming convention value.
func ValidNamings() []string {
	return []string{
		string(NamingCamelCase),
		string(NamingPascalCase),
		string(NamingSnakeCase),
		string(NamingPreserve),
	}
}

// IsValidNaming reports whether s is a recognized naming convention.
func IsValidNaming(s string) bool {
	for _, v := range ValidNamings() {
		if v == s {
			return true
		}
	}
	return false
}

// ApplyNaming transforms name according to the convention. Words are split
// on underscores, dashes, spaces, and lower-to-upper case boundaries.
func ApplyNaming(name string, nc NamingConvention) string {
	if nc == NamingPreserve || name == "" {
		return name
	}

	words := splitWords(name)
	if len(words) == 0 {
		return name
	}

	switch nc {
	case NamingCamelCase:
		var b strings.Builder
		for i, w := range words {
			if i == 0 {
				b.WriteString(strings.ToLower(w))
			} else {
				b.WriteString(capitalize(w))
			}
		}
		return b.String()
	case NamingPascalCase:
		var b strings.Builder
		for _, w := range words {
			b.WriteString(capitalize(w))
		}
		return b.String()
	case NamingSnakeCase:
		lowered := make([]string, len(words))
		for i, w := range words {
			lowered[i] = strings.ToLower(w)
		}
		return strings.Join(lowered, "_")
	default:
		return name
	}
}

func splitWords(name string) []string {
	var words []string
	var cur strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			words = append(words, cur.String())
			cur.Reset()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
