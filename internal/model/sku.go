package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var brandCodes = map[string]string{
	"Adidas":       "ADI",
	"Nike":         "NK",
	"Vans":         "VNS",
	"LV":           "LV",
	"Luis Vuitton": "LV",
}

var digitGroup = regexp.MustCompile(`\d+`)

// BrandCode maps a category to its SKU prefix, falling back to the first
// three uppercased characters of the category.
func BrandCode(category string) string {
	if code, ok := brandCodes[category]; ok {
		return code
	}
	return firstN(strings.ToUpper(category), 3)
}

// ModelCode derives a short model code from the product name: the initials
// of the first two alphabetic tokens plus the first digit group, cut to three
// characters. A leading brand name is ignored ("Nike Air Max 90" -> "AM9").
func ModelCode(name, category string) string {
	model := name
	if rest, ok := cutPrefixFold(model, category); ok {
		model = strings.TrimSpace(rest)
	}
	tokens := strings.Fields(model)

	var initials []string
	digits := ""
	for _, t := range tokens {
		if strings.IndexFunc(t, isASCIILetter) >= 0 {
			initials = append(initials, strings.ToUpper(firstN(t, 1)))
		}
		if digits == "" {
			digits = digitGroup.FindString(t)
		}
	}

	code := ""
	if len(initials) > 0 {
		code += initials[0]
	}
	if len(initials) > 1 {
		code += initials[1]
	}
	code = firstN(code+digits, 3)
	if code != "" {
		return code
	}
	if len(tokens) > 0 {
		return strings.ToUpper(firstN(tokens[0], 3))
	}
	return "MDL"
}

// FormatSKU renders BRAND-MODEL-NNN.
func FormatSKU(brand, model string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", brand, model, seq)
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

// cutPrefixFold strips prefix from s ignoring case, counting runes so the
// cut stays on a character boundary.
func cutPrefixFold(s, prefix string) (string, bool) {
	if prefix == "" {
		return s, false
	}
	r := []rune(s)
	n := utf8.RuneCountInString(prefix)
	if len(r) < n || !strings.EqualFold(string(r[:n]), prefix) {
		return s, false
	}
	return string(r[n:]), true
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
