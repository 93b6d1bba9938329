package qrcard

import (
	"strings"
	"unicode"
)

// MaskType names a content-aware masking rule.
type MaskType string

const (
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // +977-9808370638 -> ***-***-0638
	MaskCard  MaskType = "card"  // 4111-1111-1111-1111 -> ****-****-****-1111
	MaskName  MaskType = "name"  // Sita Sharma -> S*** S*****
	MaskLast4 MaskType = "last4" // 4111111111111111 -> ************1111
)

// Masker applies content-aware masking.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// MaskerFunc adapts a function to Masker.
type MaskerFunc func(string) string

// Mask calls f(value).
func (f MaskerFunc) Mask(value string) string { return f(value) }

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskEmail: MaskerFunc(maskEmail),
		MaskPhone: MaskerFunc(maskPhone),
		MaskCard:  MaskerFunc(maskCard),
		MaskName:  MaskerFunc(maskName),
		MaskLast4: MaskerFunc(maskLast4),
	}
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return strings.Repeat("*", len(value))
	}
	return value[:1] + "***" + value[at:]
}

// maskPhone keeps the last four digits.
func maskPhone(value string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return strings.Repeat("*", len(value))
	}
	last4 := digits[len(digits)-4:]
	if len(digits) >= 10 {
		return "***-***-" + last4
	}
	return "***-" + last4
}

// maskCard keeps the last four digits and the grouping separator.
func maskCard(value string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return strings.Repeat("*", len(value))
	}
	last4 := digits[len(digits)-4:]
	sep := ""
	switch {
	case strings.Contains(value, " "):
		sep = " "
	case strings.Contains(value, "-"):
		sep = "-"
	default:
		return strings.Repeat("*", len(digits)-4) + last4
	}
	groups := make([]string, (len(digits)-4+3)/4)
	for i := range groups {
		groups[i] = "****"
	}
	return strings.Join(append(groups, last4), sep)
}

// maskName keeps the first letter of each word.
func maskName(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		runes := []rune(w)
		words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(words, " ")
}

// maskLast4 masks everything except the last four characters.
func maskLast4(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
