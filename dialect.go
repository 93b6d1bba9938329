package qrcard

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Dialect identifies the serialization format of a payload.
type Dialect string

const (
	// DialectTagged is the lossless, type-preserving object text.
	DialectTagged Dialect = "tagged"

	// DialectFlattened is the legacy line-oriented "Label: value" text.
	DialectFlattened Dialect = "flattened"
)

const flattenedSeparator = ": "

var numericLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Sniff classifies text by its first non-whitespace character.
func Sniff(text string) Dialect {
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		return DialectTagged
	}
	return DialectFlattened
}

// parseFlattened reads "Label: value" lines into a single flat record.
// Headers (a trailing colon without separator) and blank lines are skipped.
// Lines without a separator are dropped unless strict is set.
func parseFlattened(text string, strict bool) (*Record, error) {
	r := NewRecord()
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		idx := strings.Index(line, flattenedSeparator)
		if idx < 0 {
			if strings.HasSuffix(line, ":") || !strict {
				continue
			}
			return nil, newDecodeError(MalformedFlattened, i+1, nil)
		}
		key := NormalizeLabel(line[:idx])
		if key == "" {
			if strict {
				return nil, newDecodeError(MalformedFlattened, i+1, nil)
			}
			continue
		}
		r.Set(key, coerceFlattened(strings.TrimSpace(line[idx+len(flattenedSeparator):])))
	}
	return r, nil
}

// coerceFlattened turns a raw flattened value into the most specific Value.
func coerceFlattened(raw string) Value {
	if isWrappedObject(raw) {
		if obj, err := parseTagged([]byte(raw), DefaultMaxDepth); err == nil {
			return ObjectValue(obj)
		}
		return TextValue(raw)
	}
	switch strings.ToLower(raw) {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if numericLiteral.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberValue(f)
		}
	}
	return TextValue(raw)
}

// NormalizeLabel converts a display label to a camel-like key:
// "Start Date" -> "startDate", "first_name" -> "firstName".
func NormalizeLabel(label string) string {
	s := strings.ReplaceAll(strings.ToLower(label), "_", " ")

	var b strings.Builder
	b.Grow(len(s))
	prevWord := false
	for _, r := range s {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case unicode.IsSpace(r):
		case word && !prevWord:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		prevWord = word
	}

	out := []rune(b.String())
	if len(out) == 0 {
		return ""
	}
	out[0] = unicode.ToLower(out[0])
	return string(out)
}
