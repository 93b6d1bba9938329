package qrcard

import (
	"context"
	"slices"
)

// sensitiveFields is the fixed, case-sensitive set of confidential field names.
var sensitiveFields = []string{
	"password",
	"token",
	"authToken",
	"apiKey",
	"secret",
	"cvv",
	"cardNumber",
}

var sensitiveSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(sensitiveFields))
	for _, f := range sensitiveFields {
		m[f] = struct{}{}
	}
	return m
}()

// SensitiveFields returns a copy of the sensitive field names.
func SensitiveFields() []string {
	return slices.Clone(sensitiveFields)
}

// IsSensitive reports whether name is a sensitive field (exact match).
func IsSensitive(name string) bool {
	_, ok := sensitiveSet[name]
	return ok
}

// Report counts what a sanitize pass changed.
type Report struct {
	Removed int // sensitive keys removed
	Masked  int // text values replaced by a masker
	Dropped int // objects and arrays dropped for exceeding the depth limit
}

// Sanitizer strips sensitive fields from records.
// A Sanitizer is immutable and safe for concurrent use.
type Sanitizer struct {
	arrays   bool
	maxDepth int
	masks    map[string]Masker
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*sanitizerConfig)

type sanitizerConfig struct {
	arrays   bool
	maxDepth int
	masks    map[string]MaskType
}

// WithArraySanitization makes the sanitizer remove sensitive keys from
// objects inside arrays. Off by default: array contents keep every key and
// are only trimmed to the depth limit.
func WithArraySanitization(enabled bool) SanitizerOption {
	return func(c *sanitizerConfig) { c.arrays = enabled }
}

// WithMaxDepth sets the nesting limit. Objects and arrays each count as a
// level, the top-level record being level 1; containers below the limit are
// dropped. Values below 1 keep the default.
func WithMaxDepth(n int) SanitizerOption {
	return func(c *sanitizerConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithMask masks text values of field at any depth using the named masker.
func WithMask(field string, mt MaskType) SanitizerOption {
	return func(c *sanitizerConfig) {
		if c.masks == nil {
			c.masks = make(map[string]MaskType)
		}
		c.masks[field] = mt
	}
}

// NewSanitizer builds a Sanitizer. It fails only on unknown mask types.
func NewSanitizer(opts ...SanitizerOption) (*Sanitizer, error) {
	cfg := sanitizerConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Sanitizer{
		arrays:   cfg.arrays,
		maxDepth: cfg.maxDepth,
		masks:    make(map[string]Masker, len(cfg.masks)),
	}
	maskers := builtinMaskers()
	for field, mt := range cfg.masks {
		m, ok := maskers[mt]
		if !ok {
			return nil, newConfigError(ErrInvalidMask, field, string(mt))
		}
		s.masks[field] = m
	}
	return s, nil
}

var defaultSanitizer = &Sanitizer{maxDepth: DefaultMaxDepth, masks: map[string]Masker{}}

// Sanitize removes sensitive fields from r using the reference policy:
// objects are sanitized at every depth, array contents keep their keys.
func Sanitize(r *Record) *Record {
	return defaultSanitizer.Sanitize(r)
}

// SanitizeValue applies the reference policy to v. Non-object values are
// returned unchanged; arrays are copied and trimmed to the depth limit.
func SanitizeValue(v Value) Value {
	return defaultSanitizer.SanitizeValue(v)
}

// Sanitize returns a sanitized copy of r. The input is never mutated.
func (s *Sanitizer) Sanitize(r *Record) *Record {
	out, _ := s.SanitizeReport(r)
	return out
}

// SanitizeValue returns a sanitized copy of v.
func (s *Sanitizer) SanitizeValue(v Value) Value {
	var rep Report
	out, _ := s.value(v, 0, &rep)
	return out
}

// SanitizeReport returns a sanitized copy of r together with change counts.
func (s *Sanitizer) SanitizeReport(r *Record) (*Record, Report) {
	var rep Report
	out := s.record(r, 1, &rep)
	emitSanitizeComplete(context.Background(), r.Len(), rep)
	return out, rep
}

func (s *Sanitizer) record(r *Record, depth int, rep *Report) *Record {
	out := NewRecord()
	for k, v := range r.All() {
		if IsSensitive(k) {
			rep.Removed++
			continue
		}
		if m, ok := s.masks[k]; ok {
			if text, isText := v.Text(); isText {
				out.Set(k, TextValue(m.Mask(text)))
				rep.Masked++
				continue
			}
		}
		nv, keep := s.value(v, depth, rep)
		if !keep {
			rep.Dropped++
			continue
		}
		out.Set(k, nv)
	}
	return out
}

// value sanitizes v held by a container at depth. Objects and arrays each
// add one level, matching the tagged parser. keep is false when v is a
// container that would sit beyond the depth limit.
func (s *Sanitizer) value(v Value, depth int, rep *Report) (Value, bool) {
	switch v.Kind() {
	case KindObject:
		if depth+1 > s.maxDepth {
			return Value{}, false
		}
		obj, _ := v.Object()
		return ObjectValue(s.record(obj, depth+1, rep)), true
	case KindArray:
		if depth+1 > s.maxDepth {
			return Value{}, false
		}
		elems, _ := v.Array()
		out := make([]Value, 0, len(elems))
		for _, elem := range elems {
			var (
				nv   Value
				keep bool
			)
			if s.arrays {
				nv, keep = s.value(elem, depth+1, rep)
			} else {
				nv, keep = s.clip(elem, depth+1, rep)
			}
			if !keep {
				rep.Dropped++
				continue
			}
			out = append(out, nv)
		}
		return ArrayValue(out...), true
	case KindNull, KindText, KindNumber, KindBool:
		return v, true
	}
	return v, true
}

// clip copies v without removing sensitive keys, dropping only containers
// beyond the depth limit. It serves array contents when array
// sanitization is off.
func (s *Sanitizer) clip(v Value, depth int, rep *Report) (Value, bool) {
	switch v.Kind() {
	case KindObject:
		if depth+1 > s.maxDepth {
			return Value{}, false
		}
		obj, _ := v.Object()
		out := NewRecord()
		for k, fv := range obj.All() {
			nv, keep := s.clip(fv, depth+1, rep)
			if !keep {
				rep.Dropped++
				continue
			}
			out.Set(k, nv)
		}
		return ObjectValue(out), true
	case KindArray:
		if depth+1 > s.maxDepth {
			return Value{}, false
		}
		elems, _ := v.Array()
		out := make([]Value, 0, len(elems))
		for _, elem := range elems {
			nv, keep := s.clip(elem, depth+1, rep)
			if !keep {
				rep.Dropped++
				continue
			}
			out = append(out, nv)
		}
		return ArrayValue(out...), true
	}
	return v, true
}

// nestingDepth counts nested objects and arrays in v, the measure the
// tagged parser limits.
func nestingDepth(v Value) int {
	switch v.Kind() {
	case KindObject:
		obj, _ := v.Object()
		deepest := 0
		for _, fv := range obj.All() {
			if d := nestingDepth(fv); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	case KindArray:
		elems, _ := v.Array()
		deepest := 0
		for _, elem := range elems {
			if d := nestingDepth(elem); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	return 0
}
