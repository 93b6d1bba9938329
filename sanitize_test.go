package qrcard

import (
	"errors"
	"testing"
)

func sensitiveRecord() *Record {
	creds := NewRecord().
		Set("apiKey", TextValue("ak_live_123")).
		Set("scope", TextValue("read")).
		Set("vault", ObjectValue(NewRecord().
			Set("secret", TextValue("s3cr3t")).
			Set("cvv", TextValue("123")).
			Set("label", TextValue("primary"))))

	device := NewRecord().
		Set("label", TextValue("phone")).
		Set("token", TextValue("tok_in_array"))

	return NewRecord().
		Set("id", NumberValue(1)).
		Set("name", TextValue("John Doe")).
		Set("password", TextValue("supersecret123")).
		Set("authToken", TextValue("eyJ")).
		Set("cardNumber", TextValue("4111111111111111")).
		Set("credentials", ObjectValue(creds)).
		Set("devices", ArrayValue(ObjectValue(device)))
}

// hasSensitive reports whether any object reachable without entering an
// array carries a sensitive key.
func hasSensitive(r *Record) bool {
	for k, v := range r.All() {
		if IsSensitive(k) {
			return true
		}
		if obj, ok := v.Object(); ok && hasSensitive(obj) {
			return true
		}
	}
	return false
}

func TestSensitiveFields(t *testing.T) {
	fields := SensitiveFields()
	want := []string{"password", "token", "authToken", "apiKey", "secret", "cvv", "cardNumber"}
	if len(fields) != len(want) {
		t.Fatalf("SensitiveFields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("SensitiveFields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}

	fields[0] = "mutated"
	if !IsSensitive("password") {
		t.Error("SensitiveFields() should return a copy")
	}
}

func TestIsSensitive_CaseSensitive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"password", true},
		{"apiKey", true},
		{"Password", false},
		{"apikey", false},
		{"passwordHint", false},
	}

	for _, tt := range tests {
		if got := IsSensitive(tt.name); got != tt.want {
			t.Errorf("IsSensitive(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitize_RemovesAtEveryObjectDepth(t *testing.T) {
	out := Sanitize(sensitiveRecord())

	if hasSensitive(out) {
		t.Errorf("Sanitize() left sensitive keys: %s", out)
	}
	want := `{"id":1,"name":"John Doe","credentials":{"scope":"read","vault":{"label":"primary"}},` +
		`"devices":[{"label":"phone","token":"tok_in_array"}]}`
	if got := out.String(); got != want {
		t.Errorf("Sanitize() =\n%s\nwant\n%s", got, want)
	}
}

func TestSanitize_DoesNotMutate(t *testing.T) {
	in := sensitiveRecord()
	before := in.String()

	out := Sanitize(in)
	if in.String() != before {
		t.Errorf("Sanitize() mutated input:\n%s\n%s", before, in)
	}

	creds, _ := out.Get("credentials")
	obj, _ := creds.Object()
	obj.Set("scope", TextValue("write"))
	devices, _ := out.Get("devices")
	arr, _ := devices.Array()
	dev, _ := arr[0].Object()
	dev.Set("label", TextValue("changed"))

	if in.String() != before {
		t.Error("Sanitize() output shares structure with input")
	}
}

func TestSanitize_KeepsOtherValues(t *testing.T) {
	in := sensitiveRecord()
	out := Sanitize(in)

	for k, v := range in.All() {
		if IsSensitive(k) {
			if out.Has(k) {
				t.Errorf("Sanitize() kept %q", k)
			}
			continue
		}
		got, ok := out.Get(k)
		if !ok {
			t.Errorf("Sanitize() dropped %q", k)
			continue
		}
		if v.Kind() != KindObject && !got.Equal(v) {
			t.Errorf("Sanitize() changed %q: %s -> %s", k, v, got)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	once := Sanitize(sensitiveRecord())
	twice := Sanitize(once)
	if !once.Equal(twice) {
		t.Errorf("Sanitize() not idempotent:\n%s\n%s", once, twice)
	}
}

func TestSanitize_Nil(t *testing.T) {
	out := Sanitize(nil)
	if out == nil || out.Len() != 0 {
		t.Errorf("Sanitize(nil) = %v, want empty record", out)
	}
}

func TestSanitizer_ArraySanitization(t *testing.T) {
	s, err := NewSanitizer(WithArraySanitization(true))
	if err != nil {
		t.Fatalf("NewSanitizer() error: %v", err)
	}

	nested := ArrayValue(ArrayValue(ObjectValue(NewRecord().Set("secret", TextValue("x")).Set("ok", BoolValue(true)))))
	in := sensitiveRecord().Set("matrix", nested)

	out, rep := s.SanitizeReport(in)
	want := `{"id":1,"name":"John Doe","credentials":{"scope":"read","vault":{"label":"primary"}},` +
		`"devices":[{"label":"phone"}],"matrix":[[{"ok":true}]]}`
	if got := out.String(); got != want {
		t.Errorf("SanitizeReport() =\n%s\nwant\n%s", got, want)
	}
	if rep.Removed != 8 {
		t.Errorf("Removed = %d, want 8", rep.Removed)
	}
}

func TestSanitizer_MaxDepth(t *testing.T) {
	s, err := NewSanitizer(WithMaxDepth(2))
	if err != nil {
		t.Fatalf("NewSanitizer() error: %v", err)
	}

	in := NewRecord().
		Set("level", NumberValue(1)).
		Set("child", ObjectValue(NewRecord().
			Set("level", NumberValue(2)).
			Set("child", ObjectValue(NewRecord().
				Set("level", NumberValue(3))))))

	out, rep := s.SanitizeReport(in)
	if got := out.String(); got != `{"level":1,"child":{"level":2}}` {
		t.Errorf("SanitizeReport() = %s", got)
	}
	if rep.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", rep.Dropped)
	}
}

func TestSanitizer_DefaultDepthKeepsRealisticRecords(t *testing.T) {
	r := NewRecord().Set("leaf", TextValue("x"))
	for i := 0; i < DefaultMaxDepth-1; i++ {
		r = NewRecord().Set("child", ObjectValue(r))
	}

	_, rep := defaultSanitizer.SanitizeReport(r)
	if rep.Dropped != 0 {
		t.Errorf("Dropped = %d at depth %d, want 0", rep.Dropped, DefaultMaxDepth)
	}

	r = NewRecord().Set("child", ObjectValue(r))
	_, rep = defaultSanitizer.SanitizeReport(r)
	if rep.Dropped != 1 {
		t.Errorf("Dropped = %d at depth %d, want 1", rep.Dropped, DefaultMaxDepth+1)
	}
}

// nestedArrays wraps leaf in n arrays.
func nestedArrays(leaf Value, n int) Value {
	v := leaf
	for i := 0; i < n; i++ {
		v = ArrayValue(v)
	}
	return v
}

func TestSanitizer_ArraysCountTowardDepth(t *testing.T) {
	// The record is level 1, so 63 arrays reach the limit exactly.
	atLimit := NewRecord().Set("a", nestedArrays(TextValue("x"), DefaultMaxDepth-1))
	out, rep := defaultSanitizer.SanitizeReport(atLimit)
	if rep.Dropped != 0 {
		t.Errorf("Dropped = %d at the limit, want 0", rep.Dropped)
	}
	if !out.Equal(atLimit) {
		t.Errorf("SanitizeReport() changed a record at the limit")
	}

	over := NewRecord().Set("a", nestedArrays(TextValue("x"), DefaultMaxDepth))
	out, rep = defaultSanitizer.SanitizeReport(over)
	if rep.Dropped != 1 {
		t.Errorf("Dropped = %d past the limit, want 1", rep.Dropped)
	}
	if d := nestingDepth(ObjectValue(out)); d != DefaultMaxDepth {
		t.Errorf("nestingDepth() = %d, want %d", d, DefaultMaxDepth)
	}
}

func TestSanitizer_ArrayContentsKeepKeysButObeyDepth(t *testing.T) {
	s, err := NewSanitizer(WithMaxDepth(3))
	if err != nil {
		t.Fatalf("NewSanitizer() error: %v", err)
	}

	deep := ObjectValue(NewRecord().
		Set("token", TextValue("kept")).
		Set("inner", ObjectValue(NewRecord().Set("gone", BoolValue(true)))))
	in := NewRecord().Set("items", ArrayValue(deep))

	out, rep := s.SanitizeReport(in)
	if got := out.String(); got != `{"items":[{"token":"kept"}]}` {
		t.Errorf("SanitizeReport() = %s", got)
	}
	if rep.Removed != 0 || rep.Dropped != 1 {
		t.Errorf("Report = %+v, want Removed 0 Dropped 1", rep)
	}
}

func TestEncode_DecodesAtDepthLimit(t *testing.T) {
	tests := []struct {
		name string
		in   *Record
	}{
		{"arrays at limit", NewRecord().Set("a", nestedArrays(NumberValue(1), DefaultMaxDepth-1))},
		{"arrays past limit", NewRecord().Set("a", nestedArrays(NumberValue(1), 70))},
		{"objects past limit", deepChain(DefaultMaxDepth + 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := Decode(text)
			if err != nil {
				t.Fatalf("Decode(Encode()) error: %v", err)
			}
			if want := Sanitize(tt.in); !got.Equal(want) {
				t.Errorf("Decode(Encode()) = %s, want %s", got, want)
			}
		})
	}
}

// deepChain returns a record with n nested object levels under "child".
func deepChain(n int) *Record {
	r := NewRecord().Set("level", NumberValue(float64(n)))
	for i := n - 1; i >= 1; i-- {
		r = NewRecord().Set("level", NumberValue(float64(i))).Set("child", ObjectValue(r))
	}
	return r
}

func TestSanitizer_Masks(t *testing.T) {
	s, err := NewSanitizer(WithMask("email", MaskEmail), WithMask("phone", MaskPhone))
	if err != nil {
		t.Fatalf("NewSanitizer() error: %v", err)
	}

	in := NewRecord().
		Set("email", TextValue("jane@example.com")).
		Set("contact", ObjectValue(NewRecord().
			Set("phone", TextValue("555-123-4567")).
			Set("email", NumberValue(7))))

	out, rep := s.SanitizeReport(in)
	want := `{"email":"j***@example.com","contact":{"phone":"***-***-4567","email":7}}`
	if got := out.String(); got != want {
		t.Errorf("SanitizeReport() = %s, want %s", got, want)
	}
	if rep.Masked != 2 {
		t.Errorf("Masked = %d, want 2", rep.Masked)
	}
}

func TestNewSanitizer_InvalidMask(t *testing.T) {
	_, err := NewSanitizer(WithMask("ssn", "ssn"))
	if !errors.Is(err, ErrInvalidMask) {
		t.Errorf("NewSanitizer() error = %v, want ErrInvalidMask", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "ssn" {
		t.Errorf("ConfigError = %v", ce)
	}
}

func TestSanitizeValue(t *testing.T) {
	obj := ObjectValue(NewRecord().Set("token", TextValue("x")).Set("keep", TextValue("y")))
	if got := SanitizeValue(obj).String(); got != `{"keep":"y"}` {
		t.Errorf("SanitizeValue(object) = %s", got)
	}

	for _, v := range []Value{TextValue("password"), NumberValue(1), NullValue(), BoolValue(false)} {
		if got := SanitizeValue(v); !got.Equal(v) {
			t.Errorf("SanitizeValue(%s) = %s", v, got)
		}
	}
}
