package qrcard

import (
	"errors"
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		input string
		want  Dialect
	}{
		{`{"a":1}`, DialectTagged},
		{"  \n\t{", DialectTagged},
		{"Name: Jane", DialectFlattened},
		{"", DialectFlattened},
		{"[1,2]", DialectFlattened},
	}

	for _, tt := range tests {
		if got := Sniff(tt.input); got != tt.want {
			t.Errorf("Sniff(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestDecode_Flattened(t *testing.T) {
	r, err := Decode("Name: Jane Doe\nAge: 34\nActive: true\n")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := NewRecord().
		Set("name", TextValue("Jane Doe")).
		Set("age", NumberValue(34)).
		Set("active", BoolValue(true))
	if !r.Equal(want) {
		t.Errorf("Decode() = %s, want %s", r, want)
	}
}

func TestDecode_FlattenedSections(t *testing.T) {
	input := "Profile Information\n" +
		"Name: Jane Doe\n" +
		"Email: jane@example.com\n" +
		"\n" +
		"Work Information\n" +
		"Department: Engineering\n" +
		"Start Date: 2021-03-15\n" +
		"Address Information:\n" +
		"Address: {\"city\":\"Springfield\",\"zip\":\"12345\"}\n" +
		"Ratio: .5\n" +
		"Verified: FALSE\n" +
		"Note: time: 10:30\n"

	r, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := `{"name":"Jane Doe","email":"jane@example.com","department":"Engineering",` +
		`"startDate":"2021-03-15","address":{"city":"Springfield","zip":"12345"},` +
		`"ratio":0.5,"verified":false,"note":"time: 10:30"}`
	if got := r.String(); got != want {
		t.Errorf("Decode() =\n%s\nwant\n%s", got, want)
	}
}

func TestDecode_FlattenedCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"42", NumberValue(42)},
		{"-3.5", NumberValue(-3.5)},
		{"+7", NumberValue(7)},
		{"1e3", NumberValue(1000)},
		{"True", BoolValue(true)},
		{"0x1F", TextValue("0x1F")},
		{"Infinity", TextValue("Infinity")},
		{"NaN", TextValue("NaN")},
		{"12345-6789", TextValue("12345-6789")},
		{"{not json}", TextValue("{not json}")},
		{"", TextValue("")},
	}

	for _, tt := range tests {
		if got := coerceFlattened(tt.raw); !got.Equal(tt.want) {
			t.Errorf("coerceFlattened(%q) = %s (%s), want %s (%s)", tt.raw, got, got.Kind(), tt.want, tt.want.Kind())
		}
	}
}

func TestDecode_FlattenedNeverStructuredError(t *testing.T) {
	inputs := []string{
		"garbage without separators",
		"Key:value-without-space",
		": leading separator",
		"Data: {\"broken\":",
		"\x00\x01\x02",
		"]]]",
	}

	for _, in := range inputs {
		r, err := Decode(in)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", in, err)
			continue
		}
		if r == nil {
			t.Errorf("Decode(%q) returned nil record", in)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n"} {
		r, err := Decode(in)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", in, err)
		}
		if r.Len() != 0 {
			t.Errorf("Decode(%q) = %s, want empty record", in, r)
		}
	}
}

func TestParseFlattened_Strict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"no separator", "Name: Jane\ngarbage", 2},
		{"empty label", "Name: Jane\n\n : value", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlattened(tt.input, true)
			if !errors.Is(err, ErrMalformedFlattened) {
				t.Fatalf("parseFlattened() error = %v, want ErrMalformedFlattened", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.Line != tt.line {
				t.Errorf("DecodeError line = %v, want %d", de, tt.line)
			}
		})
	}

	r, err := parseFlattened("Profile Information:\nName: Jane", true)
	if err != nil {
		t.Fatalf("parseFlattened(header) error: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Name", "name"},
		{"Start Date", "startDate"},
		{"first_name", "firstName"},
		{"API KEY", "apiKey"},
		{"Auth Token", "authToken"},
		{"  Card   Number ", "cardNumber"},
		{"Zip Code 2", "zipCode2"},
		{"", ""},
		{"Über Straße", "überStraße"},
		{"E-mail", "e-Mail"},
		{"Start-Date", "start-Date"},
		{"Phone (Work)", "phone(Work)"},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.label); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
