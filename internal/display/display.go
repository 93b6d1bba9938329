// Package display renders records as sectioned "Label: value" text.
//
// The output is the flattened dialect: feeding it back through
// qrcard.Decode yields a flat record whose keys are the original leaf keys.
package display

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/zoobzio/qrcard"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section is a titled group of record fields.
type Section struct {
	Title string
	Keys  []string
}

// Sections lists the fixed sections in display order. Fields nested under
// "address" are listed by the address section.
var Sections = []Section{
	{Title: "Profile Information", Keys: []string{"name", "email", "phone", "id", "isActive"}},
	{Title: "Work Information", Keys: []string{"company", "position", "department", "startDate"}},
}

// AddressKey names the object shown in the address section.
const AddressKey = "address"

var acronyms = map[string]string{
	"Id":  "ID",
	"Zip": "ZIP",
	"Url": "URL",
}

// Humanize turns a record key into a display label:
// "startDate" -> "Start Date", "first_name" -> "First Name", "id" -> "ID".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
			continue
		case unicode.IsUpper(r) && i > 0:
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	titler := cases.Title(language.English)
	words := strings.Fields(b.String())
	for i, w := range words {
		w = titler.String(w)
		if a, ok := acronyms[w]; ok {
			w = a
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// Render returns the display text for r.
func Render(r *qrcard.Record) string {
	var b strings.Builder
	_ = Write(&b, r)
	return b.String()
}

// Write writes the display text for r to w. Sections without fields are
// omitted, as are empty text values.
func Write(w io.Writer, r *qrcard.Record) error {
	p := &printer{w: w}
	shown := map[string]bool{AddressKey: true}

	for _, sec := range Sections {
		var lines []string
		for _, k := range sec.Keys {
			shown[k] = true
			if v, ok := r.Get(k); ok {
				lines = appendLine(lines, Humanize(k), v)
			}
		}
		p.section(sec.Title, lines)
	}

	if v, ok := r.Get(AddressKey); ok {
		if addr, ok := v.Object(); ok {
			var lines []string
			for k, fv := range addr.All() {
				lines = appendLine(lines, Humanize(k), fv)
			}
			p.section("Address Information", lines)
		} else {
			shown[AddressKey] = false
		}
	}

	for k, v := range r.All() {
		if shown[k] {
			continue
		}
		label := Humanize(k)
		p.section(label+" Information", appendLine(nil, label, v))
	}
	return p.err
}

type printer struct {
	w       io.Writer
	started bool
	err     error
}

func (p *printer) section(title string, lines []string) {
	if p.err != nil || len(lines) == 0 {
		return
	}
	if p.started {
		p.printf("\n")
	}
	p.started = true
	p.printf("%s:\n", title)
	for _, line := range lines {
		p.printf("%s\n", line)
	}
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func appendLine(lines []string, label string, v qrcard.Value) []string {
	s := formatValue(v)
	if s == "" {
		return lines
	}
	return append(lines, label+": "+s)
}

// formatValue renders v on a single line. Objects and arrays are written in
// the tagged dialect so objects decode back as nested records.
func formatValue(v qrcard.Value) string {
	switch v.Kind() {
	case qrcard.KindText:
		s, _ := v.Text()
		return strings.Join(strings.Fields(s), " ")
	default:
		return v.String()
	}
}
