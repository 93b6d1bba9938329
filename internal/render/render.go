// Package render turns payload text into QR codes and reads them back.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/zoobzio/qrcard"
)

// Level is a QR error recovery level.
type Level string

// Recovery levels, lowest to highest.
const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelQuartile Level = "quartile"
	LevelHigh     Level = "high"
)

// DefaultSize is the default PNG edge in pixels.
const DefaultSize = 256

// capacity is the byte-mode capacity of a version 40 symbol per level.
var capacity = map[Level]int{
	LevelLow:      2953,
	LevelMedium:   2331,
	LevelQuartile: 1663,
	LevelHigh:     1273,
}

var recovery = map[Level]qrcode.RecoveryLevel{
	LevelLow:      qrcode.Low,
	LevelMedium:   qrcode.Medium,
	LevelQuartile: qrcode.High,
	LevelHigh:     qrcode.Highest,
}

// ParseLevel parses a level name, ignoring case.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	_, ok := capacity[l]
	return l, ok
}

// Capacity returns the largest payload in bytes a code at l can hold.
func Capacity(l Level) int {
	return capacity[l]
}

// Renderer encodes text as a QR code.
type Renderer interface {
	Render(text string) (*Code, error)
}

// Code is a rendered QR symbol.
type Code struct {
	qr   *qrcode.QRCode
	text string
}

// Text returns the encoded payload.
func (c *Code) Text() string {
	return c.text
}

// PNG returns the code as a PNG image size pixels wide.
func (c *Code) PNG(size int) ([]byte, error) {
	return c.qr.PNG(size)
}

// Terminal returns the code drawn with half-block characters.
func (c *Code) Terminal() string {
	return c.qr.ToSmallString(false)
}

// WritePNG writes the code as a PNG file.
func (c *Code) WritePNG(path string, size int) error {
	data, err := c.PNG(size)
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// QRRenderer renders codes with go-qrcode.
type QRRenderer struct {
	level  Level
	border bool
}

// Option configures a QRRenderer.
type Option func(*QRRenderer)

// WithLevel sets the recovery level. Unknown levels are ignored.
func WithLevel(l Level) Option {
	return func(r *QRRenderer) {
		if _, ok := capacity[l]; ok {
			r.level = l
		}
	}
}

// WithBorder toggles the quiet zone around the symbol.
func WithBorder(on bool) Option {
	return func(r *QRRenderer) { r.border = on }
}

// New returns a renderer at LevelHigh with a border.
func New(opts ...Option) *QRRenderer {
	r := &QRRenderer{level: LevelHigh, border: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Level returns the renderer's recovery level.
func (r *QRRenderer) Level() Level {
	return r.level
}

// Render encodes text. Text longer than the level's capacity fails with
// qrcard.ErrPayloadTooLarge.
func (r *QRRenderer) Render(text string) (*Code, error) {
	if n, limit := len(text), capacity[r.level]; n > limit {
		return nil, fmt.Errorf("%w: %d bytes, level %s holds %d", qrcard.ErrPayloadTooLarge, n, r.level, limit)
	}
	qr, err := qrcode.New(text, recovery[r.level])
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	qr.DisableBorder = !r.border
	return &Code{qr: qr, text: text}, nil
}
