package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/zoobzio/qrcard"
)

// Capturer reads payload text from an image of a QR code.
type Capturer interface {
	Capture(img image.Image) (string, error)
}

// QRCapturer reads codes with the gozxing QR reader.
type QRCapturer struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewCapturer returns a capturer that assumes UTF-8 payloads.
func NewCapturer() *QRCapturer {
	return &QRCapturer{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
			gozxing.DecodeHintType_TRY_HARDER:    true,
		},
	}
}

// Capture decodes the first QR code found in img.
func (c *QRCapturer) Capture(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", qrcard.ErrNotDecodable, err)
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, c.hints)
	if err != nil {
		return "", fmt.Errorf("%w: %w", qrcard.ErrNotDecodable, err)
	}
	return result.GetText(), nil
}

// CaptureFile decodes a QR code from a PNG or JPEG file.
func (c *QRCapturer) CaptureFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: %w", qrcard.ErrNotDecodable, err)
	}
	return c.Capture(img)
}
