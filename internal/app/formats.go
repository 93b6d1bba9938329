package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zoobzio/qrcard"
	"github.com/zoobzio/qrcard/bson"
	"github.com/zoobzio/qrcard/msgpack"
	"github.com/zoobzio/qrcard/xml"
	"github.com/zoobzio/qrcard/yaml"
)

// Format names an export codec.
type Format string

// Export formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
	FormatBSON    Format = "bson"
	FormatXML     Format = "xml"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMsgpack, FormatBSON, FormatXML}
}

// ParseFormat parses a format name, ignoring case. "yml" and "mpk" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatMsgpack, FormatBSON, FormatXML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s: no file extension", path)
	}
	return ParseFormat(ext)
}

// Codec returns the codec for f.
func (f Format) Codec() qrcard.Codec {
	switch f {
	case FormatYAML:
		return yaml.New()
	case FormatMsgpack:
		return msgpack.New()
	case FormatBSON:
		return bson.New()
	case FormatXML:
		return xml.New()
	default:
		return qrcard.Tagged()
	}
}

// Ext returns the usual file extension for f.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".mpk"
	}
	return "." + string(f)
}
