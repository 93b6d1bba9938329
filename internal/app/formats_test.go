package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"YAML", FormatYAML},
		{"yml", FormatYAML},
		{"msgpack", FormatMsgpack},
		{"mpk", FormatMsgpack},
		{" bson ", FormatBSON},
		{"xml", FormatXML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/user-1.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("user-1")
	assert.Error(t, err)
}

func TestFormat_CodecAndExt(t *testing.T) {
	for _, f := range Formats() {
		assert.NotEmpty(t, f.Codec().ContentType(), f)
		got, err := FormatFromPath("x" + f.Ext())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}
