package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/qrcard"
)

func TestDemoSource_Lookup(t *testing.T) {
	src, err := NewDemoSource()
	require.NoError(t, err)

	r, err := src.Lookup(t.Context(), "1")
	require.NoError(t, err)

	name, ok := r.Get("name")
	require.True(t, ok)
	text, _ := name.Text()
	assert.Equal(t, "Abhaya Bikram Shahi", text)

	id, _ := r.Get("id")
	n, ok := id.Number()
	require.True(t, ok)
	assert.Equal(t, float64(1), n)

	// Records come back unsanitized.
	assert.True(t, r.Has("password"))
	assert.True(t, r.Has("apiKey"))
	assert.False(t, r.Has("cvv"), "empty optional fields are omitted")

	addr, _ := r.Get("address")
	obj, ok := addr.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"street", "city", "state", "zip", "country"}, obj.Keys())
}

func TestDemoSource_FieldOrder(t *testing.T) {
	src, err := NewDemoSource()
	require.NoError(t, err)

	r, err := src.Lookup(t.Context(), "3")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id", "name", "email", "phone", "address", "company", "position",
		"department", "startDate", "isActive", "cvv", "cardNumber",
	}, r.Keys())
}

func TestDemoSource_NotFound(t *testing.T) {
	src, err := NewDemoSource()
	require.NoError(t, err)

	_, err = src.Lookup(t.Context(), "999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, qrcard.ErrNotFound))

	var nf *qrcard.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "999", nf.ID)
}

func TestMemorySource_ReturnsCopies(t *testing.T) {
	src, err := NewDemoSource()
	require.NoError(t, err)

	first, err := src.Lookup(t.Context(), "2")
	require.NoError(t, err)
	first.Delete("password")

	second, err := src.Lookup(t.Context(), "2")
	require.NoError(t, err)
	assert.True(t, second.Has("password"))
}

func TestMemorySource_Delay(t *testing.T) {
	src := NewMemorySource(map[string]*qrcard.Record{
		"a": qrcard.NewRecord().Set("k", qrcard.TextValue("v")),
	}, WithDelay(20*time.Millisecond))

	start := time.Now()
	_, err := src.Lookup(t.Context(), "a")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMemorySource_Cancelled(t *testing.T) {
	src := NewMemorySource(map[string]*qrcard.Record{
		"a": qrcard.NewRecord(),
	}, WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := src.Lookup(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySource_CancelledNoDelay(t *testing.T) {
	src := NewMemorySource(nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := src.Lookup(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySource_IDs(t *testing.T) {
	src, err := NewDemoSource()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, src.IDs())
}

func writeFixtures(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "json",
			file: "users.json",
			body: `{"7": {"name": "Ram", "token": "abc", "tags": ["x"]}, "8": {"name": "Hari"}}`,
		},
		{
			name: "yaml",
			file: "users.yml",
			body: "\"7\":\n  name: Ram\n  token: abc\n  tags: [x]\n\"8\":\n  name: Hari\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := LoadFile(writeFixtures(t, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, []string{"7", "8"}, src.IDs())

			r, err := src.Lookup(t.Context(), "7")
			require.NoError(t, err)
			assert.Equal(t, []string{"name", "token", "tags"}, r.Keys())

			_, err = src.Lookup(t.Context(), "9")
			assert.ErrorIs(t, err, qrcard.ErrNotFound)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "none.json"))
		assert.Error(t, err)
	})

	t.Run("Unsupported extension", func(t *testing.T) {
		_, err := LoadFile(writeFixtures(t, "users.txt", "{}"))
		assert.ErrorContains(t, err, "unsupported extension")
	})

	t.Run("Entry not an object", func(t *testing.T) {
		_, err := LoadFile(writeFixtures(t, "users.json", `{"1": "Ram"}`))
		assert.ErrorContains(t, err, `entry "1"`)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := LoadFile(writeFixtures(t, "users.json", `{"1": `))
		assert.Error(t, err)
	})
}
