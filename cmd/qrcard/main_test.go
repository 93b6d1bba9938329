package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// runCLI runs the command in a scratch directory with no lookup delay.
func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	if len(args) > 0 {
		args = append([]string{args[0], "--delay", "0", "--log-level", "error"}, args[1:]...)
	}
	code = run(t.Context(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: qrcard")

	code, _, stderr = runCLI(t, "", "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `Error: unknown command "bogus"`)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	code, stdout, stderr := runCLI(t, "", "generate", "--payload", "1", "2")
	require.Equal(t, 0, code, stderr)

	for _, id := range []string{"1", "2"} {
		_, err := os.Stat(filepath.Join(".", "user-"+id+"-qrcode.png"))
		assert.NoError(t, err, id)
	}
	assert.Contains(t, stdout, "Link:        http://localhost:5173/scan?data=")
	assert.NotContains(t, stdout, "gopalsecret123")
	assert.NotContains(t, stdout, "sitasecret456")
}

func TestGenerate_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "", "generate", "999")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: user with ID 999 not found\n")
}

func TestGenerate_NoArgs(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "", "generate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: qrcard generate [flags] <id>...")
}

func TestGenerateThenScan(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "", "generate", "--size", "512", "3")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "", "scan", "--json", "user-3-qrcode.png")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Baburam Pun", gjson.Get(stdout, "name").String())
	assert.False(t, gjson.Get(stdout, "cvv").Exists())
}

func TestDecode(t *testing.T) {
	t.Chdir(t.TempDir())

	code, stdout, stderr := runCLI(t, "", "decode", "--json", "Name: Jane Doe\nAge: 34\nActive: true\n")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Jane Doe", gjson.Get(stdout, "name").String())
	assert.Equal(t, int64(34), gjson.Get(stdout, "age").Int())
	assert.True(t, gjson.Get(stdout, "active").Bool())
}

func TestDecode_Stdin(t *testing.T) {
	t.Chdir(t.TempDir())

	code, stdout, stderr := runCLI(t, `{"name":"Jane","startDate":"2022-04-15"}`, "decode", "-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Profile Information:\nName: Jane\n")
	assert.Contains(t, stdout, "Start Date: 2022-04-15")
}

func TestDecode_Malformed(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "", "decode", `{"name":`)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
}

func TestLink(t *testing.T) {
	t.Chdir(t.TempDir())

	link := "http://localhost:5173/scan?data=%7B%22name%22%3A%22Jane%22%2C%22age%22%3A34%7D"
	code, stdout, stderr := runCLI(t, "", "link", "--json", link)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Jane", gjson.Get(stdout, "name").String())
	assert.Equal(t, int64(34), gjson.Get(stdout, "age").Int())

	code, _, stderr = runCLI(t, "", "link", "http://localhost:5173/scan")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: no QR data provided\n")
}

func TestExportImport(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, name := range []string{"user.json", "user.yaml", "user.mpk", "user.bson", "user.xml"} {
		t.Run(name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "", "export", "--out", name, "1")
			require.Equal(t, 0, code, stderr)
			assert.Contains(t, stdout, "Exported user 1 to "+name)

			code, stdout, stderr = runCLI(t, "", "import", "--json", name)
			require.Equal(t, 0, code, stderr)
			assert.Equal(t, "Abhaya Bikram Shahi", gjson.Get(stdout, "name").String())
			assert.False(t, gjson.Get(stdout, "password").Exists())
		})
	}
}

func TestExport_Stdout(t *testing.T) {
	t.Chdir(t.TempDir())

	code, stdout, stderr := runCLI(t, "", "export", "-f", "yaml", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "name: Sita Sharma")
	assert.NotContains(t, stdout, "secret")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("qrcard.yaml", []byte("link:\n  base: https://cards.example.org\n"), 0o600))

	code, stdout, stderr := runCLI(t, "", "generate", "--no-png", "1")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "https://cards.example.org/scan?data=")
}
