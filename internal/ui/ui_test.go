package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	SetColorEnabled(false)
	t.Cleanup(func() { SetOutput(os.Stdout, os.Stderr) })
	return &out, &errOut
}

func TestWarnAndError(t *testing.T) {
	_, errOut := capture(t)

	Warnf("profile %q not found", "prod")
	Error("request failed")

	assert.Equal(t, "Warning: profile \"prod\" not found\nError: request failed\n", errOut.String())
}

func TestColorDisabled(t *testing.T) {
	capture(t)
	assert.Equal(t, "ok", Green("ok"))
	assert.Equal(t, "✓", OKTag())
}

func TestColorEnabled(t *testing.T) {
	capture(t)
	SetColorEnabled(true)
	defer SetColorEnabled(false)

	assert.Equal(t, "\033[31mx\033[0m", Red("x"))
}

func TestTable(t *testing.T) {
	out, _ := capture(t)

	Table([]string{"PROFILE", "STATUS"}, [][]string{
		{"default", "ok"},
		{"production", "unauthorized"},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "PROFILE     STATUS"), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "production  unauthorized"), lines[2])
}

func TestKeyValues(t *testing.T) {
	out, _ := capture(t)

	KeyValues([][2]string{{"url", "https://defense.conferdeploy.net"}, {"org_key", "ABCD1234"}})

	assert.Contains(t, out.String(), "url:      https://defense.conferdeploy.net\n")
	assert.Contains(t, out.String(), "org_key:  ABCD1234\n")
}

func TestSection(t *testing.T) {
	out, _ := capture(t)
	Section("Profiles")
	assert.Equal(t, "Profiles\n────────\n", out.String())
}
