package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_Piped(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  s3cr3t/ID \n"), &out)

	v, err := p.Secret("API token")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t/ID", v)
	assert.Equal(t, "API token: ", out.String())
}

func TestSecret_NoTrailingNewline(t *testing.T) {
	p := New(strings.NewReader("tok"), io.Discard)

	v, err := p.Secret("API token")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
}

func TestSecret_EmptyInput(t *testing.T) {
	p := New(strings.NewReader(""), io.Discard)

	_, err := p.Secret("API token")
	assert.ErrorIs(t, err, io.EOF)
}

func TestLine_Default(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\nhttps://example.net\n"), &out)

	v, err := p.Line("URL", "https://defense.conferdeploy.net")
	require.NoError(t, err)
	assert.Equal(t, "https://defense.conferdeploy.net", v)

	v, err = p.Line("URL", "https://defense.conferdeploy.net")
	require.NoError(t, err)
	assert.Equal(t, "https://example.net", v)
	assert.Contains(t, out.String(), "URL [https://defense.conferdeploy.net]: ")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := New(strings.NewReader(tt.input), io.Discard)
			got, err := p.Confirm("Delete?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
