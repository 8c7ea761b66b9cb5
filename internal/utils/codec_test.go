package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	require.NoError(t, err)
	return c
}

func TestCodec_Roundtrip(t *testing.T) {
	c := newTestCodec(t, "k1")
	for _, s := range []string{"", "alice", "ñandú con acentos", strings.Repeat("x", 4096), `{"usuario":"alice"}`} {
		enc, err := c.Encrypt(s)
		require.NoError(t, err)
		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, s, dec)
	}
}

func TestCodec_NonDeterministic(t *testing.T) {
	c := newTestCodec(t, "k1")
	a, _ := c.Encrypt("alice")
	b, _ := c.Encrypt("alice")
	assert.NotEqual(t, a, b)
}

func TestCodec_Garbage(t *testing.T) {
	c := newTestCodec(t, "k1")
	for _, g := range []string{"", "not base64 !!", "YWJj", strings.Repeat("A", 80)} {
		_, err := c.Decrypt(g)
		assert.ErrorIs(t, err, ErrDecode, "input %q", g)
	}
}

func TestCodec_ForeignKey(t *testing.T) {
	enc, err := newTestCodec(t, "k1").Encrypt("alice")
	require.NoError(t, err)

	_, err = newTestCodec(t, "k2").Decrypt(enc)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCodec_Tampered(t *testing.T) {
	c := newTestCodec(t, "k1")
	enc, _ := c.Encrypt("alice")
	raw := []byte(enc)
	if raw[len(raw)-1] == 'A' {
		raw[len(raw)-1] = 'B'
	} else {
		raw[len(raw)-1] = 'A'
	}
	_, err := c.Decrypt(string(raw))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCodec_JSON(t *testing.T) {
	c := newTestCodec(t, "k1")
	type snap struct {
		Usuario string `json:"usuario"`
		Admin   bool   `json:"administrador"`
	}
	enc, err := c.EncryptJSON(snap{Usuario: "alice", Admin: true})
	require.NoError(t, err)

	var got snap
	require.NoError(t, c.DecryptJSON(enc, &got))
	assert.Equal(t, snap{Usuario: "alice", Admin: true}, got)

	notJSON, _ := c.Encrypt("plain text")
	assert.ErrorIs(t, c.DecryptJSON(notJSON, &got), ErrDecode)
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.Error(t, err)
}

func TestNewNumericCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewNumericCode(1000, 9999)
		require.NoError(t, err)
		require.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
	}
	_, err := NewNumericCode(10, 1)
	assert.Error(t, err)
}
