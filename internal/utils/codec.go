package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is returned when a ciphertext was not produced by this codec
// with the same key.
var ErrDecode = errors.New("cannot decode ciphertext")

var b64 = base64.RawURLEncoding

// Codec encrypts strings with AES-256-GCM. The key is the SHA-256 of the
// configured secret; output is url-safe base64 of nonce||sealed.
type Codec struct {
	aead cipher.AEAD
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("codec secret is empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return b64.EncodeToString(sealed), nil
}

func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := b64.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecode)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(plain), nil
}

// EncryptJSON marshals v and encrypts the result.
func (c *Codec) EncryptJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.Encrypt(string(b))
}

// DecryptJSON decrypts s and unmarshals it into v. A payload that decrypts
// but is not valid JSON is also reported as ErrDecode.
func (c *Codec) DecryptJSON(s string, v any) error {
	plain, err := c.Decrypt(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(plain), v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
