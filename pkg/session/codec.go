package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrCorrupt is returned when a stored value cannot be decrypted.
var ErrCorrupt = errors.New("corrupt ciphertext")

// Codec encrypts values with AES-256-CBC. Output is hex of a random
// 16-byte IV followed by the PKCS#7 padded ciphertext.
type Codec struct {
	block cipher.Block
	rand  io.Reader
}

// NewCodec creates a codec from a 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length %d: AES-256 requires a %d-byte key", len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Codec{block: block, rand: rand.Reader}, nil
}

// Encrypt seals plain under a fresh IV.
func (c *Codec) Encrypt(plain []byte) (string, error) {
	bs := c.block.BlockSize()
	padded := pad(plain, bs)

	out := make([]byte, bs+len(padded))
	iv := out[:bs]
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[bs:], padded)
	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	bs := c.block.BlockSize()
	if len(raw) < 2*bs || len(raw)%bs != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrCorrupt, len(raw))
	}

	iv, body := raw[:bs], raw[bs:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)
	return unpad(plain, bs)
}

func pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, bs int) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrCorrupt)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", ErrCorrupt)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrCorrupt)
		}
	}
	return b[:len(b)-n], nil
}
