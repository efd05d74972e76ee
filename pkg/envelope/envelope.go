// Package envelope implements the versioned AEAD wrapper exchanged with
// redemption clients.
//
// Wire format (before standard base64):
//
//	version (1 byte) | nonce (12 bytes) | AES-256-GCM ciphertext and tag
//
// The version byte is authenticated as additional data. The AES key is derived
// from the shared secret with HKDF-SHA256.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"licensegate/pkg/config"

	"go.uber.org/fx"
	"golang.org/x/crypto/hkdf"
)

const (
	// Version1 is the only accepted envelope version.
	Version1 byte = 0x01

	keySize       = 32
	minSecretSize = 16
	hkdfInfo      = "license-envelope/v1"
)

// ErrDecrypt is returned for every inbound failure. Callers must not be able
// to tell which step rejected the message.
var ErrDecrypt = errors.New("envelope: decrypt failed")

var Module = fx.Module("envelope", fx.Provide(ProvideCodec))

type Codec struct {
	aead   cipher.AEAD
	random io.Reader
}

func ProvideCodec(cfg *config.Config) (*Codec, error) {
	return New([]byte(cfg.Envelope.Secret))
}

func New(secret []byte) (*Codec, error) {
	if len(secret) < minSecretSize {
		return nil, fmt.Errorf("envelope secret must be at least %d bytes", minSecretSize)
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive envelope key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}

	return &Codec{aead: aead, random: rand.Reader}, nil
}

// Encrypt seals plain under a fresh random nonce.
func (c *Codec) Encrypt(plain []byte) (string, error) {
	nonceSize := c.aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plain)+c.aead.Overhead())
	out[0] = Version1

	nonce := out[1 : 1+nonceSize]
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", fmt.Errorf("nonce gen: %w", err)
	}

	out = c.aead.Seal(out, nonce, plain, out[:1])
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens raw and checks that the plaintext is a JSON document.
func (c *Codec) Decrypt(raw string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < 1+nonceSize+c.aead.Overhead() || data[0] != Version1 {
		return nil, ErrDecrypt
	}

	nonce, sealed := data[1:1+nonceSize], data[1+nonceSize:]
	plain, err := c.aead.Open(nil, nonce, sealed, data[:1])
	if err != nil {
		return nil, ErrDecrypt
	}

	if !json.Valid(plain) {
		return nil, ErrDecrypt
	}

	return plain, nil
}

// Seal marshals v and encrypts it.
func (c *Codec) Seal(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal envelope body: %w", err)
	}
	return c.Encrypt(plain)
}

// Open decrypts raw into v.
func (c *Codec) Open(raw string, v any) error {
	plain, err := c.Decrypt(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return ErrDecrypt
	}
	return nil
}
