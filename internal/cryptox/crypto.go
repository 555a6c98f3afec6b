// Package cryptox seals small secrets (GitHub access tokens) at rest with
// AES-GCM under a key derived from the server secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

// tokenKeySalt separates the token-sealing key from other uses of the
// server secret.
var tokenKeySalt = []byte("repoboard/github-token/v1")

// DeriveKey stretches secret into a 32-byte AES-256 key with Argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Sealer encrypts and decrypts short strings with a fixed key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the sealing key from secret and prepares the cipher.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("empty secret")
	}
	return newSealerWithKey(DeriveKey([]byte(secret), tokenKeySalt))
}

func newSealerWithKey(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce. The ciphertext and
// nonce are returned separately so they can be stored in distinct columns.
func (s *Sealer) Seal(plaintext string) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return s.aead.Seal(nil, nonce, []byte(plaintext), nil), nonce, nil
}

// Open reverses Seal.
func (s *Sealer) Open(ciphertext, nonce []byte) (string, error) {
	if len(nonce) != s.aead.NonceSize() {
		return "", errors.New("invalid nonce size")
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
