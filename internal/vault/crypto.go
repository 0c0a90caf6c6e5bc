// Package vault provides security primitives: AES-GCM sealed tokens for
// supplier response links and TLS certificate generation.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// KeySize is the length of the AES-256 key used to seal tokens.
const KeySize = 32

var (
	// ErrInvalidToken is returned for tokens that are malformed, tampered
	// with or sealed under another key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrKeySize is returned for keys that are not KeySize bytes long.
	ErrKeySize = fmt.Errorf("key must be %d bytes", KeySize)
)

// Sealer seals JSON payloads into opaque, URL-safe tokens.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer returns a Sealer using a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	// GCM is a standard mode that provides authenticated encryption
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{gcm: gcm}, nil
}

// Seal encodes payload as JSON, encrypts it and returns a base64url token.
func (s *Sealer) Seal(payload any) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	// Create the unique nonce (number used once) for this encryption
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Prepend the nonce so we can decrypt it later
	ciphertext := s.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts token and decodes its JSON payload into payload.
func (s *Sealer) Open(token string, payload any) error {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidToken
	}

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return ErrInvalidToken
	}

	nonce, actualCiphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, actualCiphertext, nil)
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(plaintext, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// ParseKey accepts a key as 64 hex characters or as 32 raw bytes.
func ParseKey(secret string) ([]byte, error) {
	if len(secret) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}
	if len(secret) == KeySize {
		return []byte(secret), nil
	}
	return nil, ErrKeySize
}

// GenerateKey returns a random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
