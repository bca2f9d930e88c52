// Package crypto implements the per-session symmetric encryption used for
// chunk payloads: AES-256-GCM with a fresh random nonce per operation.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	KeySize   = 32
	NonceSize = 12
)

var (
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKeySize   = errors.New("invalid key size")
)

// Key is an imported or freshly generated AES-256 key bound to a GCM AEAD.
type Key struct {
	aead cipher.AEAD
	raw  []byte
}

func GenerateKey() (*Key, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return ImportKey(raw)
}

// ImportKey builds a Key from raw material previously produced by Export.
func ImportKey(raw []byte) (*Key, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(raw), KeySize)
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	key := &Key{aead: aead, raw: make([]byte, KeySize)}
	copy(key.raw, raw)
	return key, nil
}

// Export returns the raw key material for transmission to the peer.
func (k *Key) Export() []byte {
	raw := make([]byte, KeySize)
	copy(raw, k.raw)
	return raw
}

// Encrypt seals plaintext with a fresh random nonce. The nonce is never
// reused for the same key and must travel alongside the ciphertext.
func (k *Key) Encrypt(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return k.aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt opens ciphertext. Tag verification failure (tampering, wrong key
// or wrong nonce) surfaces as ErrDecryptionFailed and never as corrupted
// plaintext.
func (k *Key) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrDecryptionFailed, len(nonce))
	}
	plaintext, err := k.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
