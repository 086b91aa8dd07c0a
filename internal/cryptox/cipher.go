// Package cryptox implements the credential protection primitives: AES-GCM
// encryption of stored secrets and slow salted hashing of passwords and
// security answers.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/passvault/internal/common"
)

const (
	// KeySize is the required symmetric key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length generated for every Encrypt call.
	NonceSize = 12
)

var (
	ErrKeyMissing = errors.New("encryption key is not set")
	ErrKeyLength  = errors.New("encryption key must be 32 bytes (64 hex characters)")
)

// Cipher encrypts and decrypts secrets under one static key. The key is held
// in a memguard enclave and only unsealed for the duration of a single
// operation. A Cipher is safe for concurrent use.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher builds a Cipher from raw key bytes. The caller's slice is left
// untouched; a copy is sealed into the enclave.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrKeyMissing
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrKeyLength, len(key))
	}

	buf := make([]byte, KeySize)
	copy(buf, key)
	// NewEnclave wipes buf.
	return &Cipher{key: memguard.NewEnclave(buf)}, nil
}

// NewCipherFromHex decodes a 64-character hex key, as supplied by
// configuration, and builds a Cipher.
func NewCipherFromHex(hexKey string) (*Cipher, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, ErrKeyMissing
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLength, err)
	}
	defer common.WipeByteArray(key)

	return NewCipher(key)
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	lb, err := c.key.Open()
	if err != nil {
		return nil, fmt.Errorf("open key enclave: %w", err)
	}
	defer lb.Destroy()

	// aes.NewCipher expands the key into its own schedule, so the locked
	// buffer can be destroyed right after.
	block, err := aes.NewCipher(lb.Bytes())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (Envelope, error) {
	gcm, err := c.aead()
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("generate nonce: %w", err)
	}

	return Envelope{
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, []byte(plaintext), nil),
	}, nil
}

// Decrypt opens an envelope. A structurally invalid envelope yields
// common.ErrMalformedEnvelope; an authentication failure (wrong key or
// corrupted bytes) yields common.ErrDecryptionFailure. No plaintext is
// returned on error.
func (c *Cipher) Decrypt(env Envelope) (string, error) {
	if len(env.Nonce) != NonceSize || len(env.Ciphertext) == 0 {
		return "", common.ErrMalformedEnvelope
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return "", common.ErrDecryptionFailure
	}
	return string(plaintext), nil
}

// DecryptString parses the text form and decrypts it.
func (c *Cipher) DecryptString(s string) (string, error) {
	env, err := ParseEnvelope(s)
	if err != nil {
		return "", err
	}
	return c.Decrypt(env)
}
