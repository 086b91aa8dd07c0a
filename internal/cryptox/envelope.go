package cryptox

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// Envelope is one encrypted secret: the GCM nonce and the sealed ciphertext
// (including its authentication tag). It crosses storage boundaries in the
// text form "<nonce-hex>:<ciphertext-hex>".
type Envelope struct {
	Nonce      []byte
	Ciphertext []byte
}

// String renders the persisted text form.
func (e Envelope) String() string {
	return hex.EncodeToString(e.Nonce) + ":" + hex.EncodeToString(e.Ciphertext)
}

// IsZero reports whether the envelope carries no material at all.
func (e Envelope) IsZero() bool {
	return len(e.Nonce) == 0 && len(e.Ciphertext) == 0
}

// ParseEnvelope decodes the text form. Anything other than exactly two hex
// components with a NonceSize nonce is common.ErrMalformedEnvelope.
func ParseEnvelope(s string) (Envelope, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Envelope{}, fmt.Errorf("%w: expected 2 components, got %d", common.ErrMalformedEnvelope, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: nonce: %v", common.ErrMalformedEnvelope, err)
	}
	if len(nonce) != NonceSize {
		return Envelope{}, fmt.Errorf("%w: nonce length %d", common.ErrMalformedEnvelope, len(nonce))
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: ciphertext: %v", common.ErrMalformedEnvelope, err)
	}
	if len(ciphertext) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty ciphertext", common.ErrMalformedEnvelope)
	}

	return Envelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

func (e Envelope) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Envelope) UnmarshalText(b []byte) error {
	parsed, err := ParseEnvelope(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Value stores the envelope as text in SQL columns.
func (e Envelope) Value() (driver.Value, error) {
	return e.String(), nil
}

// Scan reads the text form back from SQL columns.
func (e *Envelope) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return e.UnmarshalText([]byte(v))
	case []byte:
		return e.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: unsupported column type %T", common.ErrMalformedEnvelope, src)
	}
}
