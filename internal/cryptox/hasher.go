package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a digest algorithm.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

const argonPrefix = "argon2id$"

// ArgonParams are the argon2id work factors.
type ArgonParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

var DefaultArgon = ArgonParams{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

// Hasher produces and checks self-describing, salted digests. The configured
// algorithm only governs new digests; Verify accepts any supported one.
type Hasher struct {
	algorithm  Algorithm
	bcryptCost int
	argon      ArgonParams
	dummy      string
}

type HasherOption func(*Hasher)

func WithAlgorithm(a Algorithm) HasherOption { return func(h *Hasher) { h.algorithm = a } }
func WithBcryptCost(cost int) HasherOption   { return func(h *Hasher) { h.bcryptCost = cost } }
func WithArgonParams(p ArgonParams) HasherOption {
	return func(h *Hasher) { h.argon = p }
}

// NewHasher validates the options and precomputes a dummy digest used to
// equalise timing for malformed digests and unknown users.
func NewHasher(opts ...HasherOption) (*Hasher, error) {
	h := &Hasher{
		algorithm:  AlgorithmBcrypt,
		bcryptCost: bcrypt.DefaultCost,
		argon:      DefaultArgon,
	}
	for _, opt := range opts {
		opt(h)
	}

	switch h.algorithm {
	case AlgorithmBcrypt:
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", h.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
		if h.argon.Time == 0 || h.argon.Memory == 0 || h.argon.Parallelism == 0 || h.argon.SaltLen <= 0 || h.argon.KeyLen == 0 {
			return nil, errors.New("argon2id parameters must be positive")
		}
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", h.algorithm)
	}

	dummy, err := h.Hash(common.MustRandHex(16))
	if err != nil {
		return nil, fmt.Errorf("dummy digest: %w", err)
	}
	h.dummy = dummy

	return h, nil
}

// Hash returns a fresh digest of raw. Every call uses a new salt.
func (h *Hasher) Hash(raw string) (string, error) {
	switch h.algorithm {
	case AlgorithmArgon2id:
		return h.hashArgon(raw), nil
	default:
		digest, err := bcrypt.GenerateFromPassword([]byte(raw), h.bcryptCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: input longer than 72 bytes", common.ErrorValidation)
		}
		if err != nil {
			return "", err
		}
		return string(digest), nil
	}
}

// Verify reports whether raw matches digest. A malformed or empty digest is
// checked against the dummy digest first so it costs the same as a real
// mismatch, then reported as false.
func (h *Hasher) Verify(raw, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argonPrefix):
		ok, err := verifyArgon(raw, digest)
		if err != nil {
			h.burn(raw)
			return false
		}
		return ok
	case strings.HasPrefix(digest, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw))
		if err == nil {
			return true
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.burn(raw)
		}
		return false
	default:
		h.burn(raw)
		return false
	}
}

// HashAnswer normalizes a security answer and hashes it.
func (h *Hasher) HashAnswer(answer string) (string, error) {
	return h.Hash(NormalizeAnswer(answer))
}

// VerifyAnswer normalizes a security answer and verifies it.
func (h *Hasher) VerifyAnswer(answer, digest string) bool {
	return h.Verify(NormalizeAnswer(answer), digest)
}

// NormalizeAnswer lower-cases and trims an answer so "Paris " and "paris"
// are the same answer.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func (h *Hasher) burn(raw string) {
	if strings.HasPrefix(h.dummy, argonPrefix) {
		_, _ = verifyArgon(raw, h.dummy)
		return
	}
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummy), []byte(raw))
}

func (h *Hasher) hashArgon(raw string) string {
	p := h.argon
	salt := common.GenerateRandByteArray(p.SaltLen)
	key := argon2.IDKey([]byte(raw), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	// argon2id$m=<M>,t=<T>,p=<P>$<b64(salt)>$<b64(key)>
	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s", argonPrefix,
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

var errInvalidDigest = errors.New("invalid digest")

func verifyArgon(raw, encoded string) (bool, error) {
	parts := strings.Split(strings.TrimPrefix(encoded, argonPrefix), "$")
	if len(parts) != 3 {
		return false, errInvalidDigest
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil || m == 0 || t == 0 || p == 0 {
		return false, errInvalidDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, errInvalidDigest
	}
	keyRef, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil || len(keyRef) == 0 {
		return false, errInvalidDigest
	}

	key := argon2.IDKey([]byte(raw), salt, t, m, p, uint32(len(keyRef)))
	return subtle.ConstantTimeCompare(key, keyRef) == 1, nil
}
