package crypto

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the engine can report. Callers switch on the
// kind, never on the message text.
type Kind int

const (
	// KindInvalidFormat means a Base64 field did not decode.
	KindInvalidFormat Kind = iota + 1
	// KindInvalidKeyLength means the decoded key has the wrong byte count.
	KindInvalidKeyLength
	// KindInvalidIvLength means the decoded IV or nonce has the wrong byte count.
	KindInvalidIvLength
	// KindUnsupportedAlgorithm means the algorithm tag is not recognized.
	KindUnsupportedAlgorithm
	// KindCipherFailure means the underlying transform rejected the input.
	KindCipherFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindInvalidKeyLength:
		return "InvalidKeyLength"
	case KindInvalidIvLength:
		return "InvalidIvLength"
	case KindUnsupportedAlgorithm:
		return "UnsupportedAlgorithm"
	case KindCipherFailure:
		return "CipherFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel errors for errors.Is() checks against an *Error.
var (
	ErrInvalidFormat        = errors.New("invalid format")
	ErrInvalidKeyLength     = errors.New("invalid key length")
	ErrInvalidIvLength      = errors.New("invalid iv length")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrCipherFailure        = errors.New("cipher failure")

	// ErrNotInitialized is returned by NewEngine when Init has not run.
	ErrNotInitialized = errors.New("crypto: provider not initialized, call crypto.Init first")
)

var sentinels = map[Kind]error{
	KindInvalidFormat:        ErrInvalidFormat,
	KindInvalidKeyLength:     ErrInvalidKeyLength,
	KindInvalidIvLength:      ErrInvalidIvLength,
	KindUnsupportedAlgorithm: ErrUnsupportedAlgorithm,
	KindCipherFailure:        ErrCipherFailure,
}

// Error is the single error type returned by the engine.
type Error struct {
	Kind      Kind
	Algorithm Algorithm
	// Field names the input that failed: "ciphertext", "key", "iv" or "algorithm".
	Field string
	// Expected describes the accepted byte lengths, e.g. "16, 24, or 32".
	Expected string
	// Actual is the decoded byte count that was rejected. Only meaningful for
	// the length kinds.
	Actual int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidKeyLength, KindInvalidIvLength:
		return fmt.Sprintf("crypto: invalid %s %s length: expected %s bytes, got %d bytes",
			e.Algorithm, e.Field, e.Expected, e.Actual)
	case KindInvalidFormat:
		if e.Algorithm != "" {
			return fmt.Sprintf("crypto: invalid %s %s format: %s must be Base64 encoded", e.Algorithm, e.Field, e.Field)
		}
		return fmt.Sprintf("crypto: invalid %s format: %s must be Base64 encoded", e.Field, e.Field)
	case KindUnsupportedAlgorithm:
		return fmt.Sprintf("crypto: unsupported algorithm %q", string(e.Algorithm))
	default:
		if e.Err != nil {
			return fmt.Sprintf("crypto: %s %s failed: %v", e.Algorithm, e.Field, e.Err)
		}
		return fmt.Sprintf("crypto: %s %s failed", e.Algorithm, e.Field)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf reports the engine kind carried by err, or 0 when err did not come
// from the engine.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func keyLengthError(alg Algorithm, expected string, actual int) *Error {
	return &Error{Kind: KindInvalidKeyLength, Algorithm: alg, Field: "key", Expected: expected, Actual: actual}
}

func ivLengthError(alg Algorithm, field string, expected string, actual int) *Error {
	return &Error{Kind: KindInvalidIvLength, Algorithm: alg, Field: field, Expected: expected, Actual: actual}
}

func cipherFailure(alg Algorithm, op string, err error) *Error {
	return &Error{Kind: KindCipherFailure, Algorithm: alg, Field: op, Err: err}
}
