package crypto

import "strings"

// Algorithm is the closed set of selectable cipher algorithms.
type Algorithm string

const (
	AES      Algorithm = "AES"
	DES      Algorithm = "DES"
	CHACHA20 Algorithm = "CHACHA20"
	RSA      Algorithm = "RSA"
)

// String returns the Algorithm's string representation.
func (a Algorithm) String() string { return string(a) }

// ParseAlgorithm maps a caller-supplied tag onto the closed set. Matching is
// case-insensitive; anything else is KindUnsupportedAlgorithm.
func ParseAlgorithm(tag string) (Algorithm, error) {
	switch a := Algorithm(strings.ToUpper(strings.TrimSpace(tag))); a {
	case AES, DES, CHACHA20, RSA:
		return a, nil
	default:
		return "", &Error{Kind: KindUnsupportedAlgorithm, Algorithm: Algorithm(tag), Field: "algorithm"}
	}
}

// AlgorithmInfo describes the key and IV contract of one algorithm.
type AlgorithmInfo struct {
	Name Algorithm `json:"name"`
	// KeySizes lists the accepted caller-supplied key lengths in bytes.
	// Empty for RSA, whose key is always generated on encrypt.
	KeySizes []int `json:"key_sizes"`
	// GeneratedKeySize is the length of a key minted when none is supplied.
	// For RSA it is the modulus size in bits.
	GeneratedKeySize int `json:"generated_key_size"`
	// AcceptsKey is false when a caller-supplied key is ignored on encrypt.
	AcceptsKey    bool   `json:"accepts_key"`
	HasIV         bool   `json:"has_iv"`
	IVName        string `json:"iv_name,omitempty"`
	IVSize        int    `json:"iv_size,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Legacy        bool   `json:"legacy"`
}

// Algorithms returns the catalogue of supported algorithms in a stable order.
func Algorithms() []AlgorithmInfo {
	return []AlgorithmInfo{
		{Name: AES, KeySizes: []int{16, 24, 32}, GeneratedKeySize: aesGeneratedKeySize, AcceptsKey: true,
			HasIV: true, IVName: "iv", IVSize: aesIVSize},
		{Name: DES, KeySizes: []int{desKeySize}, GeneratedKeySize: desKeySize, AcceptsKey: true,
			HasIV: true, IVName: "iv", IVSize: desIVSize, Legacy: true},
		{Name: CHACHA20, KeySizes: []int{chachaKeySize}, GeneratedKeySize: chachaKeySize, AcceptsKey: true,
			HasIV: true, IVName: "nonce", IVSize: chachaNonceSize},
		{Name: RSA, GeneratedKeySize: rsaModulusBits},
	}
}
