package crypto

import (
	"encoding/json"
	"errors"
)

// IV is an optional Base64 IV or nonce. The zero value is absent.
type IV struct {
	value   string
	present bool
}

// SomeIV wraps a Base64 IV or nonce.
func SomeIV(b64 string) IV { return IV{value: b64, present: true} }

// NoIV is the absent IV, used by RSA.
func NoIV() IV { return IV{} }

// Get returns the Base64 value and whether one is present.
func (iv IV) Get() (string, bool) { return iv.value, iv.present }

// MarshalJSON encodes an absent IV as null.
func (iv IV) MarshalJSON() ([]byte, error) {
	if !iv.present {
		return []byte("null"), nil
	}
	return json.Marshal(iv.value)
}

// UnmarshalJSON treats null and a missing field as absent.
func (iv *IV) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*iv = IV{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*iv = SomeIV(s)
	return nil
}

// EncryptionResult is the Base64 output of one Encrypt call. Feeding its
// fields back to Decrypt with the same algorithm yields the plaintext.
type EncryptionResult struct {
	Algorithm  Algorithm `json:"algorithm"`
	Ciphertext string    `json:"ciphertext"`
	Key        string    `json:"key"`
	IV         IV        `json:"iv"`
}

type options struct {
	random Random
}

// Option configures an Engine.
type Option func(*options)

// WithRandom replaces the system CSPRNG. Tests use it to inject failures.
func WithRandom(r Random) Option {
	return func(o *options) { o.random = r }
}

// Engine translates Base64 at the boundary and dispatches to the strategy
// for the requested algorithm. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	strategies map[Algorithm]Strategy
}

// NewEngine builds an Engine from the registered providers.
func NewEngine(opts ...Option) (*Engine, error) {
	if !initialized.Load() {
		return nil, ErrNotInitialized
	}

	o := &options{random: SystemRandom()}
	for _, opt := range opts {
		opt(o)
	}

	strategies := make(map[Algorithm]Strategy, len(providers))
	for alg, factory := range providers {
		strategies[alg] = factory(o.random)
	}
	return &Engine{strategies: strategies}, nil
}

func (e *Engine) strategy(alg Algorithm) (Strategy, error) {
	s, ok := e.strategies[alg]
	if !ok {
		return nil, &Error{Kind: KindUnsupportedAlgorithm, Algorithm: alg, Field: "algorithm"}
	}
	return s, nil
}

// Encrypt seals plaintext under alg. An empty keyText asks the strategy to
// generate a key; RSA ignores keyText entirely.
func (e *Engine) Encrypt(plaintext []byte, keyText string, alg Algorithm) (*EncryptionResult, error) {
	s, err := e.strategy(alg)
	if err != nil {
		return nil, err
	}
	info := s.Info()

	var key []byte
	if keyText != "" && info.AcceptsKey {
		if key, err = Decode("key", keyText); err != nil {
			return nil, stamp(err, alg)
		}
	}

	sealed, err := s.Encrypt(plaintext, key)
	if err != nil {
		return nil, stamp(err, alg)
	}

	result := &EncryptionResult{
		Algorithm:  alg,
		Ciphertext: Encode(sealed.Ciphertext),
		Key:        Encode(sealed.Key),
	}
	if sealed.IV != nil {
		result.IV = SomeIV(Encode(sealed.IV))
	}
	return result, nil
}

// Decrypt opens a ciphertext produced by Encrypt. iv is ignored for
// algorithms without one; for the others an absent iv fails the length check.
func (e *Engine) Decrypt(ciphertextText, keyText string, iv IV, alg Algorithm) ([]byte, error) {
	s, err := e.strategy(alg)
	if err != nil {
		return nil, err
	}
	info := s.Info()

	ciphertext, err := Decode("ciphertext", ciphertextText)
	if err != nil {
		return nil, stamp(err, alg)
	}
	key, err := Decode("key", keyText)
	if err != nil {
		return nil, stamp(err, alg)
	}

	var ivBytes []byte
	if v, ok := iv.Get(); ok && info.HasIV {
		if ivBytes, err = Decode(info.IVName, v); err != nil {
			return nil, stamp(err, alg)
		}
	}

	plaintext, err := s.Decrypt(ciphertext, key, ivBytes)
	if err != nil {
		return nil, stamp(err, alg)
	}
	return plaintext, nil
}

// stamp records the algorithm on errors raised below the dispatcher.
func stamp(err error, alg Algorithm) error {
	var ce *Error
	if errors.As(err, &ce) && ce.Algorithm == "" {
		ce.Algorithm = alg
	}
	return err
}
