package crypto

import (
	"golang.org/x/crypto/chacha20"
)

const (
	chachaKeySize   = chacha20.KeySize
	chachaNonceSize = chacha20.NonceSize
)

// chacha20Strategy is the raw IETF ChaCha20 stream cipher (RFC 8439, 96-bit
// nonce, counter starting at 0). It carries no authentication tag: a
// corrupted ciphertext decrypts to garbage without any error.
type chacha20Strategy struct {
	random Random
}

// NewChaCha20 returns the ChaCha20 strategy.
func NewChaCha20(random Random) Strategy {
	return &chacha20Strategy{random: random}
}

func (s *chacha20Strategy) Info() AlgorithmInfo { return infoFor(CHACHA20) }

func (s *chacha20Strategy) Encrypt(plaintext, key []byte) (*Sealed, error) {
	var err error
	if key == nil {
		if key, err = randomBytes(s.random, chachaKeySize); err != nil {
			return nil, cipherFailure(CHACHA20, "encrypt", err)
		}
	} else if len(key) != chachaKeySize {
		return nil, keyLengthError(CHACHA20, "32", len(key))
	}

	// A fresh random nonce per call; the entropy source failing is an error,
	// never a fallback to a fixed or reused value.
	nonce, err := randomBytes(s.random, chachaNonceSize)
	if err != nil {
		return nil, cipherFailure(CHACHA20, "encrypt", err)
	}

	out, err := s.xor(key, nonce, plaintext)
	if err != nil {
		return nil, cipherFailure(CHACHA20, "encrypt", err)
	}
	return &Sealed{Ciphertext: out, Key: key, IV: nonce}, nil
}

func (s *chacha20Strategy) Decrypt(ciphertext, key, nonce []byte) ([]byte, error) {
	if len(key) != chachaKeySize {
		return nil, keyLengthError(CHACHA20, "32", len(key))
	}
	if len(nonce) != chachaNonceSize {
		return nil, ivLengthError(CHACHA20, "nonce", "12", len(nonce))
	}

	out, err := s.xor(key, nonce, ciphertext)
	if err != nil {
		return nil, cipherFailure(CHACHA20, "decrypt", err)
	}
	return out, nil
}

func (s *chacha20Strategy) xor(key, nonce, in []byte) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	c.XORKeyStream(out, in)
	return out, nil
}
