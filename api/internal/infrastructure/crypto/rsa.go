package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
)

const (
	rsaModulusBits = 2048
	// RSAMaxPlaintext is the PKCS#1 v1.5 limit for a 2048-bit modulus.
	RSAMaxPlaintext = rsaModulusBits/8 - 11
)

var errNotRSAKey = errors.New("PKCS8 key is not an RSA private key")

// rsaStrategy mints a fresh 2048-bit keypair on every encrypt and returns
// the PKCS8 private key as the result key. A supplied key is ignored.
type rsaStrategy struct {
	random Random
}

// NewRSA returns the RSA PKCS#1 v1.5 strategy.
func NewRSA(random Random) Strategy {
	return &rsaStrategy{random: random}
}

func (s *rsaStrategy) Info() AlgorithmInfo { return infoFor(RSA) }

func (s *rsaStrategy) Encrypt(plaintext, _ []byte) (*Sealed, error) {
	priv, err := rsa.GenerateKey(s.random, rsaModulusBits)
	if err != nil {
		return nil, cipherFailure(RSA, "encrypt", err)
	}

	ciphertext, err := rsa.EncryptPKCS1v15(s.random, &priv.PublicKey, plaintext)
	if err != nil {
		return nil, cipherFailure(RSA, "encrypt", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, cipherFailure(RSA, "encrypt", err)
	}

	return &Sealed{Ciphertext: ciphertext, Key: der}, nil
}

// Decrypt does no up-front length check on key; malformed key material is
// reported by the PKCS8 parser as a cipher failure.
func (s *rsaStrategy) Decrypt(ciphertext, key, _ []byte) ([]byte, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(key)
	if err != nil {
		return nil, cipherFailure(RSA, "decrypt", err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, cipherFailure(RSA, "decrypt", errNotRSAKey)
	}

	plaintext, err := rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	if err != nil {
		return nil, cipherFailure(RSA, "decrypt", err)
	}
	return plaintext, nil
}
