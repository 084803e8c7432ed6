package crypto

// Sealed is the raw-byte output of one strategy encryption.
type Sealed struct {
	Ciphertext []byte
	Key        []byte
	// IV is nil for algorithms that take no IV or nonce.
	IV []byte
}

// Strategy is one algorithm's encrypt/decrypt contract. Implementations
// validate lengths, mint missing key and IV material, and run the transform.
// All errors returned are *Error.
type Strategy interface {
	Info() AlgorithmInfo
	// Encrypt seals plaintext. A nil key asks the strategy to generate one.
	Encrypt(plaintext, key []byte) (*Sealed, error)
	// Decrypt opens ciphertext. iv is ignored by algorithms without one.
	Decrypt(ciphertext, key, iv []byte) ([]byte, error)
}

// infoFor returns the catalogue entry for alg.
func infoFor(alg Algorithm) AlgorithmInfo {
	for _, info := range Algorithms() {
		if info.Name == alg {
			return info
		}
	}
	return AlgorithmInfo{Name: alg}
}
