package domain

import "cryptvault/api/internal/infrastructure/crypto"

// CipherEngine is the encrypt/decrypt contract the message service relies on.
// The engine performs no authorization; callers check ownership first.
type CipherEngine interface {
	Encrypt(plaintext []byte, keyText string, alg crypto.Algorithm) (*crypto.EncryptionResult, error)
	Decrypt(ciphertextText, keyText string, iv crypto.IV, alg crypto.Algorithm) ([]byte, error)
}
