package crypto

import "crypto/aes"

const (
	aesGeneratedKeySize = 32
	aesIVSize           = aes.BlockSize
)

// NewAESCBC returns the AES-CBC strategy. Supplied keys may be 16, 24 or 32
// bytes; generated keys are 32 bytes. The IV is always 16 fresh bytes.
func NewAESCBC(random Random) Strategy {
	return &cbcStrategy{
		info:     infoFor(AES),
		expected: "16, 24, or 32",
		random:   random,
		newBlock: aes.NewCipher,
	}
}
