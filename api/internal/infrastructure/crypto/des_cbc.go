package crypto

import "crypto/des"

const (
	desKeySize = 8
	desIVSize  = des.BlockSize
)

// NewDESCBC returns the single-DES CBC strategy. DES is kept only because
// stored messages may still reference it; prefer AES or CHACHA20.
func NewDESCBC(random Random) Strategy {
	return &cbcStrategy{
		info:     infoFor(DES),
		expected: "8",
		random:   random,
		newBlock: des.NewCipher,
	}
}
