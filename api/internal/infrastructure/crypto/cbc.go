package crypto

import (
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"strconv"
)

// errBadCiphertext covers every CBC decrypt rejection (short input, partial
// block, bad padding) so callers cannot tell which check tripped.
var errBadCiphertext = errors.New("ciphertext corrupted or key/iv mismatch")

// cbcStrategy is a block cipher in CBC mode with PKCS#7 padding.
type cbcStrategy struct {
	info     AlgorithmInfo
	expected string
	random   Random
	newBlock func(key []byte) (cipher.Block, error)
}

func (s *cbcStrategy) Info() AlgorithmInfo { return s.info }

func (s *cbcStrategy) checkKey(key []byte) error {
	for _, n := range s.info.KeySizes {
		if len(key) == n {
			return nil
		}
	}
	return keyLengthError(s.info.Name, s.expected, len(key))
}

func (s *cbcStrategy) checkIV(iv []byte) error {
	if len(iv) != s.info.IVSize {
		return ivLengthError(s.info.Name, s.info.IVName, strconv.Itoa(s.info.IVSize), len(iv))
	}
	return nil
}

func (s *cbcStrategy) Encrypt(plaintext, key []byte) (*Sealed, error) {
	var err error
	if key == nil {
		if key, err = randomBytes(s.random, s.info.GeneratedKeySize); err != nil {
			return nil, cipherFailure(s.info.Name, "encrypt", err)
		}
	} else if err := s.checkKey(key); err != nil {
		return nil, err
	}

	iv, err := randomBytes(s.random, s.info.IVSize)
	if err != nil {
		return nil, cipherFailure(s.info.Name, "encrypt", err)
	}

	block, err := s.newBlock(key)
	if err != nil {
		return nil, cipherFailure(s.info.Name, "encrypt", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return &Sealed{Ciphertext: out, Key: key, IV: iv}, nil
}

func (s *cbcStrategy) Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if err := s.checkKey(key); err != nil {
		return nil, err
	}
	if err := s.checkIV(iv); err != nil {
		return nil, err
	}

	block, err := s.newBlock(key)
	if err != nil {
		return nil, cipherFailure(s.info.Name, "decrypt", err)
	}

	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, cipherFailure(s.info.Name, "decrypt", errBadCiphertext)
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)

	plaintext, err := pkcs7Unpad(out, bs)
	if err != nil {
		return nil, cipherFailure(s.info.Name, "decrypt", err)
	}
	return plaintext, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// pkcs7Unpad validates the trailing block in constant time with respect to
// the padding bytes.
func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	n := len(b)
	if n == 0 || n%blockSize != 0 {
		return nil, errBadCiphertext
	}

	pad := int(b[n-1])
	good := subtle.ConstantTimeLessOrEq(1, pad) & subtle.ConstantTimeLessOrEq(pad, blockSize)
	for i := 0; i < blockSize; i++ {
		inPad := subtle.ConstantTimeLessOrEq(i+1, pad)
		match := subtle.ConstantTimeByteEq(b[n-1-i], byte(pad))
		good &= subtle.ConstantTimeSelect(inPad, match, 1)
	}
	if good != 1 {
		return nil, errBadCiphertext
	}
	return b[:n-pad], nil
}
