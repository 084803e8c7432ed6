package crypto_test

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptvault/api/internal/infrastructure/crypto"
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func decode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

func randomKey(t *testing.T, n int) string {
	t.Helper()
	k := make([]byte, n)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return b64(k)
}

// ==============================================================================
// 1. Round trips
// ==============================================================================

func TestEngine_RoundTrip_AllAlgorithms(t *testing.T) {
	engine := newEngine(t)

	plaintexts := map[string][]byte{
		"empty":        {},
		"hello":        []byte("hello world"),
		"block-1":      bytes.Repeat([]byte{'a'}, 7),
		"des-block":    bytes.Repeat([]byte{'b'}, 8),
		"aes-block":    bytes.Repeat([]byte{'c'}, 16),
		"aes-block+1":  bytes.Repeat([]byte{'d'}, 17),
		"multi-block":  bytes.Repeat([]byte{'e'}, 64),
		"binary":       {0x00, 0xff, 0x7f, 0x80, 0x01},
		"utf8":         []byte("ключ 鍵 🔐"),
		"rsa-boundary": bytes.Repeat([]byte{'f'}, crypto.RSAMaxPlaintext),
	}

	for _, alg := range []crypto.Algorithm{crypto.AES, crypto.DES, crypto.CHACHA20, crypto.RSA} {
		for name, pt := range plaintexts {
			if alg == crypto.RSA && name != "hello" && name != "empty" && name != "rsa-boundary" {
				continue // keypair generation dominates; a few sizes suffice
			}
			t.Run(string(alg)+"/"+name, func(t *testing.T) {
				res, err := engine.Encrypt(pt, "", alg)
				require.NoError(t, err)

				got, err := engine.Decrypt(res.Ciphertext, res.Key, res.IV, alg)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(pt, got), "round-trip mismatch: got %q want %q", got, pt)
			})
		}
	}
}

func TestEngine_RoundTrip_SuppliedKeys(t *testing.T) {
	engine := newEngine(t)
	pt := []byte("caller supplied key material")

	tests := []struct {
		alg     crypto.Algorithm
		keySize int
	}{
		{crypto.AES, 16},
		{crypto.AES, 24},
		{crypto.AES, 32},
		{crypto.DES, 8},
		{crypto.CHACHA20, 32},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			key := randomKey(t, tt.keySize)

			res, err := engine.Encrypt(pt, key, tt.alg)
			require.NoError(t, err)
			assert.Equal(t, key, res.Key, "supplied key must be echoed back unchanged")

			got, err := engine.Decrypt(res.Ciphertext, key, res.IV, tt.alg)
			require.NoError(t, err)
			assert.Equal(t, pt, got)
		})
	}
}

func TestEngine_HelloWorldScenario(t *testing.T) {
	engine := newEngine(t)

	res, err := engine.Encrypt([]byte("hello world"), "", crypto.AES)
	require.NoError(t, err)

	iv, ok := res.IV.Get()
	require.True(t, ok)
	assert.Len(t, decode(t, iv), 16)
	assert.Len(t, decode(t, res.Key), 32)

	ct := decode(t, res.Ciphertext)
	assert.NotEmpty(t, ct)
	assert.Zero(t, len(ct)%16)

	got, err := engine.Decrypt(res.Ciphertext, res.Key, res.IV, crypto.AES)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

// ==============================================================================
// 2. Key generation
// ==============================================================================

func TestEngine_GeneratedKeySizes(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		alg     crypto.Algorithm
		keySize int
		ivSize  int
	}{
		{crypto.AES, 32, 16},
		{crypto.DES, 8, 8},
		{crypto.CHACHA20, 32, 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			res, err := engine.Encrypt([]byte("p"), "", tt.alg)
			require.NoError(t, err)
			assert.Len(t, decode(t, res.Key), tt.keySize)

			iv, ok := res.IV.Get()
			require.True(t, ok)
			assert.Len(t, decode(t, iv), tt.ivSize)
		})
	}
}

func TestEngine_ChaCha20_CiphertextLengthEqualsPlaintext(t *testing.T) {
	engine := newEngine(t)
	for _, n := range []int{0, 1, 63, 64, 65, 1000} {
		res, err := engine.Encrypt(make([]byte, n), "", crypto.CHACHA20)
		require.NoError(t, err)
		assert.Len(t, decode(t, res.Ciphertext), n)
	}
}

// ==============================================================================
// 3. Validation
// ==============================================================================

func TestEngine_Encrypt_InvalidKeyLength(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		alg     crypto.Algorithm
		keySize int
		want    string
	}{
		{crypto.AES, 10, "10 bytes"},
		{crypto.AES, 33, "33 bytes"},
		{crypto.DES, 7, "7 bytes"},
		{crypto.DES, 16, "16 bytes"},
		{crypto.CHACHA20, 16, "16 bytes"},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			_, err := engine.Encrypt([]byte("x"), b64(make([]byte, tt.keySize)), tt.alg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, crypto.ErrInvalidKeyLength), "got %v", err)
			assert.Equal(t, crypto.KindInvalidKeyLength, crypto.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), string(tt.alg))
		})
	}
}

func TestEngine_Encrypt_InvalidKeyFormat(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.Encrypt([]byte("x"), "not-base64!!", crypto.AES)
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrInvalidFormat)

	var ce *crypto.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "key", ce.Field)
	assert.Equal(t, crypto.AES, ce.Algorithm)
	assert.NotContains(t, err.Error(), "not-base64!!")
	assert.Equal(t, "crypto: invalid AES key format: key must be Base64 encoded", err.Error())
}

func TestEngine_LineBreaksAreInvalidFormat(t *testing.T) {
	engine := newEngine(t)
	wrapped := "AAAAAAAA\nAAAAAAAAAAAAAA=="

	_, err := engine.Encrypt([]byte("x"), wrapped, crypto.AES)
	assert.ErrorIs(t, err, crypto.ErrInvalidFormat)

	_, err = engine.Encrypt([]byte("x"), "AAAAAAAA\r\nAAAAAAAAAAAAAA==", crypto.AES)
	assert.ErrorIs(t, err, crypto.ErrInvalidFormat)

	_, err = crypto.Decode("iv", wrapped)
	var ce *crypto.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "iv", ce.Field)

	b, err := crypto.Decode("key", "AAAAAAAAAAAAAAAAAAAAAA==")
	require.NoError(t, err)
	assert.Len(t, b, 16)
}

func TestEngine_Decrypt_Validation(t *testing.T) {
	engine := newEngine(t)

	aes, err := engine.Encrypt([]byte("x"), "", crypto.AES)
	require.NoError(t, err)
	cc, err := engine.Encrypt([]byte("x"), "", crypto.CHACHA20)
	require.NoError(t, err)

	t.Run("chacha20 nonce of 16 bytes", func(t *testing.T) {
		_, err := engine.Decrypt(cc.Ciphertext, cc.Key, crypto.SomeIV(b64(make([]byte, 16))), crypto.CHACHA20)
		assert.ErrorIs(t, err, crypto.ErrInvalidIvLength)
		assert.Contains(t, err.Error(), "16 bytes")
	})

	t.Run("chacha20 key of 16 bytes", func(t *testing.T) {
		_, err := engine.Decrypt(cc.Ciphertext, b64(make([]byte, 16)), cc.IV, crypto.CHACHA20)
		assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
	})

	t.Run("aes iv of 8 bytes", func(t *testing.T) {
		_, err := engine.Decrypt(aes.Ciphertext, aes.Key, crypto.SomeIV(b64(make([]byte, 8))), crypto.AES)
		assert.ErrorIs(t, err, crypto.ErrInvalidIvLength)
	})

	t.Run("aes absent iv", func(t *testing.T) {
		_, err := engine.Decrypt(aes.Ciphertext, aes.Key, crypto.NoIV(), crypto.AES)
		assert.ErrorIs(t, err, crypto.ErrInvalidIvLength)
		assert.Contains(t, err.Error(), "got 0 bytes")
	})

	t.Run("key checked before iv", func(t *testing.T) {
		_, err := engine.Decrypt(aes.Ciphertext, b64(make([]byte, 5)), crypto.SomeIV(b64(make([]byte, 3))), crypto.AES)
		assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
	})

	t.Run("des key of 7 bytes", func(t *testing.T) {
		_, err := engine.Decrypt(aes.Ciphertext, b64(make([]byte, 7)), crypto.SomeIV(b64(make([]byte, 8))), crypto.DES)
		assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
	})

	for _, field := range []string{"ciphertext", "key", "iv"} {
		t.Run("bad base64 "+field, func(t *testing.T) {
			ct, key, iv := aes.Ciphertext, aes.Key, aes.IV
			switch field {
			case "ciphertext":
				ct = "%%%"
			case "key":
				key = "%%%"
			case "iv":
				iv = crypto.SomeIV("%%%")
			}
			_, err := engine.Decrypt(ct, key, iv, crypto.AES)
			require.ErrorIs(t, err, crypto.ErrInvalidFormat)

			var ce *crypto.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, field, ce.Field)
		})
	}
}

func TestEngine_UnsupportedAlgorithm(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.Encrypt([]byte("x"), "", crypto.Algorithm("BLOWFISH"))
	assert.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)

	_, err = engine.Decrypt("", "", crypto.NoIV(), crypto.Algorithm("3DES"))
	assert.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)

	_, err = crypto.ParseAlgorithm("rot13")
	assert.Equal(t, crypto.KindUnsupportedAlgorithm, crypto.KindOf(err))

	alg, err := crypto.ParseAlgorithm(" chacha20 ")
	require.NoError(t, err)
	assert.Equal(t, crypto.CHACHA20, alg)
}

// ==============================================================================
// 4. Tampering
// ==============================================================================

func TestEngine_CBC_TamperedPaddingFails(t *testing.T) {
	engine := newEngine(t)

	// A full block of plaintext forces a whole padding block. Flipping the
	// low bit of the last byte of the preceding ciphertext block turns the
	// final pad byte into blockSize+1, which is always invalid.
	tests := []struct {
		alg       crypto.Algorithm
		blockSize int
	}{
		{crypto.AES, 16},
		{crypto.DES, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			res, err := engine.Encrypt(bytes.Repeat([]byte{'z'}, tt.blockSize), "", tt.alg)
			require.NoError(t, err)

			ct := decode(t, res.Ciphertext)
			ct[tt.blockSize-1] ^= 0x01

			_, err = engine.Decrypt(b64(ct), res.Key, res.IV, tt.alg)
			assert.ErrorIs(t, err, crypto.ErrCipherFailure)
		})
	}
}

func TestEngine_CBC_TamperNeverYieldsOriginal(t *testing.T) {
	engine := newEngine(t)
	pt := []byte("attack at dawn, bring snacks and a spare radio")

	for _, alg := range []crypto.Algorithm{crypto.AES, crypto.DES} {
		res, err := engine.Encrypt(pt, "", alg)
		require.NoError(t, err)
		ct := decode(t, res.Ciphertext)

		for i := range ct {
			tampered := append([]byte(nil), ct...)
			tampered[i] ^= 0x80

			got, err := engine.Decrypt(b64(tampered), res.Key, res.IV, alg)
			if err != nil {
				assert.ErrorIs(t, err, crypto.ErrCipherFailure)
				continue
			}
			assert.False(t, bytes.Equal(pt, got), "%s: flipped byte %d decrypted to the original", alg, i)
		}
	}
}

func TestEngine_CBC_WrongKeyOrTruncated(t *testing.T) {
	engine := newEngine(t)
	res, err := engine.Encrypt([]byte("sixteen byte msg"), "", crypto.AES)
	require.NoError(t, err)

	ct := decode(t, res.Ciphertext)
	_, err = engine.Decrypt(b64(ct[:len(ct)-1]), res.Key, res.IV, crypto.AES)
	assert.ErrorIs(t, err, crypto.ErrCipherFailure)

	_, err = engine.Decrypt("", res.Key, res.IV, crypto.AES)
	assert.ErrorIs(t, err, crypto.ErrCipherFailure)
}

// ChaCha20 here is unauthenticated: tampering is not detected. Integrity is
// the caller's responsibility.
func TestEngine_ChaCha20_TamperGoesUndetected(t *testing.T) {
	engine := newEngine(t)
	pt := []byte("stream cipher without a tag")

	res, err := engine.Encrypt(pt, "", crypto.CHACHA20)
	require.NoError(t, err)

	ct := decode(t, res.Ciphertext)
	ct[5] ^= 0x01

	got, err := engine.Decrypt(b64(ct), res.Key, res.IV, crypto.CHACHA20)
	require.NoError(t, err)
	assert.NotEqual(t, pt[5], got[5])
	assert.Equal(t, pt[5]^0x01, got[5])
	assert.Equal(t, pt[:5], got[:5])
	assert.Equal(t, pt[6:], got[6:])
}

// ==============================================================================
// 5. IV and nonce freshness
// ==============================================================================

func TestEngine_IVUniqueness(t *testing.T) {
	engine := newEngine(t)

	for _, tc := range []struct {
		alg     crypto.Algorithm
		keySize int
	}{{crypto.AES, 32}, {crypto.CHACHA20, 32}} {
		t.Run(string(tc.alg), func(t *testing.T) {
			key := randomKey(t, tc.keySize)
			seen := make(map[string]bool, 1000)
			for i := 0; i < 1000; i++ {
				res, err := engine.Encrypt([]byte("identical"), key, tc.alg)
				require.NoError(t, err)
				iv, _ := res.IV.Get()
				require.False(t, seen[iv], "iv reused at iteration %d", i)
				seen[iv] = true
			}
			assert.Len(t, seen, 1000)
		})
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	engine := newEngine(t)
	key := randomKey(t, 32)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Encrypt([]byte("concurrent"), key, crypto.CHACHA20)
			if err != nil {
				errs <- err
				return
			}
			if _, err := engine.Decrypt(res.Ciphertext, res.Key, res.IV, crypto.CHACHA20); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy pool drained") }

func TestEngine_EntropyFailureIsReported(t *testing.T) {
	engine := newEngine(t, crypto.WithRandom(failingReader{}))

	for _, alg := range []crypto.Algorithm{crypto.AES, crypto.DES, crypto.CHACHA20} {
		_, err := engine.Encrypt([]byte("x"), "", alg)
		assert.ErrorIs(t, err, crypto.ErrCipherFailure, string(alg))
		assert.Contains(t, err.Error(), "entropy")
	}
}

// ==============================================================================
// 6. RSA
// ==============================================================================

func TestEngine_RSA_FreshKeypairPerCall(t *testing.T) {
	engine := newEngine(t)
	msg := []byte("same message")

	first, err := engine.Encrypt(msg, randomKey(t, 32), crypto.RSA)
	require.NoError(t, err)
	second, err := engine.Encrypt(msg, "ignored-and-not-even-base64!", crypto.RSA)
	require.NoError(t, err)

	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
	assert.NotEqual(t, first.Key, second.Key)

	_, ok := first.IV.Get()
	assert.False(t, ok, "RSA produces no IV")

	for _, res := range []*crypto.EncryptionResult{first, second} {
		got, err := engine.Decrypt(res.Ciphertext, res.Key, crypto.NoIV(), crypto.RSA)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}

	_, err = engine.Decrypt(first.Ciphertext, second.Key, crypto.NoIV(), crypto.RSA)
	assert.ErrorIs(t, err, crypto.ErrCipherFailure)
}

func TestEngine_RSA_Failures(t *testing.T) {
	engine := newEngine(t)

	t.Run("oversized plaintext", func(t *testing.T) {
		_, err := engine.Encrypt(make([]byte, crypto.RSAMaxPlaintext+1), "", crypto.RSA)
		assert.ErrorIs(t, err, crypto.ErrCipherFailure)
	})

	res, err := engine.Encrypt([]byte("short"), "", crypto.RSA)
	require.NoError(t, err)

	t.Run("malformed key bytes", func(t *testing.T) {
		_, err := engine.Decrypt(res.Ciphertext, b64([]byte("not a pkcs8 key")), crypto.NoIV(), crypto.RSA)
		assert.ErrorIs(t, err, crypto.ErrCipherFailure)
		assert.NotErrorIs(t, err, crypto.ErrInvalidKeyLength)
	})

	t.Run("key not base64", func(t *testing.T) {
		_, err := engine.Decrypt(res.Ciphertext, "%%%", crypto.NoIV(), crypto.RSA)
		assert.ErrorIs(t, err, crypto.ErrInvalidFormat)
	})

	t.Run("iv ignored", func(t *testing.T) {
		got, err := engine.Decrypt(res.Ciphertext, res.Key, crypto.SomeIV("anything"), crypto.RSA)
		require.NoError(t, err)
		assert.Equal(t, "short", string(got))
	})
}

// ==============================================================================
// 7. Wiring
// ==============================================================================

func TestEncryptionResult_JSON(t *testing.T) {
	res := crypto.EncryptionResult{Algorithm: crypto.RSA, Ciphertext: "Y3Q=", Key: "a2V5"}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"algorithm":"RSA","ciphertext":"Y3Q=","key":"a2V5","iv":null}`, string(b))

	var back crypto.EncryptionResult
	require.NoError(t, json.Unmarshal([]byte(`{"algorithm":"AES","ciphertext":"","key":"","iv":"aXY="}`), &back))
	iv, ok := back.IV.Get()
	assert.True(t, ok)
	assert.Equal(t, "aXY=", iv)
}

func TestAlgorithms_Catalogue(t *testing.T) {
	infos := crypto.Algorithms()
	require.Len(t, infos, 4)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, string(info.Name))
	}
	assert.Equal(t, "AES,DES,CHACHA20,RSA", strings.Join(names, ","))
	assert.True(t, infos[1].Legacy)
	assert.False(t, infos[3].HasIV)
	assert.False(t, infos[3].AcceptsKey)
}
