package crypto

import (
	"sync"
	"sync/atomic"
)

// Factory builds a strategy around an entropy source.
type Factory func(Random) Strategy

var (
	initOnce    sync.Once
	initialized atomic.Bool
	providers   map[Algorithm]Factory
)

// Init registers the cipher providers. It must be called once by process
// bootstrap before the first NewEngine; later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		providers = map[Algorithm]Factory{
			AES:      NewAESCBC,
			DES:      NewDESCBC,
			CHACHA20: NewChaCha20,
			RSA:      NewRSA,
		}
		initialized.Store(true)
	})
}

// Initialized reports whether Init has completed.
func Initialized() bool {
	return initialized.Load()
}
