package main

import (
	"bytes"
	"fmt"

	"cryptvault/api/internal/infrastructure/crypto"
)

var selfTestVector = []byte("cryptvault self-test vector")

// selfTest round-trips every catalogued algorithm with generated keys.
func selfTest(engine *crypto.Engine) []finding {
	var findings []finding
	for _, info := range crypto.Algorithms() {
		result, err := engine.Encrypt(selfTestVector, "", info.Name)
		if err != nil {
			findings = append(findings, finding{false, fmt.Sprintf("%s encrypt failed: %v", info.Name, err)})
			continue
		}

		plaintext, err := engine.Decrypt(result.Ciphertext, result.Key, result.IV, info.Name)
		switch {
		case err != nil:
			findings = append(findings, finding{false, fmt.Sprintf("%s decrypt failed: %v", info.Name, err)})
		case !bytes.Equal(plaintext, selfTestVector):
			findings = append(findings, finding{false, fmt.Sprintf("%s round trip returned different bytes", info.Name)})
		default:
			label := "round trip verified."
			if info.Legacy {
				label = "round trip verified (legacy algorithm, avoid for new data)."
			}
			findings = append(findings, finding{true, fmt.Sprintf("%s %s", info.Name, label)})
		}
	}
	return findings
}
