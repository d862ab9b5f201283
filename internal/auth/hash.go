// Package auth implements the online-mode session handshake: the
// Notchian server-id hash and the Mojang session-service client used to
// verify that a connecting client holds a valid authenticated session.
package auth

import (
	"crypto/sha1"
	"math/big"
)

// ServerHash computes the session hash from spec §4.4 step 6: SHA-1 over
// serverID ‖ sharedSecret ‖ encodedPublicKey, rendered as a signed,
// big-endian, base-16, two's-complement integer with no leading zeros and
// a leading '-' for negative values (the "minecraft-hex" rule). Grounded
// on the original chrrs/limbo `mojang::hash`, which does the equivalent
// with `BigInt::from_signed_bytes_be`; the Go stdlib has no signed
// big-endian bigint constructor, so math/big.Int.SetBytes (unsigned) is
// combined with an explicit sign check on the digest's leading bit.
func ServerHash(serverID string, sharedSecret, encodedPublicKey []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(encodedPublicKey)
	digest := h.Sum(nil)

	negative := digest[0]&0x80 != 0
	if negative {
		twosComplementNegate(digest)
	}

	n := new(big.Int).SetBytes(digest)
	if negative {
		return "-" + n.Text(16)
	}
	return n.Text(16)
}

// twosComplementNegate flips digest in place from its two's-complement
// negative encoding to the magnitude of that negative value.
func twosComplementNegate(digest []byte) {
	carry := true
	for i := len(digest) - 1; i >= 0; i-- {
		digest[i] = ^digest[i]
		if carry {
			digest[i]++
			carry = digest[i] == 0
		}
	}
}
