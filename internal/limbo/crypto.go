package limbo

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"sync"
)

// keyPairBits matches the Notchian server's long-lived RSA key size.
const keyPairBits = 1024

// verifyTokenSize is the length of the random per-handshake verify token
// sent in EncryptionRequest.
const verifyTokenSize = 4

// keyMaterial is the process-wide immutable crypto state: the server's
// RSA keypair and its DER-encoded public key, lazily initialized behind
// sync.Once per spec §4.7/§9 ("Global mutable state").
type keyMaterial struct {
	once sync.Once

	privateKey   *rsa.PrivateKey
	publicKeyDER []byte
	initErr      error
}

func (k *keyMaterial) init() {
	k.once.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, keyPairBits)
		if err != nil {
			k.initErr = fmt.Errorf("limbo: generating RSA keypair: %w", err)
			return
		}
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			k.initErr = fmt.Errorf("limbo: encoding public key: %w", err)
			return
		}
		k.privateKey = key
		k.publicKeyDER = der
	})
}

// PrivateKey returns the server's long-lived RSA private key, generating
// it on first use.
func (k *keyMaterial) PrivateKey() (*rsa.PrivateKey, error) {
	k.init()
	return k.privateKey, k.initErr
}

// PublicKeyDER returns the DER-encoded SubjectPublicKeyInfo sent to
// clients in EncryptionRequest, generating the keypair on first use.
func (k *keyMaterial) PublicKeyDER() ([]byte, error) {
	k.init()
	return k.publicKeyDER, k.initErr
}

// NewVerifyToken returns a fresh random verify token for one login
// handshake.
func NewVerifyToken() ([]byte, error) {
	token := make([]byte, verifyTokenSize)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("limbo: generating verify token: %w", err)
	}
	return token, nil
}
