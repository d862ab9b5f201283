package connio

import "crypto/cipher"

// Minecraft's encryption handshake calls for AES-128/CFB8: standard CFB
// mode with a one-byte (not one-block) feedback segment. The standard
// library's cipher.NewCFBEncrypter/NewCFBDecrypter implement full-block
// feedback (CFB128) and cannot be reused here, so cfb8 reimplements the
// segment-size-1 case directly against the cipher.Block interface.

type cfb8 struct {
	b         cipher.Block
	shift     []byte
	blockSize int
	encrypt   bool
}

func newCFB8Encrypter(b cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(b, iv, true)
}

func newCFB8Decrypter(b cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(b, iv, false)
}

func newCFB8(b cipher.Block, iv []byte, encrypt bool) cipher.Stream {
	blockSize := b.BlockSize()
	if len(iv) != blockSize {
		panic("connio: CFB8 IV length must equal the block size")
	}
	shift := make([]byte, blockSize)
	copy(shift, iv)
	return &cfb8{b: b, shift: shift, blockSize: blockSize, encrypt: encrypt}
}

// XORKeyStream processes src into dst one byte at a time: each byte is
// encrypted by running the block cipher over the current shift register,
// combining its first byte with the plaintext/ciphertext byte, and
// sliding that byte into the register for the next step.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	tmp := make([]byte, c.blockSize)
	for i := range src {
		c.b.Encrypt(tmp, c.shift)

		var out byte
		if c.encrypt {
			out = src[i] ^ tmp[0]
			c.feed(out)
		} else {
			c.feed(src[i])
			out = src[i] ^ tmp[0]
		}
		dst[i] = out
	}
}

// feed slides b into the shift register, discarding its oldest byte —
// the register always holds the last blockSize ciphertext bytes.
func (c *cfb8) feed(b byte) {
	copy(c.shift, c.shift[1:])
	c.shift[c.blockSize-1] = b
}
