package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"

	"github.com/openfleet/fleetgate/internal/common/config"
)

var (
	ErrBadKeyMaterial = errors.New("cipher key or iv is invalid")
	ErrBadCiphertext  = errors.New("ciphertext is malformed")
)

// Cipher is the system-wide symmetric cipher used for tenant database
// passwords and manager/driver credentials. Key and IV are fixed for the
// process lifetime, so encryption is deterministic: equal plaintexts always
// produce equal ciphertexts. Legacy data depends on this; credential
// verification for the manager and driver tiers compares ciphertexts
// directly instead of decrypting.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

// NewCipher builds the cipher from base64 key material. The key must be
// 16, 24 or 32 bytes after decoding; the IV must match the AES block size.
func NewCipher(cfg config.CipherConfig) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.Key)
	if err != nil {
		return nil, ErrBadKeyMaterial
	}
	iv, err := base64.StdEncoding.DecodeString(cfg.IV)
	if err != nil {
		return nil, ErrBadKeyMaterial
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrBadKeyMaterial
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrBadKeyMaterial
	}
	return &Cipher{block: block, iv: iv}, nil
}

// Encrypt returns the base64 ciphertext of plaintext under the fixed key
// and IV (AES-CBC, PKCS#7 padding).
func (c *Cipher) Encrypt(plaintext string) string {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrBadCiphertext
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrBadCiphertext
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte) (string, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > len(data) {
		return "", ErrBadCiphertext
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return "", ErrBadCiphertext
		}
	}
	return string(data[:len(data)-n]), nil
}
