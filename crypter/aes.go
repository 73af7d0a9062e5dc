// Package crypter implements the optional at-rest encryption stage of the
// serialization pipeline: when a CacheStack is configured with a Crypter,
// every value is encrypted before reaching the L2 driver and decrypted
// right after it comes back.
package crypter

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Crypter is the interface every encryption scheme implements.
type Crypter interface {
	Encrypt(plainText []byte) ([]byte, error)
	Decrypt(cipherText []byte) ([]byte, error)
}

// AES implements Crypter with AES-CBC and PKCS#7 padding.
type AES struct {
	key []byte
	iv  []byte
}

// NewAES validates key/iv lengths up front so a misconfiguration fails at
// construction time rather than on the first Encrypt call under load.
func NewAES(key string, iv string) (Crypter, error) {
	if key == "" || iv == "" {
		return nil, errors.New("crypter: key and IV must not be empty")
	}

	keyBytes := []byte(key)
	ivBytes := []byte(iv)

	validKeyLengths := map[int]bool{16: true, 24: true, 32: true}
	if !validKeyLengths[len(keyBytes)] {
		return nil, errors.Newf("crypter: invalid key length: %d bytes; must be 16, 24, or 32", len(keyBytes))
	}
	if len(ivBytes) != aes.BlockSize {
		return nil, errors.Newf("crypter: invalid IV length: %d bytes; must be %d", len(ivBytes), aes.BlockSize)
	}

	return &AES{key: keyBytes, iv: ivBytes}, nil
}

func (a *AES) pkcs7Pad(plainText []byte) []byte {
	remain := len(plainText) % aes.BlockSize
	padLen := aes.BlockSize - remain
	trailing := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(plainText, trailing...)
}

func (a *AES) pkcs7RemovePad(src []byte) ([]byte, error) {
	length := len(src)
	if length == 0 {
		return nil, errors.New("crypter: empty padded input")
	}

	padLen := int(src[length-1])
	if padLen == 0 || padLen > aes.BlockSize {
		return nil, errors.New("crypter: invalid padding length")
	}

	for i := length - padLen; i < length; i++ {
		if src[i] != byte(padLen) {
			return nil, errors.New("crypter: invalid padding")
		}
	}

	end := length - padLen
	if end < 1 {
		return nil, errors.New("crypter: padding consumes the whole block")
	}

	return src[:end], nil
}

func (a *AES) Encrypt(plainText []byte) ([]byte, error) {
	if len(plainText) < 1 {
		return nil, errors.New("crypter: plaintext is empty")
	}

	padded := a.pkcs7Pad(plainText)

	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, fmt.Errorf("crypter: new cipher: %w", err)
	}

	cipherText := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, a.iv).CryptBlocks(cipherText, padded)
	return cipherText, nil
}

func (a *AES) Decrypt(cipherText []byte) ([]byte, error) {
	if len(cipherText) < 1 {
		return nil, errors.New("crypter: ciphertext is empty")
	}
	if len(cipherText)%aes.BlockSize != 0 {
		return nil, errors.New("crypter: ciphertext is not block-aligned")
	}

	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, fmt.Errorf("crypter: new cipher: %w", err)
	}

	plainText := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, a.iv).CryptBlocks(plainText, cipherText)
	return a.pkcs7RemovePad(plainText)
}
