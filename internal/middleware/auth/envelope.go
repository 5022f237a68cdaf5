package auth

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const ivLength = aes.BlockSize // 16 bytes

var (
	// ErrDecryption is the only error Open returns. Callers cannot tell which
	// step failed.
	ErrDecryption = errors.New("decryption failed: invalid token data")
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
)

// Seal encrypts plaintext with AES-256-CBC under a fresh random IV and
// returns hex(iv) + ":" + hex(ciphertext).
func Seal(plaintext, key []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Open reverses Seal. Malformed envelopes, wrong keys and tampered
// ciphertexts all yield ErrDecryption.
func Open(envelope string, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, ErrDecryption
	}

	ivHex, ctHex, ok := strings.Cut(envelope, ":")
	if !ok {
		return nil, ErrDecryption
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivLength {
		return nil, ErrDecryption
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryption
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, ErrDecryption
	}
	return unpadded, nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	return aes.NewCipher(key)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrDecryption
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, ErrDecryption
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryption
		}
	}
	return data[:len(data)-padLen], nil
}
