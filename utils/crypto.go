package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

const gcmNonceSize = 12

// recipientKey decodes the 32-byte AES key from RECIPIENTS_SECRET
// (base64). Recipient e-mail addresses never hit the database in clear.
func recipientKey() ([]byte, error) {
	secret := os.Getenv("RECIPIENTS_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("RECIPIENTS_SECRET is not set")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("RECIPIENTS_SECRET is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("RECIPIENTS_SECRET must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// EncryptEmail encrypts an address with AES-256-GCM. The stored format is
// iv:ciphertext:tag, each part base64, so existing rows survive a move to
// a different storage engine.
func EncryptEmail(email string) (string, error) {
	key, err := recipientKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(email), nil)
	cut := len(sealed) - gcm.Overhead()
	ciphertext, tag := sealed[:cut], sealed[cut:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(tag),
	}, ":"), nil
}

// DecryptEmail reverses EncryptEmail.
func DecryptEmail(enc string) (string, error) {
	key, err := recipientKey()
	if err != nil {
		return "", err
	}

	parts := strings.Split(enc, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed encrypted recipient")
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("malformed encrypted recipient: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed encrypted recipient: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("malformed encrypted recipient: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("malformed encrypted recipient")
	}

	plain, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypt recipient: %w", err)
	}
	return string(plain), nil
}
