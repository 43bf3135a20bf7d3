// Package secrets provides authenticated symmetric encryption for secret
// configuration values using AES-256-GCM with scrypt key derivation.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/scrypt"
)

var (
	// ErrNoPassphrase is returned when no passphrase is configured.
	ErrNoPassphrase = errors.New("no encryption passphrase configured")
	// ErrDecryptionFailed is returned when decryption or authentication fails.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrEncryptionFailed is returned when encryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
	// ErrMalformedSecret is returned when an encrypted secret is missing fields.
	ErrMalformedSecret = errors.New("malformed encrypted secret")
)

// scrypt parameters for passphrase key derivation.
const (
	scryptN   = 32768
	scryptR   = 8
	scryptP   = 1
	keyLen    = 32
	saltLen   = 16
	gcmTagLen = 16
)

// EncryptedSecret is the wire form of an encrypted value. Every field is
// required for decryption; the salt is generated per secret so no two
// values share a derived key.
type EncryptedSecret struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Salt       string `json:"salt"`
}

// Encryptor encrypts and decrypts secret values with a configured passphrase.
type Encryptor struct {
	passphrase []byte
	logger     *slog.Logger
}

// NewEncryptor creates an Encryptor. The passphrase must be non-empty.
func NewEncryptor(passphrase string, logger *slog.Logger) (*Encryptor, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Encryptor{
		passphrase: []byte(passphrase),
		logger:     logger,
	}, nil
}

// Encrypt encrypts plaintext and returns the ciphertext with the nonce,
// authentication tag and key-derivation salt needed to decrypt it.
func (e *Encryptor) Encrypt(plaintext string) (*EncryptedSecret, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: generating salt: %v", ErrEncryptionFailed, err)
	}

	gcm, err := e.aead(salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", ErrEncryptionFailed, err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - gcmTagLen

	return &EncryptedSecret{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		AuthTag:    base64.StdEncoding.EncodeToString(sealed[split:]),
		Salt:       base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// Decrypt decrypts an encrypted secret. The IV, auth tag and salt are
// explicit arguments of the operation; any tampering or missing field
// yields ErrDecryptionFailed rather than a panic.
func (e *Encryptor) Decrypt(sec *EncryptedSecret) (string, error) {
	if sec == nil || sec.Ciphertext == "" && sec.AuthTag == "" {
		return "", ErrMalformedSecret
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sec.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrMalformedSecret, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(sec.IV)
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", ErrMalformedSecret, err)
	}
	tag, err := base64.StdEncoding.DecodeString(sec.AuthTag)
	if err != nil {
		return "", fmt.Errorf("%w: auth tag: %v", ErrMalformedSecret, err)
	}
	salt, err := base64.StdEncoding.DecodeString(sec.Salt)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", ErrMalformedSecret, err)
	}

	gcm, err := e.aead(salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length %d", ErrMalformedSecret, len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		e.logger.Warn("secret decryption failed", "error", err)
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// aead builds the AES-GCM cipher for the given salt.
func (e *Encryptor) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(e.passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// GenerateRandomBytes generates cryptographically secure random bytes.
// Useful for generating replacement key material during rotation.
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
