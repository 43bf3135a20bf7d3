package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewEncryptor("correct horse battery staple", nil)
	require.NoError(t, err)

	for _, plaintext := range []string{
		"",
		"x",
		"service-role-key-value",
		"multi\nline\nsecret",
		`{"json":"payload","n":42}`,
	} {
		sec, err := enc.Encrypt(plaintext)
		require.NoError(t, err, "encrypting %q", plaintext)
		require.NotEmpty(t, sec.IV)
		require.NotEmpty(t, sec.AuthTag)
		require.NotEmpty(t, sec.Salt)

		got, err := enc.Decrypt(sec)
		require.NoError(t, err, "decrypting %q", plaintext)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptUsesFreshSaltAndNonce(t *testing.T) {
	enc, err := NewEncryptor("passphrase", nil)
	require.NoError(t, err)

	a, err := enc.Encrypt("same value")
	require.NoError(t, err)
	b, err := enc.Encrypt("same value")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext+a.AuthTag, b.Ciphertext+b.AuthTag)
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc, err := NewEncryptor("passphrase", nil)
	require.NoError(t, err)

	sec, err := enc.Encrypt("sensitive")
	require.NoError(t, err)

	tampered := *sec
	tampered.AuthTag = sec.Salt // valid base64, wrong tag

	_, err = enc.Decrypt(&tampered)
	assert.Error(t, err)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	enc, err := NewEncryptor("passphrase", nil)
	require.NoError(t, err)

	_, err = enc.Decrypt(nil)
	assert.ErrorIs(t, err, ErrMalformedSecret)

	_, err = enc.Decrypt(&EncryptedSecret{Ciphertext: "!!!not-base64!!!", AuthTag: "AA=="})
	assert.ErrorIs(t, err, ErrMalformedSecret)
}

func TestDecryptWithWrongPassphraseFails(t *testing.T) {
	enc, err := NewEncryptor("passphrase", nil)
	require.NoError(t, err)
	other, err := NewEncryptor("different passphrase", nil)
	require.NoError(t, err)

	sec, err := enc.Encrypt("sensitive")
	require.NoError(t, err)

	_, err = other.Decrypt(sec)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewEncryptorRequiresPassphrase(t *testing.T) {
	_, err := NewEncryptor("", nil)
	assert.ErrorIs(t, err, ErrNoPassphrase)
}
