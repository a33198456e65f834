package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundtrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("platform-access-token"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "platform-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "platform-access-token", decrypted)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("platform-access-token"), testKey)
	require.NoError(t, err)

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	_, err := Decrypt("not base64!!", testKey)
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", testKey)
	assert.Error(t, err)
}

func TestEncryptBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("data"), []byte("too-short"))
	assert.Error(t, err)
}
