package encryption_test

import (
	"testing"

	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	for _, algo := range []models.EnvelopeAlgoENUMType{
		models.EnvelopeAlgoArgon2idXChaCha20Poly1305,
		models.EnvelopeAlgoPBKDF2SHA256AES256GCM,
	} {
		params, err := encryption.KDFParamsForAlgo(algo)
		assert.Nil(err)

		salt1 := []byte("0123456789abcdef")
		salt2 := []byte("fedcba9876543210")

		key1, err := encryption.DeriveKey(params, []byte("CorrectHorse1"), salt1)
		assert.Nil(err)
		assert.Len(key1, 32)

		// Same inputs, same key
		key2, err := encryption.DeriveKey(params, []byte("CorrectHorse1"), salt1)
		assert.Nil(err)
		assert.Equal(key1, key2)

		// Different salt, different key
		key3, err := encryption.DeriveKey(params, []byte("CorrectHorse1"), salt2)
		assert.Nil(err)
		assert.NotEqual(key1, key3)

		// Different passphrase, different key
		key4, err := encryption.DeriveKey(params, []byte("CorrectHorse2"), salt1)
		assert.Nil(err)
		assert.NotEqual(key1, key4)
	}
}

func TestDeriveKeyRejectsBadInput(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	params, err := encryption.KDFParamsForAlgo(models.DefaultEnvelopeAlgo)
	assert.Nil(err)

	// Case 0: empty passphrase
	{
		_, err := encryption.DeriveKey(params, nil, []byte("0123456789abcdef"))
		assert.ErrorIs(err, encryption.ErrKeyDerivation)
	}

	// Case 1: empty salt
	{
		_, err := encryption.DeriveKey(params, []byte("passphrase"), nil)
		assert.ErrorIs(err, encryption.ErrKeyDerivation)
	}

	// Case 2: unknown KDF
	{
		_, err := encryption.DeriveKey(
			encryption.KDFParams{Type: "scrypt", Iterations: 1, KeyLen: 32},
			[]byte("passphrase"),
			[]byte("0123456789abcdef"),
		)
		assert.ErrorIs(err, encryption.ErrKeyDerivation)
	}

	// Case 3: unknown algo
	{
		_, err := encryption.KDFParamsForAlgo("v0-rot13")
		assert.ErrorIs(err, encryption.ErrUnsupportedAlgo)
	}
}

func TestZero(t *testing.T) {
	assert := assert.New(t)

	buf := []byte{1, 2, 3, 4, 5}
	encryption.Zero(buf)
	assert.Equal([]byte{0, 0, 0, 0, 0}, buf)

	encryption.Zero(nil)
}
