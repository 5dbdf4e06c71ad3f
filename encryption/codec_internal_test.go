package encryption

import (
	"context"
	"fmt"
	"testing"

	cgoCrypto "github.com/alwitt/cgoutils/crypto"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

// sealRaw build an authentic envelope around arbitrary plain text
func sealRaw(
	t *testing.T, uut *codecImpl, plainText []byte, passphrase []byte,
) models.Envelope {
	salt, err := uut.randomBytes(uut.suite.saltLen)
	assert.Nil(t, err)
	key, err := DeriveKey(uut.suite.kdf, passphrase, salt)
	assert.Nil(t, err)
	nonce, cipherText, err := uut.seal(context.Background(), uut.suite, key, plainText)
	assert.Nil(t, err)
	return models.Envelope{Algo: uut.algo, Salt: salt, IV: nonce, CipherText: cipherText}
}

func TestVaultCodecMalformedPayload(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	for _, algo := range []models.EnvelopeAlgoENUMType{
		models.EnvelopeAlgoArgon2idXChaCha20Poly1305, models.EnvelopeAlgoArgon2idAES256GCM,
	} {
		codec, err := NewVaultCodec(CodecParams{DefaultAlgo: algo})
		assert.Nil(err)
		uut, ok := codec.(*codecImpl)
		assert.True(ok)

		// Case 0: not JSON
		{
			envelope := sealRaw(t, uut, []byte("not json at all"), []byte("passphrase"))
			_, err := uut.Decrypt(utCtx, envelope, []byte("passphrase"))
			assert.ErrorIs(err, ErrMalformedPayload)
			assert.NotErrorIs(err, ErrDecryptionFailed)
		}

		// Case 1: JSON, but missing the schema version
		{
			envelope := sealRaw(t, uut, []byte(`{"password":"x"}`), []byte("passphrase"))
			_, err := uut.Decrypt(utCtx, envelope, []byte("passphrase"))
			assert.ErrorIs(err, ErrMalformedPayload)
		}

		// Case 2: schema version newer than this build
		{
			envelope := sealRaw(t, uut, []byte(`{"v":99,"password":"x"}`), []byte("passphrase"))
			_, err := uut.Decrypt(utCtx, envelope, []byte("passphrase"))
			assert.ErrorIs(err, ErrMalformedPayload)
		}

		// Case 3: well formed
		{
			envelope := sealRaw(t, uut, []byte(`{"v":1,"notes":"ok"}`), []byte("passphrase"))
			payload, err := uut.Decrypt(utCtx, envelope, []byte("passphrase"))
			assert.Nil(err)
			assert.Equal("ok", payload.GetNotes())
			assert.Nil(payload.Password)
		}
	}
}

func TestVaultCodecEngineFault(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	for _, algo := range []models.EnvelopeAlgoENUMType{
		models.EnvelopeAlgoArgon2idXChaCha20Poly1305, models.EnvelopeAlgoArgon2idAES256GCM,
	} {
		codec, err := NewVaultCodec(CodecParams{DefaultAlgo: algo})
		assert.Nil(err)
		uut, ok := codec.(*codecImpl)
		assert.True(ok)

		passphrase := []byte("passphrase")
		envelope, err := uut.Encrypt(utCtx, models.NewSecretPayload("Secr3t!", ""), passphrase)
		assert.Nil(err)

		engineFault := fmt.Errorf("secure memory exhausted")
		uut.getAEAD = func(context.Context, aeadTypeENUMType) (cgoCrypto.AEAD, error) {
			return nil, engineFault
		}

		// Not reported as a wrong passphrase
		_, err = uut.Decrypt(utCtx, envelope, passphrase)
		assert.ErrorIs(err, engineFault)
		assert.NotErrorIs(err, ErrDecryptionFailed)

		_, err = uut.Encrypt(utCtx, models.NewSecretPayload("Secr3t!", ""), passphrase)
		assert.ErrorIs(err, engineFault)

		// Engine restored
		uut.getAEAD = uut.engineAEAD
		_, err = uut.Decrypt(utCtx, envelope, []byte("wrongpass"))
		assert.Equal(ErrDecryptionFailed, err)
		payload, err := uut.Decrypt(utCtx, envelope, passphrase)
		assert.Nil(err)
		assert.Equal("Secr3t!", payload.GetPassword())
		assert.Equal([]byte("passphrase"), passphrase)
	}
}
