package encryption

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	cgoCrypto "github.com/alwitt/cgoutils/crypto"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
)

// errAEADRejected the AEAD refused the envelope contents
var errAEADRejected = errors.New("envelope rejected by AEAD")

// fillSecureBuffer copy bytes into an engine allocated secure buffer
func fillSecureBuffer(getSlice func() ([]byte, error), src []byte, expected int) error {
	core, err := getSlice()
	if err != nil {
		return fmt.Errorf("failed to access secure buffer core [%w]", err)
	}
	if len(src) != expected {
		return fmt.Errorf("secure buffer source length %d =/= %d", len(src), expected)
	}
	if copied := copy(core, src); copied != expected {
		return fmt.Errorf("failed to fill secure buffer core %d =/= %d", copied, expected)
	}
	return nil
}

// engineAEAD fetch an AEAD client of the requested type from the crypto engine
func (c *codecImpl) engineAEAD(
	ctx context.Context, aeadType aeadTypeENUMType,
) (cgoCrypto.AEAD, error) {
	switch aeadType {
	case aeadXChaCha20Poly1305:
		return c.crypto.GetAEAD(ctx, cgoCrypto.AEADTypeXChaCha20Poly1305)
	case aeadAES256GCM:
		// libsodium only offers AES-256-GCM on CPUs with hardware AES support
		return c.crypto.GetAEAD(ctx, cgoCrypto.AEADTypeAes256gcm)
	}
	return nil, fmt.Errorf("unknown AEAD '%s'", aeadType)
}

// newKeyedAEAD prepare an AEAD client with the key installed
func (c *codecImpl) newKeyedAEAD(
	ctx context.Context, aeadType aeadTypeENUMType, key []byte,
) (cgoCrypto.AEAD, error) {
	aead, err := c.getAEAD(ctx, aeadType)
	if err != nil {
		return nil, fmt.Errorf("unable to define AEAD client [%w]", err)
	}

	keyBuffer, err := c.crypto.AllocateSecureCSlice(aead.ExpectedKeyLen())
	if err != nil {
		return nil, fmt.Errorf("failed to init AEAD key buffer [%w]", err)
	}
	if err := fillSecureBuffer(keyBuffer.GetSlice, key, aead.ExpectedKeyLen()); err != nil {
		return nil, fmt.Errorf("failed to load AEAD key [%w]", err)
	}
	if err := aead.SetKey(keyBuffer); err != nil {
		return nil, fmt.Errorf("failed to install AEAD key [%w]", err)
	}
	return aead, nil
}

// randomBytes read random bytes from the engine RNG
func (c *codecImpl) randomBytes(length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(c.crypto.GetRNGReader(), buf); err != nil {
		return nil, fmt.Errorf("failed to read %d bytes from RNG [%w]", length, err)
	}
	return buf, nil
}

// seal encrypt plain text under a random nonce, returning the nonce and the cipher text
func (c *codecImpl) seal(
	ctx context.Context, suite algoSuite, key []byte, plainText []byte,
) ([]byte, []byte, error) {
	aead, err := c.newKeyedAEAD(ctx, suite.aead, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup AEAD client [%w]", err)
	}

	nonceBuffer, err := c.crypto.GetRandomBuf(ctx, aead.ExpectedNonceLen())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init AEAD nonce [%w]", err)
	}
	if err := aead.SetNonce(nonceBuffer); err != nil {
		return nil, nil, fmt.Errorf("failed to install AEAD nonce [%w]", err)
	}
	nonce, err := aead.Nonce().GetSlice()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get nonce [%w]", err)
	}
	nonceCopy := make([]byte, aead.ExpectedNonceLen())
	if copied := copy(nonceCopy, nonce); copied != aead.ExpectedNonceLen() {
		return nil, nil, fmt.Errorf(
			"failed to copy nonce %d =/= %d", copied, aead.ExpectedNonceLen(),
		)
	}

	cipherText := make([]byte, aead.ExpectedCipherLen(int64(len(plainText))))
	if err := aead.Seal(ctx, 0, plainText, nil, cipherText); err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt plain text [%w]", err)
	}
	return nonceCopy, cipherText, nil
}

/*
open authenticate and decrypt cipher text

Errors caused by the envelope contents wrap errAEADRejected. Any other error means the
AEAD client could not be prepared, independent of the envelope.
*/
func (c *codecImpl) open(
	ctx context.Context, suite algoSuite, key []byte, nonce []byte, cipherText []byte,
) ([]byte, error) {
	aead, err := c.newKeyedAEAD(ctx, suite.aead, key)
	if err != nil {
		return nil, fmt.Errorf("failed to setup AEAD client [%w]", err)
	}

	if len(nonce) != aead.ExpectedNonceLen() {
		return nil, fmt.Errorf(
			"nonce length %d =/= %d [%w]", len(nonce), aead.ExpectedNonceLen(), errAEADRejected,
		)
	}
	nonceBuffer, err := c.crypto.AllocateSecureCSlice(aead.ExpectedNonceLen())
	if err != nil {
		return nil, fmt.Errorf("failed to init AEAD nonce buffer [%w]", err)
	}
	if err := fillSecureBuffer(nonceBuffer.GetSlice, nonce, aead.ExpectedNonceLen()); err != nil {
		return nil, fmt.Errorf("failed to load AEAD nonce [%w]", err)
	}
	if err := aead.SetNonce(nonceBuffer); err != nil {
		return nil, fmt.Errorf("failed to install AEAD nonce [%w]", err)
	}

	plainLen := aead.ExpectedPlainTextLen(int64(len(cipherText)))
	if plainLen < 0 {
		return nil, fmt.Errorf("cipher text too short [%w]", errAEADRejected)
	}
	plainText := make([]byte, plainLen)
	if err := aead.Unseal(ctx, 0, cipherText, nil, plainText); err != nil {
		return nil, fmt.Errorf("failed to decrypt cipher text [%w] [%w]", errAEADRejected, err)
	}
	return plainText, nil
}

/*
Encrypt encrypt a secret payload under a passphrase

A fresh salt and nonce are generated on every call.

	@param ctx context.Context - execution context
	@param payload models.SecretPayload - the secret to encrypt
	@param passphrase []byte - the vault passphrase; not retained
	@returns the envelope
*/
func (c *codecImpl) Encrypt(
	ctx context.Context, payload models.SecretPayload, passphrase []byte,
) (models.Envelope, error) {
	if len(passphrase) == 0 {
		return models.Envelope{}, fmt.Errorf("empty passphrase [%w]", ErrKeyDerivation)
	}

	if payload.SchemaVersion == 0 {
		payload.SchemaVersion = models.SecretPayloadSchemaLatest
	}
	if err := c.validator.Struct(&payload); err != nil {
		return models.Envelope{}, fmt.Errorf("secret payload is not valid [%w]", err)
	}

	salt, err := c.randomBytes(c.suite.saltLen)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to generate salt [%w]", err)
	}

	key, err := DeriveKey(c.suite.kdf, passphrase, salt)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to derive envelope key [%w]", err)
	}
	defer Zero(key)

	plainText, err := json.Marshal(&payload)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to serialize secret payload [%w]", err)
	}
	defer Zero(plainText)

	nonce, cipherText, err := c.seal(ctx, c.suite, key, plainText)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to seal secret payload [%w]", err)
	}

	return models.Envelope{Algo: c.algo, Salt: salt, IV: nonce, CipherText: cipherText}, nil
}

/*
Decrypt decrypt an envelope with a passphrase

A wrong passphrase and a tampered envelope both return ErrDecryptionFailed.

	@param ctx context.Context - execution context
	@param envelope models.Envelope - the envelope to decrypt
	@param passphrase []byte - the vault passphrase; not retained
	@returns the secret payload
*/
func (c *codecImpl) Decrypt(
	ctx context.Context, envelope models.Envelope, passphrase []byte,
) (models.SecretPayload, error) {
	logTags := c.GetLogTagsForContext(ctx)

	suite, err := getAlgoSuite(envelope.Algo)
	if err != nil {
		return models.SecretPayload{}, err
	}

	if len(passphrase) == 0 {
		return models.SecretPayload{}, fmt.Errorf("empty passphrase [%w]", ErrKeyDerivation)
	}

	// Past this point every failure to authenticate looks the same to the caller.
	key, err := DeriveKey(suite.kdf, passphrase, envelope.Salt)
	if err != nil {
		log.WithFields(logTags).WithField("algo", envelope.Algo).Debug("Envelope rejected")
		return models.SecretPayload{}, ErrDecryptionFailed
	}
	defer Zero(key)

	plainText, err := c.open(ctx, suite, key, envelope.IV, envelope.CipherText)
	if err != nil {
		if errors.Is(err, errAEADRejected) {
			log.WithFields(logTags).WithField("algo", envelope.Algo).Debug("Envelope rejected")
			return models.SecretPayload{}, ErrDecryptionFailed
		}
		log.WithError(err).WithFields(logTags).WithField("algo", envelope.Algo).Error(
			"Unable to prepare envelope decryption",
		)
		return models.SecretPayload{}, fmt.Errorf("failed to prepare envelope decryption [%w]", err)
	}
	defer Zero(plainText)

	var payload models.SecretPayload
	if err := json.Unmarshal(plainText, &payload); err != nil {
		return models.SecretPayload{}, fmt.Errorf(
			"decrypted bytes are not a secret payload [%w] [%w]", ErrMalformedPayload, err,
		)
	}
	if err := c.validator.Struct(&payload); err != nil {
		return models.SecretPayload{}, fmt.Errorf(
			"decrypted secret payload is not valid [%w] [%w]", ErrMalformedPayload, err,
		)
	}

	return payload, nil
}
