// Package encryption - vault envelope encryption engine
package encryption

import (
	"context"
	"fmt"

	cgoCrypto "github.com/alwitt/cgoutils/crypto"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

/*
VaultCodec converts secret payloads to and from self-contained envelopes.

Every call is independent: the codec keeps no per-passphrase or per-envelope state, so
one instance can serve concurrent calls. The passphrase is supplied to each call and
never retained.
*/
type VaultCodec interface {
	/*
		Encrypt encrypt a secret payload under a passphrase

		A fresh salt and nonce are generated on every call.

			@param ctx context.Context - execution context
			@param payload models.SecretPayload - the secret to encrypt
			@param passphrase []byte - the vault passphrase; not retained
			@returns the envelope
	*/
	Encrypt(
		ctx context.Context, payload models.SecretPayload, passphrase []byte,
	) (models.Envelope, error)

	/*
		Decrypt decrypt an envelope with a passphrase

		A wrong passphrase and a tampered envelope both return ErrDecryptionFailed.

			@param ctx context.Context - execution context
			@param envelope models.Envelope - the envelope to decrypt
			@param passphrase []byte - the vault passphrase; not retained
			@returns the secret payload
	*/
	Decrypt(
		ctx context.Context, envelope models.Envelope, passphrase []byte,
	) (models.SecretPayload, error)
}

// codecImpl implements VaultCodec
type codecImpl struct {
	goutils.Component

	validator *validator.Validate

	crypto cgoCrypto.Engine

	getAEAD func(ctx context.Context, aeadType aeadTypeENUMType) (cgoCrypto.AEAD, error)

	algo  models.EnvelopeAlgoENUMType
	suite algoSuite
}

// CodecParams vault codec init parameters
type CodecParams struct {
	// DefaultAlgo the encryption scheme for new envelopes. Decryption accepts every
	// supported scheme regardless.
	DefaultAlgo models.EnvelopeAlgoENUMType `validate:"omitempty,envelope_algo"`
}

/*
NewVaultCodec define new vault codec

	@param params CodecParams - codec parameters
	@returns codec instance
*/
func NewVaultCodec(params CodecParams) (VaultCodec, error) {
	// Prepare core crypto engine
	engine, err := cgoCrypto.NewEngine(log.Fields{
		"package": "cgoutils", "module": "crypto", "component": "crypto-engine",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare core cryptography [%w]", err)
	}

	logTags := log.Fields{"module": "encryption", "component": "vault-codec"}

	instance := &codecImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		validator: validator.New(),
		crypto:    engine,
	}
	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	if err := instance.validator.Struct(&params); err != nil {
		return nil, fmt.Errorf("invalid codec init parameters [%w]", err)
	}

	instance.algo = params.DefaultAlgo
	if instance.algo == "" {
		instance.algo = models.DefaultEnvelopeAlgo
	}
	if instance.suite, err = getAlgoSuite(instance.algo); err != nil {
		return nil, err
	}
	instance.getAEAD = instance.engineAEAD

	// The host must support the default cipher
	if _, err := instance.getAEAD(context.Background(), instance.suite.aead); err != nil {
		return nil, fmt.Errorf(
			"envelope algorithm '%s' is not available on this host [%w]", instance.algo, err,
		)
	}

	return instance, nil
}
