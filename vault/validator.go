// Package vault - tenant vault unlock and credential entry operations
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
)

// UnlockValidator decides whether a passphrase opens a tenant's vault
type UnlockValidator interface {
	/*
		Unlock test a passphrase against one existing envelope of the vault

		With no envelope to test against, the passphrase is accepted. A passphrase which
		fails to decrypt the sample is rejected without an error; an error means the check
		itself could not be carried out.

			@param ctx context.Context - execution context
			@param passphrase []byte - candidate passphrase; not retained
			@param sample *models.Envelope - an existing envelope, or nil if there is none
			@returns whether the passphrase is accepted
	*/
	Unlock(ctx context.Context, passphrase []byte, sample *models.Envelope) (bool, error)
}

// unlockValidatorImpl implements UnlockValidator
type unlockValidatorImpl struct {
	goutils.Component
	codec encryption.VaultCodec
}

/*
NewUnlockValidator define new unlock validator

	@param codec encryption.VaultCodec - codec used to test the passphrase
	@returns validator instance
*/
func NewUnlockValidator(codec encryption.VaultCodec) UnlockValidator {
	logTags := log.Fields{"module": "vault", "component": "unlock-validator"}
	return &unlockValidatorImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		codec: codec,
	}
}

/*
Unlock test a passphrase against one existing envelope of the vault

With no envelope to test against, the passphrase is accepted. A passphrase which fails
to decrypt the sample is rejected without an error; an error means the check itself
could not be carried out.

	@param ctx context.Context - execution context
	@param passphrase []byte - candidate passphrase; not retained
	@param sample *models.Envelope - an existing envelope, or nil if there is none
	@returns whether the passphrase is accepted
*/
func (v *unlockValidatorImpl) Unlock(
	ctx context.Context, passphrase []byte, sample *models.Envelope,
) (bool, error) {
	logTags := v.GetLogTagsForContext(ctx)

	if len(passphrase) == 0 {
		return false, fmt.Errorf("empty passphrase [%w]", encryption.ErrKeyDerivation)
	}

	if sample == nil {
		log.WithFields(logTags).Debug("No envelope to validate against, accepting passphrase")
		return true, nil
	}

	if _, err := v.codec.Decrypt(ctx, *sample, passphrase); err != nil {
		if errors.Is(err, encryption.ErrDecryptionFailed) {
			log.WithFields(logTags).Debug("Passphrase rejected")
			return false, nil
		}
		return false, fmt.Errorf("unlock validation failed [%w]", err)
	}

	return true, nil
}
