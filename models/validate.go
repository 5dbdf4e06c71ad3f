package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

/*
RegisterWithValidator register with the validator this custom validation support

	@param v *validator.Validate - the validator to register against
	@return whether successful
*/
func RegisterWithValidator(v *validator.Validate) error {
	if err := v.RegisterValidation(
		"envelope_algo", validateEnvelopeAlgoType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"vault_event_type", validateVaultEventType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"secret_schema", validateSecretSchemaVersion,
	); err != nil {
		return err
	}

	return nil
}

// IsSupportedEnvelopeAlgo whether the envelope scheme is known
func IsSupportedEnvelopeAlgo(algo EnvelopeAlgoENUMType) bool {
	switch algo {
	case EnvelopeAlgoArgon2idXChaCha20Poly1305:
		fallthrough
	case EnvelopeAlgoArgon2idAES256GCM:
		fallthrough
	case EnvelopeAlgoPBKDF2SHA256AES256GCM:
		return true
	}
	return false
}

func validateEnvelopeAlgoType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return IsSupportedEnvelopeAlgo(EnvelopeAlgoENUMType(fl.Field().String()))
}

func validateVaultEventType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch VaultEventTypeENUMType(fl.Field().String()) {
	case VaultEventTypeEntryCreated:
		fallthrough
	case VaultEventTypeEntryUpdated:
		fallthrough
	case VaultEventTypeEntryDeleted:
		fallthrough
	case VaultEventTypeUnlocked:
		fallthrough
	case VaultEventTypeUnlockRejected:
		return true
	}
	return false
}

func validateSecretSchemaVersion(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Int {
		return false
	}
	version := fl.Field().Int()
	return version >= SecretPayloadSchemaV1 && version <= SecretPayloadSchemaLatest
}
