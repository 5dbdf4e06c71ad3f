package encryption

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDFTypeENUMType key derivation function ENUM type
type KDFTypeENUMType string

const (
	// KDFTypeArgon2id Argon2id
	KDFTypeArgon2id KDFTypeENUMType = "argon2id"
	// KDFTypePBKDF2SHA256 PBKDF2 with HMAC-SHA-256
	KDFTypePBKDF2SHA256 KDFTypeENUMType = "pbkdf2-sha256"
)

// KDFParams key derivation parameters
type KDFParams struct {
	// Type the KDF
	Type KDFTypeENUMType
	// Iterations Argon2id time cost, or PBKDF2 iteration count
	Iterations uint32
	// MemoryKiB Argon2id memory cost in KiB
	MemoryKiB uint32
	// Parallelism Argon2id lanes
	Parallelism uint8
	// KeyLen derived key length in bytes
	KeyLen uint32
}

/*
DeriveKey derive a symmetric key from a passphrase and salt

The derivation is deterministic: the same parameters, passphrase, and salt always
produce the same key. The caller owns the returned key and should Zero it once used.

	@param params KDFParams - key derivation parameters
	@param passphrase []byte - the passphrase; not modified
	@param salt []byte - the salt
	@returns the derived key
*/
func DeriveKey(params KDFParams, passphrase []byte, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("empty passphrase [%w]", ErrKeyDerivation)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("empty salt [%w]", ErrKeyDerivation)
	}
	if params.KeyLen == 0 || params.Iterations == 0 {
		return nil, fmt.Errorf("incomplete KDF parameters [%w]", ErrKeyDerivation)
	}

	switch params.Type {
	case KDFTypeArgon2id:
		if params.MemoryKiB == 0 || params.Parallelism == 0 {
			return nil, fmt.Errorf("incomplete argon2id parameters [%w]", ErrKeyDerivation)
		}
		return argon2.IDKey(
			passphrase, salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.KeyLen,
		), nil

	case KDFTypePBKDF2SHA256:
		return pbkdf2.Key(
			passphrase, salt, int(params.Iterations), int(params.KeyLen), sha256.New,
		), nil
	}

	return nil, fmt.Errorf("unknown KDF '%s' [%w]", params.Type, ErrKeyDerivation)
}

// Zero overwrite a buffer with zeros
//
// Best effort only: the runtime may already hold other copies.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
