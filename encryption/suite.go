package encryption

import (
	"fmt"

	"github.com/alwitt/credvault/models"
)

// aeadTypeENUMType AEAD cipher ENUM type
type aeadTypeENUMType string

const (
	// aeadXChaCha20Poly1305 XChaCha20-Poly1305 via the libsodium backed engine
	aeadXChaCha20Poly1305 aeadTypeENUMType = "xchacha20poly1305"
	// aeadAES256GCM AES-256-GCM via the libsodium backed engine; needs hardware AES
	aeadAES256GCM aeadTypeENUMType = "aes256gcm"
)

const (
	envelopeSaltLen = 16
	symmetricKeyLen = 32
)

// algoSuite the complete parameter set behind one envelope algorithm ID
type algoSuite struct {
	kdf     KDFParams
	saltLen int
	aead    aeadTypeENUMType
}

var argon2idV1 = KDFParams{
	Type:        KDFTypeArgon2id,
	Iterations:  3,
	MemoryKiB:   64 * 1024,
	Parallelism: 4,
	KeyLen:      symmetricKeyLen,
}

var pbkdf2SHA256V1 = KDFParams{
	Type:       KDFTypePBKDF2SHA256,
	Iterations: 600000,
	KeyLen:     symmetricKeyLen,
}

// Parameters under an existing ID must never change, or old envelopes become
// unreadable.
var algoSuites = map[models.EnvelopeAlgoENUMType]algoSuite{
	models.EnvelopeAlgoArgon2idXChaCha20Poly1305: {
		kdf: argon2idV1, saltLen: envelopeSaltLen, aead: aeadXChaCha20Poly1305,
	},
	models.EnvelopeAlgoArgon2idAES256GCM: {
		kdf: argon2idV1, saltLen: envelopeSaltLen, aead: aeadAES256GCM,
	},
	models.EnvelopeAlgoPBKDF2SHA256AES256GCM: {
		kdf: pbkdf2SHA256V1, saltLen: envelopeSaltLen, aead: aeadAES256GCM,
	},
}

// getAlgoSuite fetch the parameter set of an envelope algorithm
func getAlgoSuite(algo models.EnvelopeAlgoENUMType) (algoSuite, error) {
	suite, ok := algoSuites[algo]
	if !ok {
		return algoSuite{}, fmt.Errorf("envelope algorithm '%s' [%w]", algo, ErrUnsupportedAlgo)
	}
	return suite, nil
}

// KDFParamsForAlgo fetch the key derivation parameters of an envelope algorithm
func KDFParamsForAlgo(algo models.EnvelopeAlgoENUMType) (KDFParams, error) {
	suite, err := getAlgoSuite(algo)
	if err != nil {
		return KDFParams{}, err
	}
	return suite.kdf, nil
}
