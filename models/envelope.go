// Package models - system data models
package models

// EnvelopeAlgoENUMType envelope encryption scheme ENUM type
//
// One value names the complete scheme: key derivation function, its parameters, and
// the AEAD cipher. Parameters never change under an existing value; a new set of
// parameters gets a new value.
type EnvelopeAlgoENUMType string

const (
	// EnvelopeAlgoArgon2idXChaCha20Poly1305 Argon2id KDF with XChaCha20-Poly1305
	EnvelopeAlgoArgon2idXChaCha20Poly1305 EnvelopeAlgoENUMType = "v1-argon2id-xchacha20poly1305"

	// EnvelopeAlgoArgon2idAES256GCM Argon2id KDF with AES-256-GCM
	EnvelopeAlgoArgon2idAES256GCM EnvelopeAlgoENUMType = "v1-argon2id-aes256gcm"

	// EnvelopeAlgoPBKDF2SHA256AES256GCM PBKDF2-HMAC-SHA-256 KDF with AES-256-GCM
	//
	// Matches what a browser Web Crypto client is able to produce.
	EnvelopeAlgoPBKDF2SHA256AES256GCM EnvelopeAlgoENUMType = "v1-pbkdf2sha256-aes256gcm"
)

// DefaultEnvelopeAlgo scheme used when the caller does not pick one
const DefaultEnvelopeAlgo = EnvelopeAlgoArgon2idXChaCha20Poly1305

// Envelope the at-rest encrypted form of a secret payload
//
// An envelope is self-contained: together with the passphrase it holds everything
// needed for decryption.
type Envelope struct {
	// Algo the encryption scheme
	Algo EnvelopeAlgoENUMType `json:"algo" validate:"required,envelope_algo"`
	// Salt the KDF salt, unique per encryption call
	Salt []byte `json:"salt" validate:"required"`
	// IV the AEAD nonce, unique per encryption call
	IV []byte `json:"iv" validate:"required"`
	// CipherText the AEAD output, authentication tag included
	CipherText []byte `json:"ciphertext" validate:"required"`
}

// Clone deep copy of the envelope
func (e Envelope) Clone() Envelope {
	return Envelope{
		Algo:       e.Algo,
		Salt:       append([]byte(nil), e.Salt...),
		IV:         append([]byte(nil), e.IV...),
		CipherText: append([]byte(nil), e.CipherText...),
	}
}
