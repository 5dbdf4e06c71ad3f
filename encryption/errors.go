package encryption

import "errors"

var (
	// ErrKeyDerivation invalid key derivation inputs, e.g. an empty passphrase
	ErrKeyDerivation = errors.New("key derivation rejected")

	// ErrDecryptionFailed envelope did not authenticate
	//
	// Covers both a wrong passphrase and a tampered or corrupted envelope; the two are
	// not distinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedPayload envelope authenticated, but the plain text is not a valid
	// secret payload
	ErrMalformedPayload = errors.New("malformed secret payload")

	// ErrUnsupportedAlgo envelope names an unknown encryption scheme
	ErrUnsupportedAlgo = errors.New("unsupported envelope algorithm")
)
