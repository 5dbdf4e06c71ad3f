package vault

import "errors"

var (
	// ErrSessionClosed session was locked or has expired
	ErrSessionClosed = errors.New("vault session closed")

	// ErrPassphraseMismatch an optimistic session's passphrase does not open the vault
	// entries written since it was unlocked
	ErrPassphraseMismatch = errors.New("passphrase does not match existing vault entries")

	// ErrUnlockRejected passphrase did not open the vault
	ErrUnlockRejected = errors.New("vault unlock rejected")
)
