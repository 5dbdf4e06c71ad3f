package models

import "time"

// EntryMetadata plaintext, searchable portion of a vault entry
type EntryMetadata struct {
	// Title entry title
	Title string `json:"title" gorm:"column:title;not null" validate:"required,max=256"`
	// Username account username
	Username string `json:"username" gorm:"column:username" validate:"max=256"`
	// URL account URL
	URL string `json:"url" gorm:"column:url" validate:"omitempty,url,max=2048"`
}

// VaultEntry one credential stored in a tenant's vault
type VaultEntry struct {
	// ID entry ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required,uuid_rfc4122"`

	// TenantID the owning tenant / company
	TenantID string `json:"tenant_id" gorm:"column:tenant_id;not null;index" validate:"required"`

	EntryMetadata

	// Algo the envelope encryption scheme
	Algo EnvelopeAlgoENUMType `json:"algo" gorm:"column:algo;not null" validate:"required,envelope_algo"`
	// Salt the envelope KDF salt
	Salt []byte `json:"salt" gorm:"column:salt;not null" validate:"required"`
	// IV the envelope AEAD nonce
	IV []byte `json:"iv" gorm:"column:iv;not null" validate:"required"`
	// CipherText the envelope AEAD output
	CipherText []byte `json:"ciphertext" gorm:"column:ciphertext;not null" validate:"required"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// Envelope fetch the entry's envelope
func (e VaultEntry) Envelope() Envelope {
	return Envelope{Algo: e.Algo, Salt: e.Salt, IV: e.IV, CipherText: e.CipherText}
}

// SetEnvelope replace the entry's envelope
func (e *VaultEntry) SetEnvelope(envelope Envelope) {
	e.Algo = envelope.Algo
	e.Salt = envelope.Salt
	e.IV = envelope.IV
	e.CipherText = envelope.CipherText
}
