package models

// SecretPayloadSchemaV1 first secret payload schema
const SecretPayloadSchemaV1 = 1

// SecretPayloadSchemaLatest newest secret payload schema this build understands
const SecretPayloadSchemaLatest = SecretPayloadSchemaV1

// SecretPayload the sensitive portion of a vault entry
//
// It only ever exists in memory; the persisted form is an Envelope.
type SecretPayload struct {
	// SchemaVersion payload schema version
	SchemaVersion int `json:"v" validate:"required,min=1,secret_schema"`
	// Password the stored password
	Password *string `json:"password,omitempty"`
	// Notes free-form notes
	Notes *string `json:"notes,omitempty"`
}

// NewSecretPayload define a secret payload at the latest schema version
//
// Empty strings are treated as "not set".
func NewSecretPayload(password, notes string) SecretPayload {
	payload := SecretPayload{SchemaVersion: SecretPayloadSchemaLatest}
	if password != "" {
		payload.Password = &password
	}
	if notes != "" {
		payload.Notes = &notes
	}
	return payload
}

// GetPassword return the password, or empty string if not set
func (p SecretPayload) GetPassword() string {
	if p.Password == nil {
		return ""
	}
	return *p.Password
}

// GetNotes return the notes, or empty string if not set
func (p SecretPayload) GetNotes() string {
	if p.Notes == nil {
		return ""
	}
	return *p.Notes
}
