package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// VaultEventTypeENUMType vault event type ENUM value type
type VaultEventTypeENUMType string

const (
	// VaultEventTypeEntryCreated new vault entry is added
	VaultEventTypeEntryCreated VaultEventTypeENUMType = "ENTRY_CREATED"

	// VaultEventTypeEntryUpdated vault entry is re-encrypted and overwritten
	VaultEventTypeEntryUpdated VaultEventTypeENUMType = "ENTRY_UPDATED"

	// VaultEventTypeEntryDeleted vault entry is deleted
	VaultEventTypeEntryDeleted VaultEventTypeENUMType = "ENTRY_DELETED"

	// VaultEventTypeUnlocked vault unlock was accepted
	VaultEventTypeUnlocked VaultEventTypeENUMType = "VAULT_UNLOCKED"

	// VaultEventTypeUnlockRejected vault unlock was rejected
	VaultEventTypeUnlockRejected VaultEventTypeENUMType = "VAULT_UNLOCK_REJECTED"
)

// VaultEventAudit recording of events occurring within a tenant's vault
//
// Metadata never carries secret material.
type VaultEventAudit struct {
	// ID audit entry ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required"`
	// TenantID the tenant whose vault this event relates to
	TenantID string `json:"tenant_id" gorm:"column:tenant_id;not null;index" validate:"required"`
	// EventType vault event type
	EventType VaultEventTypeENUMType `json:"type" gorm:"column:type;not null" validate:"required,vault_event_type"`
	// Metadata a metadata relating to the event
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"column:metadata;default:null"`
	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseMetadata parse the metadata based on the event type
func (a VaultEventAudit) ParseMetadata(validator *validator.Validate) (interface{}, error) {
	switch a.EventType {
	// Vault entry related events
	case VaultEventTypeEntryCreated:
		fallthrough
	case VaultEventTypeEntryUpdated:
		fallthrough
	case VaultEventTypeEntryDeleted:
		var parsed VaultEventEntryRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("vault event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	// Unlock related events
	case VaultEventTypeUnlocked:
		fallthrough
	case VaultEventTypeUnlockRejected:
		var parsed VaultEventUnlockRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("vault event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)
	}
	return nil, nil
}

// VaultEventEntryRelated vault event metadata related to a vault entry
type VaultEventEntryRelated struct {
	// EntryID the vault entry ID
	EntryID string `json:"entry_id" validate:"required,uuid_rfc4122"`
	// Title the vault entry title
	Title string `json:"title" validate:"required"`
}

// VaultEventUnlockRelated vault event metadata related to an unlock attempt
type VaultEventUnlockRelated struct {
	// Optimistic whether the vault held no envelope to validate against
	Optimistic bool `json:"optimistic"`
}
