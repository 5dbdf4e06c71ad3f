// Package db - vault entry persistence layer
//
// Every vault entry operation is scoped to one tenant; an entry is never visible
// through another tenant's ID.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/alwitt/credvault/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CommonListEntryQueryFilter common query filter when listing data entries
type CommonListEntryQueryFilter struct {
	Limit  *int
	Offset *int
}

// VaultEventQueryFilter vault audit event query filter conditions
type VaultEventQueryFilter struct {
	CommonListEntryQueryFilter
	// EventTypes the specific event types to query for
	EventTypes []models.VaultEventTypeENUMType
	// EventsAfter filter for events after this timestamp
	EventsAfter *time.Time
	// EventsBefore filter for events before this timestamp
	EventsBefore *time.Time
}

// VaultEntryQueryFilter vault entry query filter conditions
type VaultEntryQueryFilter struct {
	CommonListEntryQueryFilter
	// TitleContains case-insensitive substring match on the title
	TitleContains *string
	// UsernameContains case-insensitive substring match on the username
	UsernameContains *string
}

// Database the database handle to interacting with the vault entry store
type Database interface {
	// ------------------------------------------------------------------------------------
	// Vault audit events

	/*
		ListVaultEvents list captured vault events of a tenant

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param filters VaultEventQueryFilter - entry listing filter
			@return list of vault events
	*/
	ListVaultEvents(
		ctx context.Context, tenantID string, filters VaultEventQueryFilter,
	) ([]models.VaultEventAudit, error)

	/*
		RecordUnlockEvent record the outcome of a vault unlock attempt

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param accepted bool - whether the unlock was accepted
			@param optimistic bool - whether there was no envelope to validate against
			@return the audit event
	*/
	RecordUnlockEvent(
		ctx context.Context, tenantID string, accepted bool, optimistic bool,
	) (models.VaultEventAudit, error)

	// ------------------------------------------------------------------------------------
	// Vault entries

	/*
		DefineNewEntry define new vault entry

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@param metadata models.EntryMetadata - entry plaintext metadata
			@param envelope models.Envelope - the encrypted secret
			@returns entry
	*/
	DefineNewEntry(
		ctx context.Context,
		tenantID string,
		metadata models.EntryMetadata,
		envelope models.Envelope,
	) (models.VaultEntry, error)

	/*
		GetEntry fetch a vault entry by ID

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@param entryID string - vault entry ID
			@returns entry
	*/
	GetEntry(ctx context.Context, tenantID string, entryID string) (models.VaultEntry, error)

	/*
		ListEntries list vault entries of a tenant

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@param filters VaultEntryQueryFilter - entry listing filter
			@return list of entries
	*/
	ListEntries(
		ctx context.Context, tenantID string, filters VaultEntryQueryFilter,
	) ([]models.VaultEntry, error)

	/*
		CountEntries count the vault entries of a tenant

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@return number of entries
	*/
	CountEntries(ctx context.Context, tenantID string) (int64, error)

	/*
		GetSampleEnvelope fetch one existing envelope of a tenant

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@return an envelope, or nil if the tenant has no entries
	*/
	GetSampleEnvelope(ctx context.Context, tenantID string) (*models.Envelope, error)

	/*
		UpdateEntry overwrite a vault entry's metadata and envelope

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@param entryID string - vault entry ID
			@param metadata models.EntryMetadata - entry plaintext metadata
			@param envelope models.Envelope - the re-encrypted secret
			@returns updated entry
	*/
	UpdateEntry(
		ctx context.Context,
		tenantID string,
		entryID string,
		metadata models.EntryMetadata,
		envelope models.Envelope,
	) (models.VaultEntry, error)

	/*
		DeleteEntry delete a vault entry

			@param ctx context.Context - execution context
			@param tenantID string - the owning tenant
			@param entryID string - vault entry ID
	*/
	DeleteEntry(ctx context.Context, tenantID string, entryID string) error
}

// databaseImpl implements Database
type databaseImpl struct {
	goutils.Component
	db        *gorm.DB
	validator *validator.Validate
}

// newDatabase define a new database client
func newDatabase(_ context.Context, sqlClient *gorm.DB) (Database, error) {
	logTags := log.Fields{"package": "credvault", "module": "db", "component": "db-client"}

	instance := &databaseImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db:        sqlClient,
		validator: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}
