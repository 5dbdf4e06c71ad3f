package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/alwitt/credvault/models"
	"github.com/google/uuid"
)

// likePattern build a case-insensitive substring LIKE pattern
func likePattern(fragment string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(fragment)) + "%"
}

/*
DefineNewEntry define new vault entry

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@param metadata models.EntryMetadata - entry plaintext metadata
	@param envelope models.Envelope - the encrypted secret
	@returns entry
*/
func (d *databaseImpl) DefineNewEntry(
	_ context.Context,
	tenantID string,
	metadata models.EntryMetadata,
	envelope models.Envelope,
) (models.VaultEntry, error) {
	newEntry := VaultEntryDBEntry{
		VaultEntry: models.VaultEntry{
			ID:            uuid.NewString(),
			TenantID:      tenantID,
			EntryMetadata: metadata,
		},
	}
	newEntry.SetEnvelope(envelope)

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"new vault entry '%s' is not valid [%w]", metadata.Title, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"new vault entry '%s' failed insert [%w]", metadata.Title, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewVaultEvent(
		tenantID,
		models.VaultEventTypeEntryCreated,
		models.VaultEventEntryRelated{EntryID: newEntry.ID, Title: metadata.Title},
	); err != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"failed to log add new vault entry '%s' audit event [%w]", metadata.Title, err,
		)
	}

	return newEntry.VaultEntry, nil
}

// getEntry find a vault entry by ID within a tenant
func (d *databaseImpl) getEntry(tenantID string, entryID string) (VaultEntryDBEntry, error) {
	var entry VaultEntryDBEntry
	err := d.db.Where("tenant_id = ? AND id = ?", tenantID, entryID).First(&entry).Error
	return entry, err
}

/*
GetEntry fetch a vault entry by ID

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@param entryID string - vault entry ID
	@returns entry
*/
func (d *databaseImpl) GetEntry(
	_ context.Context, tenantID string, entryID string,
) (models.VaultEntry, error) {
	entry, err := d.getEntry(tenantID, entryID)
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("failed to fetch vault entry %s [%w]", entryID, err)
	}
	return entry.VaultEntry, nil
}

/*
ListEntries list vault entries of a tenant

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@param filters VaultEntryQueryFilter - entry listing filter
	@return list of entries
*/
func (d *databaseImpl) ListEntries(
	_ context.Context, tenantID string, filters VaultEntryQueryFilter,
) ([]models.VaultEntry, error) {
	query := d.db.Model(&VaultEntryDBEntry{}).Where("tenant_id = ?", tenantID)

	if filters.TitleContains != nil {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(*filters.TitleContains))
	}
	if filters.UsernameContains != nil {
		query = query.Where(
			`LOWER(username) LIKE ? ESCAPE '\'`, likePattern(*filters.UsernameContains),
		)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("created_at desc").Order("id")

	var entries []VaultEntryDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list vault entries [%w]", tmp.Error)
	}

	result := []models.VaultEntry{}
	for _, entry := range entries {
		result = append(result, entry.VaultEntry)
	}

	return result, nil
}

/*
CountEntries count the vault entries of a tenant

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@return number of entries
*/
func (d *databaseImpl) CountEntries(_ context.Context, tenantID string) (int64, error) {
	var count int64
	if tmp := d.db.Model(&VaultEntryDBEntry{}).
		Where("tenant_id = ?", tenantID).
		Count(&count); tmp.Error != nil {
		return 0, fmt.Errorf("failed to count vault entries [%w]", tmp.Error)
	}
	return count, nil
}

/*
GetSampleEnvelope fetch one existing envelope of a tenant

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@return an envelope, or nil if the tenant has no entries
*/
func (d *databaseImpl) GetSampleEnvelope(
	_ context.Context, tenantID string,
) (*models.Envelope, error) {
	var entries []VaultEntryDBEntry
	if tmp := d.db.Where("tenant_id = ?", tenantID).
		Order("created_at").
		Order("id").
		Limit(1).
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to read sample vault entry [%w]", tmp.Error)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	envelope := entries[0].Envelope()
	return &envelope, nil
}

/*
UpdateEntry overwrite a vault entry's metadata and envelope

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@param entryID string - vault entry ID
	@param metadata models.EntryMetadata - entry plaintext metadata
	@param envelope models.Envelope - the re-encrypted secret
	@returns updated entry
*/
func (d *databaseImpl) UpdateEntry(
	_ context.Context,
	tenantID string,
	entryID string,
	metadata models.EntryMetadata,
	envelope models.Envelope,
) (models.VaultEntry, error) {
	entry, err := d.getEntry(tenantID, entryID)
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("failed to fetch vault entry %s [%w]", entryID, err)
	}

	entry.EntryMetadata = metadata
	entry.SetEnvelope(envelope)

	if err := d.validator.Struct(&entry); err != nil {
		return models.VaultEntry{}, fmt.Errorf("updated vault entry %s is not valid [%w]", entryID, err)
	}

	// Every column is written so cleared metadata fields are persisted too
	if tmp := d.db.Model(&entry).
		Select("title", "username", "url", "algo", "salt", "iv", "ciphertext", "updated_at").
		Updates(&entry); tmp.Error != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"vault entry %s update failed [%w]", entryID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewVaultEvent(
		tenantID,
		models.VaultEventTypeEntryUpdated,
		models.VaultEventEntryRelated{EntryID: entry.ID, Title: metadata.Title},
	); err != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"failed to log update vault entry %s audit event [%w]", entryID, err,
		)
	}

	return entry.VaultEntry, nil
}

/*
DeleteEntry delete a vault entry

	@param ctx context.Context - execution context
	@param tenantID string - the owning tenant
	@param entryID string - vault entry ID
*/
func (d *databaseImpl) DeleteEntry(_ context.Context, tenantID string, entryID string) error {
	entry, err := d.getEntry(tenantID, entryID)
	if err != nil {
		return fmt.Errorf("failed to fetch vault entry %s [%w]", entryID, err)
	}

	if tmp := d.db.Delete(&entry); tmp.Error != nil {
		return fmt.Errorf("failed to delete vault entry %s [%w]", entryID, tmp.Error)
	}

	// Record this event
	if _, err := d.defineNewVaultEvent(
		tenantID,
		models.VaultEventTypeEntryDeleted,
		models.VaultEventEntryRelated{EntryID: entry.ID, Title: entry.Title},
	); err != nil {
		return fmt.Errorf(
			"failed to log delete vault entry '%s' audit event [%w]", entry.Title, err,
		)
	}

	return nil
}
