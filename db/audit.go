package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alwitt/credvault/models"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

// defineNewVaultEvent record a new vault event
func (d *databaseImpl) defineNewVaultEvent(
	tenantID string, eventType models.VaultEventTypeENUMType, metadata interface{},
) (models.VaultEventAudit, error) {
	newEntry := VaultEventAuditDBEntry{
		VaultEventAudit: models.VaultEventAudit{
			ID: ulid.Make().String(), TenantID: tenantID, EventType: eventType,
		},
	}

	if metadata != nil {
		if err := d.validator.Struct(metadata); err != nil {
			return models.VaultEventAudit{}, fmt.Errorf(
				"new vault event '%s' metadata entry is not valid [%w]", eventType, err,
			)
		}

		metadataStr, err := json.Marshal(metadata)
		if err != nil {
			return models.VaultEventAudit{}, fmt.Errorf(
				"new vault event '%s' metadata serialization failed [%w]", eventType, err,
			)
		}
		newEntry.Metadata = datatypes.JSON(metadataStr)
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.VaultEventAudit{}, fmt.Errorf(
			"new vault event '%s' entry is not valid [%w]", eventType, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.VaultEventAudit{}, fmt.Errorf(
			"new vault event '%s' insert failed [%w]", eventType, tmp.Error,
		)
	}

	return newEntry.VaultEventAudit, nil
}

/*
RecordUnlockEvent record the outcome of a vault unlock attempt

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param accepted bool - whether the unlock was accepted
	@param optimistic bool - whether there was no envelope to validate against
	@return the audit event
*/
func (d *databaseImpl) RecordUnlockEvent(
	_ context.Context, tenantID string, accepted bool, optimistic bool,
) (models.VaultEventAudit, error) {
	eventType := models.VaultEventTypeUnlockRejected
	if accepted {
		eventType = models.VaultEventTypeUnlocked
	}
	return d.defineNewVaultEvent(
		tenantID, eventType, models.VaultEventUnlockRelated{Optimistic: optimistic},
	)
}

/*
ListVaultEvents list captured vault events of a tenant

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param filters VaultEventQueryFilter - entry listing filter
	@return list of vault events
*/
func (d *databaseImpl) ListVaultEvents(
	_ context.Context, tenantID string, filters VaultEventQueryFilter,
) ([]models.VaultEventAudit, error) {
	query := d.db.Model(&VaultEventAuditDBEntry{}).Where("tenant_id = ?", tenantID)

	if len(filters.EventTypes) > 0 {
		query = query.Where("type in ?", filters.EventTypes)
	}

	if filters.EventsAfter != nil {
		query = query.Where("created_at >= ?", *filters.EventsAfter)
	}
	if filters.EventsBefore != nil {
		query = query.Where("created_at <= ?", *filters.EventsBefore)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("created_at").Order("id")

	var entries []VaultEventAuditDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list captured vault events [%w]", tmp.Error)
	}

	result := []models.VaultEventAudit{}
	for _, entry := range entries {
		result = append(result, entry.VaultEventAudit)
	}

	return result, nil
}
