package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestDBUnlockEvents verifies unlock attempts are captured per tenant, and that the
// event listing filters work.
func TestDBUnlockEvents(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := prepareTestDB(t)
	defer func() {
		assert.Nil(uut.Close())
	}()

	tenant1 := uuid.NewString()
	tenant2 := uuid.NewString()

	start := time.Now().Add(-time.Second)

	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		if _, err := dbClient.RecordUnlockEvent(ctx, tenant1, true, true); err != nil {
			return err
		}
		if _, err := dbClient.RecordUnlockEvent(ctx, tenant1, false, false); err != nil {
			return err
		}
		if _, err := dbClient.RecordUnlockEvent(ctx, tenant2, true, false); err != nil {
			return err
		}
		return nil
	})
	assert.Nil(err)

	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))

	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		// Case 0: everything for tenant 1
		events, err := dbClient.ListVaultEvents(ctx, tenant1, db.VaultEventQueryFilter{})
		assert.Nil(err)
		assert.Len(events, 2)
		assert.Equal(models.VaultEventTypeUnlocked, events[0].EventType)
		assert.Equal(models.VaultEventTypeUnlockRejected, events[1].EventType)
		parsed, err := events[0].ParseMetadata(validate)
		assert.Nil(err)
		assert.Equal(models.VaultEventUnlockRelated{Optimistic: true}, parsed)

		// Case 1: by type
		events, err = dbClient.ListVaultEvents(ctx, tenant1, db.VaultEventQueryFilter{
			EventTypes: []models.VaultEventTypeENUMType{models.VaultEventTypeUnlockRejected},
		})
		assert.Nil(err)
		assert.Len(events, 1)

		// Case 2: tenant 2 only sees its own
		events, err = dbClient.ListVaultEvents(ctx, tenant2, db.VaultEventQueryFilter{})
		assert.Nil(err)
		assert.Len(events, 1)
		assert.Equal(tenant2, events[0].TenantID)

		// Case 3: time window
		after := start
		before := start.Add(-time.Hour)
		events, err = dbClient.ListVaultEvents(ctx, tenant1, db.VaultEventQueryFilter{
			EventsAfter: &after,
		})
		assert.Nil(err)
		assert.Len(events, 2)
		events, err = dbClient.ListVaultEvents(ctx, tenant1, db.VaultEventQueryFilter{
			EventsBefore: &before,
		})
		assert.Nil(err)
		assert.Empty(events)
		return nil
	})
	assert.Nil(err)
}
