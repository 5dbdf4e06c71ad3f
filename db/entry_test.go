package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// prepareTestDB create a temporary sqlite DB with tables defined
func prepareTestDB(t *testing.T) db.Client {
	testDB := fmt.Sprintf("/tmp/credvault_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error, db.ConnectionParams{})
	assert.Nil(t, err)

	assert.Nil(t, uut.RunSQLInTransaction(context.Background(), db.DefineTables))
	return uut
}

// testEnvelope build an envelope shaped value; the DB layer never looks inside it
func testEnvelope() models.Envelope {
	return models.Envelope{
		Algo:       models.DefaultEnvelopeAlgo,
		Salt:       []byte(uuid.NewString()),
		IV:         []byte(uuid.NewString()),
		CipherText: []byte(uuid.NewString()),
	}
}

// TestDBVaultEntryLifecycle verifies the behavior of `Database.DefineNewEntry`,
// `Database.GetEntry`, `Database.UpdateEntry`, and `Database.DeleteEntry`, along with
// the audit events each one records.
func TestDBVaultEntryLifecycle(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := prepareTestDB(t)
	defer func() {
		assert.Nil(uut.Close())
	}()

	tenantID := uuid.NewString()

	// -------------------------------------------------------------------------
	// 1 – Define a new entry
	meta1 := models.EntryMetadata{
		Title: "Bank Portal", Username: "acct1", URL: "https://bank.example.com/login",
	}
	envelope1 := testEnvelope()
	var entry1 models.VaultEntry
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		var err error
		entry1, err = dbClient.DefineNewEntry(ctx, tenantID, meta1, envelope1)
		return err
	})
	assert.Nil(err)
	assert.NotEmpty(entry1.ID)
	assert.Equal(tenantID, entry1.TenantID)

	// 2 – Read it back
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		entry, err := dbClient.GetEntry(ctx, tenantID, entry1.ID)
		if err != nil {
			return err
		}
		assert.Equal(meta1, entry.EntryMetadata)
		assert.Equal(envelope1, entry.Envelope())
		assert.False(entry.CreatedAt.IsZero())
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 3 – Overwrite with a new envelope and cleared optional metadata
	meta2 := models.EntryMetadata{Title: "Bank Portal (new)"}
	envelope2 := testEnvelope()
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.UpdateEntry(ctx, tenantID, entry1.ID, meta2, envelope2)
		return err
	})
	assert.Nil(err)

	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		entry, err := dbClient.GetEntry(ctx, tenantID, entry1.ID)
		if err != nil {
			return err
		}
		assert.Equal(meta2, entry.EntryMetadata)
		assert.Equal(envelope2, entry.Envelope())
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 4 – Invalid entries are refused
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.DefineNewEntry(ctx, tenantID, models.EntryMetadata{}, testEnvelope())
		return err
	})
	assert.Error(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		badEnvelope := testEnvelope()
		badEnvelope.Algo = "v0-rot13"
		_, err := dbClient.DefineNewEntry(
			ctx, tenantID, models.EntryMetadata{Title: "bad"}, badEnvelope,
		)
		return err
	})
	assert.Error(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.DefineNewEntry(
			ctx, tenantID, models.EntryMetadata{Title: "bad", URL: "not a url"}, testEnvelope(),
		)
		return err
	})
	assert.Error(err)

	// -------------------------------------------------------------------------
	// 5 – Delete the entry
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		return dbClient.DeleteEntry(ctx, tenantID, entry1.ID)
	})
	assert.Nil(err)

	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetEntry(ctx, tenantID, entry1.ID)
		return err
	})
	assert.Error(err)

	// -------------------------------------------------------------------------
	// 6 – Audit trail: created, updated, deleted
	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListVaultEvents(ctx, tenantID, db.VaultEventQueryFilter{})
		if err != nil {
			return err
		}
		assert.Len(events, 3)
		expected := []models.VaultEventTypeENUMType{
			models.VaultEventTypeEntryCreated,
			models.VaultEventTypeEntryUpdated,
			models.VaultEventTypeEntryDeleted,
		}
		for idx, event := range events {
			assert.Equal(expected[idx], event.EventType)
			parsed, err := event.ParseMetadata(validate)
			assert.Nil(err)
			metadata, ok := parsed.(models.VaultEventEntryRelated)
			assert.True(ok)
			assert.Equal(entry1.ID, metadata.EntryID)
		}
		return nil
	})
	assert.Nil(err)
}

// TestDBVaultEntryTenantIsolation verifies an entry is never reachable through another
// tenant's ID.
func TestDBVaultEntryTenantIsolation(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := prepareTestDB(t)
	defer func() {
		assert.Nil(uut.Close())
	}()

	tenant1 := uuid.NewString()
	tenant2 := uuid.NewString()

	var entry1 models.VaultEntry
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		var err error
		entry1, err = dbClient.DefineNewEntry(
			ctx, tenant1, models.EntryMetadata{Title: "tenant 1 secret"}, testEnvelope(),
		)
		return err
	})
	assert.Nil(err)

	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		// Get
		_, err := dbClient.GetEntry(ctx, tenant2, entry1.ID)
		assert.Error(err)

		// List
		entries, err := dbClient.ListEntries(ctx, tenant2, db.VaultEntryQueryFilter{})
		assert.Nil(err)
		assert.Empty(entries)

		// Count
		count, err := dbClient.CountEntries(ctx, tenant2)
		assert.Nil(err)
		assert.Equal(int64(0), count)
		count, err = dbClient.CountEntries(ctx, tenant1)
		assert.Nil(err)
		assert.Equal(int64(1), count)

		// Sample envelope
		sample, err := dbClient.GetSampleEnvelope(ctx, tenant2)
		assert.Nil(err)
		assert.Nil(sample)
		sample, err = dbClient.GetSampleEnvelope(ctx, tenant1)
		assert.Nil(err)
		assert.NotNil(sample)
		assert.Equal(entry1.Envelope(), *sample)

		// Update
		_, err = dbClient.UpdateEntry(
			ctx, tenant2, entry1.ID, models.EntryMetadata{Title: "hijack"}, testEnvelope(),
		)
		assert.Error(err)

		// Delete
		assert.Error(dbClient.DeleteEntry(ctx, tenant2, entry1.ID))
		return nil
	})
	assert.Nil(err)

	// Entry is untouched
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		entry, err := dbClient.GetEntry(ctx, tenant1, entry1.ID)
		if err != nil {
			return err
		}
		assert.Equal(entry1.EntryMetadata, entry.EntryMetadata)
		assert.Equal(entry1.Envelope(), entry.Envelope())
		return nil
	})
	assert.Nil(err)
}

// TestDBVaultEntryListing verifies listing filters and pagination.
func TestDBVaultEntryListing(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := prepareTestDB(t)
	defer func() {
		assert.Nil(uut.Close())
	}()

	tenantID := uuid.NewString()

	testEntries := []models.EntryMetadata{
		{Title: "Bank Portal", Username: "acct1"},
		{Title: "Payroll", Username: "hr-admin"},
		{Title: "bank backup codes", Username: "acct2"},
		{Title: "100% uptime dashboard", Username: "ops"},
	}
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		for _, meta := range testEntries {
			if _, err := dbClient.DefineNewEntry(ctx, tenantID, meta, testEnvelope()); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Nil(err)

	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		// All
		entries, err := dbClient.ListEntries(ctx, tenantID, db.VaultEntryQueryFilter{})
		assert.Nil(err)
		assert.Len(entries, 4)

		// Title search is case-insensitive
		search := "BANK"
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{TitleContains: &search},
		)
		assert.Nil(err)
		assert.Len(entries, 2)

		// Wildcards in the search text are literal
		search = "100%"
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{TitleContains: &search},
		)
		assert.Nil(err)
		assert.Len(entries, 1)
		search = "%"
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{TitleContains: &search},
		)
		assert.Nil(err)
		assert.Len(entries, 1)

		// Username search
		search = "acct"
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{UsernameContains: &search},
		)
		assert.Nil(err)
		assert.Len(entries, 2)

		// Pagination
		limit := 3
		offset := 2
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{
				CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{Limit: &limit},
			},
		)
		assert.Nil(err)
		assert.Len(entries, 3)
		entries, err = dbClient.ListEntries(
			ctx, tenantID, db.VaultEntryQueryFilter{
				CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{
					Limit: &limit, Offset: &offset,
				},
			},
		)
		assert.Nil(err)
		assert.Len(entries, 2)
		return nil
	})
	assert.Nil(err)
}
