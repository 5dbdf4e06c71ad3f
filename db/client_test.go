package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/models"
	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestDBConnectionParams(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	testDB := fmt.Sprintf("/tmp/credvault_ut_%s.db", ulid.Make().String())

	_, err := db.NewConnection(
		db.GetSqliteDialector(testDB), logger.Error, db.ConnectionParams{MaxOpenConns: -1},
	)
	assert.NotNil(err)

	uut, err := db.NewConnection(
		db.GetSqliteDialector(testDB),
		logger.Error,
		db.ConnectionParams{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Minute},
	)
	assert.Nil(err)
	assert.Nil(uut.RunSQLInTransaction(context.Background(), db.DefineTables))
	assert.Nil(uut.Close())
}

func TestDBTransactionScope(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := prepareTestDB(t)
	tenantID := uuid.NewString()
	meta := models.EntryMetadata{Title: "Bank Portal"}

	// A failed transaction leaves nothing behind
	{
		injected := fmt.Errorf("abort")
		err := uut.UseDatabaseInTransaction(
			utCtx, func(ctx context.Context, dbClient db.Database) error {
				_, err := dbClient.DefineNewEntry(ctx, tenantID, meta, testEnvelope())
				assert.Nil(err)
				return injected
			},
		)
		assert.ErrorIs(err, injected)

		assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
			count, err := dbClient.CountEntries(ctx, tenantID)
			assert.Nil(err)
			assert.Equal(int64(0), count)
			return nil
		}))
	}

	// The caller's transaction is reused rather than nesting a new one
	{
		err := uut.UseDatabaseInTransaction(
			utCtx, func(ctx context.Context, outer db.Database) error {
				return db.ActiveSessionWrapper(
					ctx, outer, uut, func(ctx context.Context, inner db.Database) error {
						assert.True(outer == inner)
						_, err := inner.DefineNewEntry(ctx, tenantID, meta, testEnvelope())
						return err
					},
				)
			},
		)
		assert.Nil(err)

		assert.Nil(db.ActiveSessionWrapper(
			utCtx, nil, uut, func(ctx context.Context, dbClient db.Database) error {
				count, err := dbClient.CountEntries(ctx, tenantID)
				assert.Nil(err)
				assert.Equal(int64(1), count)
				return nil
			},
		))
	}
}
