package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteBusyTimeoutMS how long a sqlite writer waits on a locked database
const sqliteBusyTimeoutMS = 5000

/*
GetSqliteDialector define Sqlite GORM dialector for a local vault file

	@param dbFile string - Sqlite DB file
	@return GORM sqlite dialector
*/
func GetSqliteDialector(dbFile string) gorm.Dialector {
	return sqlite.Open(
		fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", dbFile, sqliteBusyTimeoutMS),
	)
}

/*
GetPostgresDialector define Postgres GORM dialector for a hosted vault store

	@param dsn string - Postgres connection string
	@return GORM postgres dialector
*/
func GetPostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// ConnectionParams vault store connection pool parameters
type ConnectionParams struct {
	// MaxOpenConns max open connections; zero means no limit
	MaxOpenConns int `validate:"gte=0"`
	// MaxIdleConns max idle connections; zero keeps the driver default
	MaxIdleConns int `validate:"gte=0"`
	// ConnMaxLifetime max time a connection is reused; zero means forever
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

// Client manages connections and transactions with the vault entry store
type Client interface {
	/*
		RunSQLInTransaction run raw GORM calls inside one vault store transaction

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, tx *gorm.DB) error - the callback to execute
	*/
	RunSQLInTransaction(
		ctx context.Context, coreLogic func(ctx context.Context, tx *gorm.DB) error,
	) error

	/*
		UseDatabase run vault store operations outside of a transaction

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
	*/
	UseDatabase(
		ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
	) error

	/*
		UseDatabaseInTransaction run vault store operations inside one transaction

		The transaction commits only if coreLogic returns nil.

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
	*/
	UseDatabaseInTransaction(
		ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
	) error

	// Close release the underlying connection pool
	Close() error
}

// clientImpl implements Client
type clientImpl struct {
	goutils.Component
	db *gorm.DB
	// txOptions applied to every transaction
	txOptions *sql.TxOptions
}

/*
NewConnection connect to a vault store

On postgres every transaction runs SERIALIZABLE, so two writers which both observe an
empty tenant vault can not both commit. Sqlite serializes writers on its file lock.

	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@param params ConnectionParams - connection pool parameters
	@return new client
*/
func NewConnection(
	dbDialector gorm.Dialector, dbLogLevel logger.LogLevel, params ConnectionParams,
) (Client, error) {
	logTags := log.Fields{"package": "credvault", "module": "db", "component": "vault-store"}

	if err := validator.New().Struct(&params); err != nil {
		return nil, fmt.Errorf("invalid vault store connection parameters [%w]", err)
	}

	db, err := gorm.Open(dbDialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(dbLogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect with vault store [%w]", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access vault store connection pool [%w]", err)
	}
	if params.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(params.MaxOpenConns)
	}
	if params.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(params.MaxIdleConns)
	}
	if params.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(params.ConnMaxLifetime)
	}

	instance := &clientImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db: db,
	}
	if dbDialector.Name() == "postgres" {
		instance.txOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	log.WithFields(logTags).
		WithField("dialect", dbDialector.Name()).
		WithField("serializable", instance.txOptions != nil).
		Debug("Connected to vault store")

	return instance, nil
}

/*
RunSQLInTransaction run raw GORM calls inside one vault store transaction

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, tx *gorm.DB) error - the callback to execute
*/
func (c *clientImpl) RunSQLInTransaction(
	ctx context.Context, coreLogic func(ctx context.Context, tx *gorm.DB) error,
) error {
	handler := func(tx *gorm.DB) error {
		return coreLogic(ctx, tx)
	}
	if c.txOptions != nil {
		return c.db.WithContext(ctx).Transaction(handler, c.txOptions)
	}
	return c.db.WithContext(ctx).Transaction(handler)
}

/*
UseDatabase run vault store operations outside of a transaction

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func (c *clientImpl) UseDatabase(
	ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	dbClient, err := newDatabase(ctx, c.db.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to define vault store session [%w]", err)
	}
	return coreLogic(ctx, dbClient)
}

/*
UseDatabaseInTransaction run vault store operations inside one transaction

The transaction commits only if coreLogic returns nil.

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func (c *clientImpl) UseDatabaseInTransaction(
	ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	return c.RunSQLInTransaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		dbClient, err := newDatabase(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to define vault store session [%w]", err)
		}
		return coreLogic(ctx, dbClient)
	})
}

// Close release the underlying connection pool
func (c *clientImpl) Close() error {
	pool, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access vault store connection pool [%w]", err)
	}
	return pool.Close()
}

/*
ActiveSessionWrapper run coreLogic on the caller's transaction when there is one, or
in a new transaction otherwise.

	@param ctx context.Context - execution context
	@param activeDBClient Database - existing database transaction
	@param persistence Client - persistence client
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func ActiveSessionWrapper(
	ctx context.Context,
	activeDBClient Database,
	persistence Client,
	coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	if activeDBClient != nil {
		return coreLogic(ctx, activeDBClient)
	}
	return persistence.UseDatabaseInTransaction(ctx, coreLogic)
}
