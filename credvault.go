// Package credvault - tenant-scoped encrypted credential vault
package credvault

import (
	"context"
	"fmt"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/credvault/vault"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// VaultParams vault service init parameters
type VaultParams struct {
	// EnvelopeAlgo encryption scheme for new envelopes; empty selects the default
	EnvelopeAlgo models.EnvelopeAlgoENUMType
	// Persistence vault store connection pool parameters
	Persistence db.ConnectionParams
	// Service vault service parameters
	Service vault.ServiceParams
}

/*
NewVaultService initialize a vault service instance.

Each instance is backed by a SQL database; two instances using the same database serve
the same tenant vaults.

	@param ctx context.Context - execution context
	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@param params VaultParams - vault parameters
	@returns new service instance
*/
func NewVaultService(
	ctx context.Context,
	dbDialector gorm.Dialector,
	dbLogLevel logger.LogLevel,
	params VaultParams,
) (vault.Service, error) {
	// Prepare persistence
	persistence, err := db.NewConnection(dbDialector, dbLogLevel, params.Persistence)
	if err != nil {
		return nil, fmt.Errorf("failed to initialized persistence client [%w]", err)
	}

	return NewVaultServiceWithPersistence(ctx, persistence, params)
}

/*
NewVaultServiceWithPersistence initialize a vault service instance on an existing
persistence client.

	@param ctx context.Context - execution context
	@param persistence db.Client - persistence layer client
	@param params VaultParams - vault parameters
	@returns new service instance
*/
func NewVaultServiceWithPersistence(
	_ context.Context, persistence db.Client, params VaultParams,
) (vault.Service, error) {
	// Prepare envelope codec
	codec, err := encryption.NewVaultCodec(encryption.CodecParams{
		DefaultAlgo: params.EnvelopeAlgo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized vault codec [%w]", err)
	}

	service, err := vault.NewService(persistence, codec, params.Service)
	if err != nil {
		return nil, fmt.Errorf("failed to initialized vault service [%w]", err)
	}

	return service, nil
}
