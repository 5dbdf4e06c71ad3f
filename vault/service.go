package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// DefaultRevealConcurrency max parallel decrypts during RevealMany
const DefaultRevealConcurrency = 4

// ServiceParams vault service init parameters
type ServiceParams struct {
	// SessionTTL how long an unlocked session stays usable
	SessionTTL time.Duration `validate:"omitempty,min=1s"`
	// RevealConcurrency max parallel decrypts during RevealMany
	RevealConcurrency int `validate:"omitempty,min=1,max=64"`
}

// UnlockResult outcome of a vault unlock attempt
type UnlockResult struct {
	// Accepted whether the passphrase opened the vault
	Accepted bool
	// Optimistic whether the vault had no entries to check the passphrase against
	Optimistic bool
	// Session the unlocked session; nil when not accepted
	Session *Session
}

// Service tenant vault operations
type Service interface {
	/*
		Unlock check a passphrase against a tenant's vault

		A rejected passphrase is not an error; it is reported through UnlockResult.

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param passphrase string - candidate passphrase
			@param activeDBClient Database - existing database transaction
			@returns unlock outcome
	*/
	Unlock(
		ctx context.Context, tenantID string, passphrase string, activeDBClient db.Database,
	) (UnlockResult, error)

	/*
		Save encrypt a secret and store it as a new vault entry

			@param ctx context.Context - execution context
			@param session *Session - unlocked session
			@param metadata models.EntryMetadata - entry plaintext metadata
			@param secret models.SecretPayload - the secret
			@param activeDBClient Database - existing database transaction
			@returns the new entry
	*/
	Save(
		ctx context.Context,
		session *Session,
		metadata models.EntryMetadata,
		secret models.SecretPayload,
		activeDBClient db.Database,
	) (models.VaultEntry, error)

	/*
		Update re-encrypt a vault entry with a new secret and metadata

			@param ctx context.Context - execution context
			@param session *Session - unlocked session
			@param entryID string - vault entry ID
			@param metadata models.EntryMetadata - entry plaintext metadata
			@param secret models.SecretPayload - the secret
			@param activeDBClient Database - existing database transaction
			@returns the updated entry
	*/
	Update(
		ctx context.Context,
		session *Session,
		entryID string,
		metadata models.EntryMetadata,
		secret models.SecretPayload,
		activeDBClient db.Database,
	) (models.VaultEntry, error)

	/*
		Reveal decrypt the secret of a vault entry by ID

			@param ctx context.Context - execution context
			@param session *Session - unlocked session
			@param entryID string - vault entry ID
			@param activeDBClient Database - existing database transaction
			@returns the secret
	*/
	Reveal(
		ctx context.Context, session *Session, entryID string, activeDBClient db.Database,
	) (models.SecretPayload, error)

	/*
		RevealEntry decrypt the secret of an already fetched vault entry

			@param ctx context.Context - execution context
			@param session *Session - unlocked session
			@param entry models.VaultEntry - the vault entry
			@returns the secret
	*/
	RevealEntry(
		ctx context.Context, session *Session, entry models.VaultEntry,
	) (models.SecretPayload, error)

	/*
		RevealMany decrypt the secrets of multiple vault entries

		Either every secret is returned, or none.

			@param ctx context.Context - execution context
			@param session *Session - unlocked session
			@param entryIDs []string - vault entry IDs
			@param activeDBClient Database - existing database transaction
			@returns the secrets, keyed by entry ID
	*/
	RevealMany(
		ctx context.Context, session *Session, entryIDs []string, activeDBClient db.Database,
	) (map[string]models.SecretPayload, error)

	/*
		List list vault entries; secrets stay encrypted

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param filters db.VaultEntryQueryFilter - entry listing filter
			@param activeDBClient Database - existing database transaction
			@returns the entries
	*/
	List(
		ctx context.Context,
		tenantID string,
		filters db.VaultEntryQueryFilter,
		activeDBClient db.Database,
	) ([]models.VaultEntry, error)

	/*
		Count count the vault entries of a tenant

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param activeDBClient Database - existing database transaction
			@returns number of entries
	*/
	Count(ctx context.Context, tenantID string, activeDBClient db.Database) (int64, error)

	/*
		Delete delete a vault entry

			@param ctx context.Context - execution context
			@param tenantID string - the tenant
			@param entryID string - vault entry ID
			@param activeDBClient Database - existing database transaction
	*/
	Delete(
		ctx context.Context, tenantID string, entryID string, activeDBClient db.Database,
	) error
}

// serviceImpl implements Service
type serviceImpl struct {
	goutils.Component

	persistence db.Client

	codec encryption.VaultCodec

	unlocker UnlockValidator

	validator *validator.Validate

	sessionTTL        time.Duration
	revealConcurrency int
}

/*
NewService define new vault service

	@param persistence db.Client - persistence layer client
	@param codec encryption.VaultCodec - envelope codec
	@param params ServiceParams - service parameters
	@returns service instance
*/
func NewService(
	persistence db.Client, codec encryption.VaultCodec, params ServiceParams,
) (Service, error) {
	logTags := log.Fields{"module": "vault", "component": "vault-service"}

	instance := &serviceImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence:       persistence,
		codec:             codec,
		unlocker:          NewUnlockValidator(codec),
		validator:         validator.New(),
		sessionTTL:        params.SessionTTL,
		revealConcurrency: params.RevealConcurrency,
	}
	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	if err := instance.validator.Struct(&params); err != nil {
		return nil, fmt.Errorf("invalid vault service parameters [%w]", err)
	}

	if instance.sessionTTL == 0 {
		instance.sessionTTL = DefaultSessionTTL
	}
	if instance.revealConcurrency == 0 {
		instance.revealConcurrency = DefaultRevealConcurrency
	}

	return instance, nil
}

/*
Unlock check a passphrase against a tenant's vault

A rejected passphrase is not an error; it is reported through UnlockResult.

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param passphrase string - candidate passphrase
	@param activeDBClient Database - existing database transaction
	@returns unlock outcome
*/
func (s *serviceImpl) Unlock(
	ctx context.Context, tenantID string, passphrase string, activeDBClient db.Database,
) (UnlockResult, error) {
	logTags := s.GetLogTagsForContext(ctx)

	if tenantID == "" {
		return UnlockResult{}, fmt.Errorf("tenant ID is required")
	}

	candidate := []byte(passphrase)
	handedOff := false
	defer func() {
		if !handedOff {
			encryption.Zero(candidate)
		}
	}()

	var result UnlockResult
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			sample, err := dbClient.GetSampleEnvelope(dbCtx, tenantID)
			if err != nil {
				return fmt.Errorf("failed to read sample envelope [%w]", err)
			}

			result.Accepted, err = s.unlocker.Unlock(dbCtx, candidate, sample)
			if err != nil {
				return err
			}
			result.Optimistic = result.Accepted && sample == nil

			if _, err := dbClient.RecordUnlockEvent(
				dbCtx, tenantID, result.Accepted, result.Optimistic,
			); err != nil {
				return fmt.Errorf("failed to record unlock event [%w]", err)
			}
			return nil
		},
	); dbErr != nil {
		return UnlockResult{}, fmt.Errorf("failed to unlock tenant %s vault [%w]", tenantID, dbErr)
	}

	log.WithFields(logTags).
		WithField("tenant", tenantID).
		WithField("accepted", result.Accepted).
		WithField("optimistic", result.Optimistic).
		Info("Vault unlock attempt")

	if result.Accepted {
		result.Session = newSession(tenantID, candidate, result.Optimistic, s.sessionTTL)
		handedOff = true
	}
	return result, nil
}

// encrypt encrypt a secret with the session passphrase
func (s *serviceImpl) encrypt(
	ctx context.Context, session *Session, secret models.SecretPayload,
) (models.Envelope, error) {
	var envelope models.Envelope
	err := session.withPassphrase(func(passphrase []byte) error {
		var err error
		envelope, err = s.codec.Encrypt(ctx, secret, passphrase)
		return err
	})
	return envelope, err
}

// decrypt decrypt an envelope with the session passphrase
func (s *serviceImpl) decrypt(
	ctx context.Context, session *Session, envelope models.Envelope,
) (models.SecretPayload, error) {
	var payload models.SecretPayload
	err := session.withPassphrase(func(passphrase []byte) error {
		var err error
		payload, err = s.codec.Decrypt(ctx, envelope, passphrase)
		return err
	})
	return payload, err
}

/*
confirmOptimisticSession guard against forking the vault passphrase

An optimistic session was accepted without anything to check its passphrase against.
Before it writes, verify that any entry written by others in the meantime opens with
the same passphrase. Must run inside the write's transaction.

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param dbClient db.Database - the write's database transaction
*/
func (s *serviceImpl) confirmOptimisticSession(
	ctx context.Context, session *Session, dbClient db.Database,
) error {
	if !session.Optimistic() {
		return nil
	}

	sample, err := dbClient.GetSampleEnvelope(ctx, session.TenantID())
	if err != nil {
		return fmt.Errorf("failed to read sample envelope [%w]", err)
	}
	if sample == nil {
		// Vault is still empty; this write establishes the passphrase
		return nil
	}

	if _, err := s.decrypt(ctx, session, *sample); err != nil {
		if errors.Is(err, encryption.ErrDecryptionFailed) {
			log.WithFields(s.GetLogTagsForContext(ctx)).
				WithField("tenant", session.TenantID()).
				Warn("Optimistic session passphrase does not match existing entries")
			return ErrPassphraseMismatch
		}
		return err
	}

	session.confirm()
	return nil
}

/*
Save encrypt a secret and store it as a new vault entry

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param metadata models.EntryMetadata - entry plaintext metadata
	@param secret models.SecretPayload - the secret
	@param activeDBClient Database - existing database transaction
	@returns the new entry
*/
func (s *serviceImpl) Save(
	ctx context.Context,
	session *Session,
	metadata models.EntryMetadata,
	secret models.SecretPayload,
	activeDBClient db.Database,
) (models.VaultEntry, error) {
	if !session.IsOpen() {
		return models.VaultEntry{}, ErrSessionClosed
	}
	if err := s.validator.Struct(&metadata); err != nil {
		return models.VaultEntry{}, fmt.Errorf("vault entry metadata is not valid [%w]", err)
	}

	envelope, err := s.encrypt(ctx, session, secret)
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("failed to encrypt secret [%w]", err)
	}

	var entry models.VaultEntry
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			if err := s.confirmOptimisticSession(dbCtx, session, dbClient); err != nil {
				return err
			}
			var err error
			entry, err = dbClient.DefineNewEntry(dbCtx, session.TenantID(), metadata, envelope)
			return err
		},
	); dbErr != nil {
		return models.VaultEntry{}, fmt.Errorf(
			"failed to save vault entry '%s' [%w]", metadata.Title, dbErr,
		)
	}

	return entry, nil
}

/*
Update re-encrypt a vault entry with a new secret and metadata

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param entryID string - vault entry ID
	@param metadata models.EntryMetadata - entry plaintext metadata
	@param secret models.SecretPayload - the secret
	@param activeDBClient Database - existing database transaction
	@returns the updated entry
*/
func (s *serviceImpl) Update(
	ctx context.Context,
	session *Session,
	entryID string,
	metadata models.EntryMetadata,
	secret models.SecretPayload,
	activeDBClient db.Database,
) (models.VaultEntry, error) {
	if !session.IsOpen() {
		return models.VaultEntry{}, ErrSessionClosed
	}
	if err := s.validator.Struct(&metadata); err != nil {
		return models.VaultEntry{}, fmt.Errorf("vault entry metadata is not valid [%w]", err)
	}

	envelope, err := s.encrypt(ctx, session, secret)
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("failed to encrypt secret [%w]", err)
	}

	var entry models.VaultEntry
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			if err := s.confirmOptimisticSession(dbCtx, session, dbClient); err != nil {
				return err
			}
			var err error
			entry, err = dbClient.UpdateEntry(
				dbCtx, session.TenantID(), entryID, metadata, envelope,
			)
			return err
		},
	); dbErr != nil {
		return models.VaultEntry{}, fmt.Errorf("failed to update vault entry %s [%w]", entryID, dbErr)
	}

	return entry, nil
}

/*
Reveal decrypt the secret of a vault entry by ID

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param entryID string - vault entry ID
	@param activeDBClient Database - existing database transaction
	@returns the secret
*/
func (s *serviceImpl) Reveal(
	ctx context.Context, session *Session, entryID string, activeDBClient db.Database,
) (models.SecretPayload, error) {
	if !session.IsOpen() {
		return models.SecretPayload{}, ErrSessionClosed
	}

	var entry models.VaultEntry
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.GetEntry(dbCtx, session.TenantID(), entryID)
			return err
		},
	); dbErr != nil {
		return models.SecretPayload{}, fmt.Errorf("failed to find vault entry %s [%w]", entryID, dbErr)
	}

	return s.RevealEntry(ctx, session, entry)
}

/*
RevealEntry decrypt the secret of an already fetched vault entry

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param entry models.VaultEntry - the vault entry
	@returns the secret
*/
func (s *serviceImpl) RevealEntry(
	ctx context.Context, session *Session, entry models.VaultEntry,
) (models.SecretPayload, error) {
	if !session.IsOpen() {
		return models.SecretPayload{}, ErrSessionClosed
	}
	if entry.TenantID != session.TenantID() {
		return models.SecretPayload{}, fmt.Errorf(
			"vault entry %s does not belong to the session's tenant", entry.ID,
		)
	}

	payload, err := s.decrypt(ctx, session, entry.Envelope())
	if err != nil {
		return models.SecretPayload{}, fmt.Errorf("failed to decrypt vault entry %s [%w]", entry.ID, err)
	}
	return payload, nil
}

/*
RevealMany decrypt the secrets of multiple vault entries

Either every secret is returned, or none.

	@param ctx context.Context - execution context
	@param session *Session - unlocked session
	@param entryIDs []string - vault entry IDs
	@param activeDBClient Database - existing database transaction
	@returns the secrets, keyed by entry ID
*/
func (s *serviceImpl) RevealMany(
	ctx context.Context, session *Session, entryIDs []string, activeDBClient db.Database,
) (map[string]models.SecretPayload, error) {
	if !session.IsOpen() {
		return nil, ErrSessionClosed
	}

	entries := make([]models.VaultEntry, len(entryIDs))
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			for idx, entryID := range entryIDs {
				var err error
				entries[idx], err = dbClient.GetEntry(dbCtx, session.TenantID(), entryID)
				if err != nil {
					return fmt.Errorf("failed to find vault entry %s [%w]", entryID, err)
				}
			}
			return nil
		},
	); dbErr != nil {
		return nil, fmt.Errorf("failed to fetch vault entries [%w]", dbErr)
	}

	payloads := make([]models.SecretPayload, len(entries))
	wg, wgCtx := errgroup.WithContext(ctx)
	wg.SetLimit(s.revealConcurrency)
	for idx, entry := range entries {
		wg.Go(func() error {
			if err := wgCtx.Err(); err != nil {
				return err
			}
			var err error
			payloads[idx], err = s.RevealEntry(wgCtx, session, entry)
			return err
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]models.SecretPayload, len(entries))
	for idx, entry := range entries {
		result[entry.ID] = payloads[idx]
	}
	return result, nil
}

/*
List list vault entries; secrets stay encrypted

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param filters db.VaultEntryQueryFilter - entry listing filter
	@param activeDBClient Database - existing database transaction
	@returns the entries
*/
func (s *serviceImpl) List(
	ctx context.Context,
	tenantID string,
	filters db.VaultEntryQueryFilter,
	activeDBClient db.Database,
) ([]models.VaultEntry, error) {
	var entries []models.VaultEntry
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entries, err = dbClient.ListEntries(dbCtx, tenantID, filters)
			return err
		},
	); dbErr != nil {
		return nil, fmt.Errorf("failed to list tenant %s vault entries [%w]", tenantID, dbErr)
	}
	return entries, nil
}

/*
Count count the vault entries of a tenant

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param activeDBClient Database - existing database transaction
	@returns number of entries
*/
func (s *serviceImpl) Count(
	ctx context.Context, tenantID string, activeDBClient db.Database,
) (int64, error) {
	var count int64
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			count, err = dbClient.CountEntries(dbCtx, tenantID)
			return err
		},
	); dbErr != nil {
		return 0, fmt.Errorf("failed to count tenant %s vault entries [%w]", tenantID, dbErr)
	}
	return count, nil
}

/*
Delete delete a vault entry

	@param ctx context.Context - execution context
	@param tenantID string - the tenant
	@param entryID string - vault entry ID
	@param activeDBClient Database - existing database transaction
*/
func (s *serviceImpl) Delete(
	ctx context.Context, tenantID string, entryID string, activeDBClient db.Database,
) error {
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			return dbClient.DeleteEntry(dbCtx, tenantID, entryID)
		},
	); dbErr != nil {
		return fmt.Errorf("failed to delete vault entry %s [%w]", entryID, dbErr)
	}
	return nil
}
