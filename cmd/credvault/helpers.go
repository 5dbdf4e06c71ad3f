package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alwitt/credvault"
	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/credvault/vault"
	"github.com/apex/log"
	"github.com/briandowns/spinner"
	"golang.org/x/term"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	envPassphrase = "CREDVAULT_PASSPHRASE"
	envSecret     = "CREDVAULT_SECRET"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// stdinLines shared so consecutive reads do not lose buffered input
var stdinLines = bufio.NewReader(os.Stdin)

/*
readSensitive read a sensitive value, from the environment if set, otherwise from the
terminal without echo.

	@param envVar string - environment variable to check first
	@param prompt string - terminal prompt
	@param stdin *bufio.Reader - fallback input when stdin is not a terminal
	@returns the value
*/
func readSensitive(envVar, prompt string, stdin *bufio.Reader) (string, error) {
	if value, ok := os.LookupEnv(envVar); ok {
		return value, nil
	}

	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := readPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read from terminal [%w]", err)
		}
		return string(raw), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read from stdin [%w]", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

/*
describeError user facing message for a command failure

Decryption failures are reported generically; the message never hints whether the
passphrase or the stored data is at fault.

	@param err error - the failure
	@returns message
*/
func describeError(err error) string {
	switch {
	case errors.Is(err, encryption.ErrDecryptionFailed), errors.Is(err, vault.ErrUnlockRejected):
		return "unable to unlock or decrypt the vault"
	case errors.Is(err, vault.ErrPassphraseMismatch):
		return "passphrase does not match the vault's existing entries"
	case errors.Is(err, vault.ErrSessionClosed):
		return "vault session has closed, unlock again"
	case errors.Is(err, encryption.ErrKeyDerivation):
		return "a non-empty passphrase is required"
	}
	return err.Error()
}

/*
startSpinner start a progress spinner on stderr

	@param message string - spinner message
	@returns function which stops the spinner
*/
func startSpinner(message string) func() {
	if cmdArgs.NoSpinner || !isTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		log.WithError(err).Debug("Failed to set spinner color")
	}
	s.Start()
	return s.Stop
}

// dialector pick the database from the CLI arguments
func dialector() (gorm.Dialector, bool) {
	if cmdArgs.PostgresDSN != "" {
		return db.GetPostgresDialector(cmdArgs.PostgresDSN), false
	}
	return db.GetSqliteDialector(cmdArgs.SqliteFile), true
}

/*
openVault connect to the vault database and prepare the vault service

	@param ctx context.Context - execution context
	@returns vault service and the persistence client to close afterwards
*/
func openVault(ctx context.Context) (vault.Service, db.Client, error) {
	dbDialector, local := dialector()

	persistence, err := db.NewConnection(dbDialector, logger.Silent, db.ConnectionParams{})
	if err != nil {
		return nil, nil, err
	}

	// Hosted databases are migrated out of band
	if local {
		if err := persistence.RunSQLInTransaction(ctx, db.DefineTables); err != nil {
			_ = persistence.Close()
			return nil, nil, fmt.Errorf("failed to prepare vault tables [%w]", err)
		}
	}

	service, err := credvault.NewVaultServiceWithPersistence(ctx, persistence, credvault.VaultParams{
		EnvelopeAlgo: models.EnvelopeAlgoENUMType(cmdArgs.EnvelopeAlgo),
	})
	if err != nil {
		_ = persistence.Close()
		return nil, nil, err
	}
	return service, persistence, nil
}

/*
unlockVault read the passphrase and unlock the tenant's vault

	@param ctx context.Context - execution context
	@param service vault.Service - vault service
	@returns unlock outcome; never a rejected one
*/
func unlockVault(ctx context.Context, service vault.Service) (vault.UnlockResult, error) {
	passphrase, err := readSensitive(envPassphrase, "Vault passphrase: ", stdinLines)
	if err != nil {
		return vault.UnlockResult{}, err
	}

	stop := startSpinner("Unlocking vault")
	result, err := service.Unlock(ctx, cmdArgs.TenantID, passphrase, nil)
	stop()
	if err != nil {
		return vault.UnlockResult{}, err
	}
	if !result.Accepted {
		return vault.UnlockResult{}, fmt.Errorf("tenant %s [%w]", cmdArgs.TenantID, vault.ErrUnlockRejected)
	}
	return result, nil
}

/*
withVault run a command against the vault

	@param unlock bool - whether the command needs an unlocked session
	@param logic func(...) error - the command
*/
func withVault(
	unlock bool,
	logic func(ctx context.Context, service vault.Service, session *vault.Session) error,
) error {
	ctx := context.Background()

	service, persistence, err := openVault(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := persistence.Close(); err != nil {
			log.WithError(err).Error("Failed to close vault database")
		}
	}()

	var session *vault.Session
	if unlock {
		result, err := unlockVault(ctx, service)
		if err != nil {
			return err
		}
		session = result.Session
		defer session.Lock()
		if result.Optimistic {
			printWarning("vault has no entries yet; this passphrase becomes the vault passphrase")
		}
	}

	return logic(ctx, service, session)
}
