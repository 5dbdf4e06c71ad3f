package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alwitt/credvault"
	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/encryption"
	"github.com/alwitt/credvault/vault"
	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestDescribeError(t *testing.T) {
	assert := assert.New(t)

	generic := "unable to unlock or decrypt the vault"
	assert.Equal(generic, describeError(encryption.ErrDecryptionFailed))
	assert.Equal(
		generic, describeError(fmt.Errorf("entry abc [%w]", encryption.ErrDecryptionFailed)),
	)
	assert.Equal(generic, describeError(fmt.Errorf("tenant x [%w]", vault.ErrUnlockRejected)))
	assert.NotEqual(generic, describeError(vault.ErrPassphraseMismatch))
	assert.Equal("boom", describeError(fmt.Errorf("boom")))
}

func TestReadSensitive(t *testing.T) {
	assert := assert.New(t)

	original := isTerminal
	isTerminal = func(int) bool { return false }
	defer func() {
		isTerminal = original
	}()

	// From the environment
	t.Setenv("CREDVAULT_UT_VALUE", "from-env")
	value, err := readSensitive("CREDVAULT_UT_VALUE", "prompt: ", nil)
	assert.Nil(err)
	assert.Equal("from-env", value)

	// From piped input, one line per read
	input := bufio.NewReader(strings.NewReader("first\r\nsecond\nthird"))
	for _, expected := range []string{"first", "second", "third"} {
		value, err := readSensitive("CREDVAULT_UT_UNSET", "prompt: ", input)
		assert.Nil(err)
		assert.Equal(expected, value)
	}
}

func TestCLIWorkflow(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	ctx := context.Background()

	testDB := fmt.Sprintf("/tmp/credvault_ut_%s.db", ulid.Make().String())
	tenantID := uuid.NewString()
	globalArgs := []string{"--db", testDB, "--tenant", tenantID, "--no-spinner"}

	run := func(args ...string) error {
		rootCmd.SetArgs(append(append([]string{}, globalArgs...), args...))
		return rootCmd.Execute()
	}

	t.Setenv(envPassphrase, "CorrectHorse1")
	t.Setenv(envSecret, "Secr3t!")

	// Save
	assert.Nil(run("save", "--title", "Bank Portal", "--username", "acct1"))

	assert.Nil(run("unlock"))

	// Find the entry
	service, err := credvault.NewVaultService(
		ctx, db.GetSqliteDialector(testDB), logger.Error, credvault.VaultParams{},
	)
	assert.Nil(err)
	entries, err := service.List(ctx, tenantID, db.VaultEntryQueryFilter{}, nil)
	assert.Nil(err)
	assert.Len(entries, 1)
	entryID := entries[0].ID

	// Reveal with the right passphrase
	assert.Nil(run("reveal", entryID))

	// Wrong passphrase
	t.Setenv(envPassphrase, "wrongpass")
	err = run("reveal", entryID)
	assert.ErrorIs(err, vault.ErrUnlockRejected)
	assert.Equal("unable to unlock or decrypt the vault", describeError(err))
	assert.ErrorIs(run("unlock"), vault.ErrUnlockRejected)

	// Metadata commands need no passphrase
	assert.Nil(run("list", "--title", "bank"))
	assert.Nil(run("delete", entryID))
	entries, err = service.List(ctx, tenantID, db.VaultEntryQueryFilter{}, nil)
	assert.Nil(err)
	assert.Empty(entries)
}
