package db

import (
	"context"

	"github.com/alwitt/credvault/models"
	"gorm.io/gorm"
)

// --------------------------------------------------------------------------------------
// Vault audit events

// VaultEventAuditDBEntry vault audit event DB entry
type VaultEventAuditDBEntry struct {
	models.VaultEventAudit
}

// TableName hard code table name
func (VaultEventAuditDBEntry) TableName() string {
	return "vault_audit_events"
}

// --------------------------------------------------------------------------------------
// Vault entries

// VaultEntryDBEntry vault entry DB entry
type VaultEntryDBEntry struct {
	models.VaultEntry
}

// TableName hard code table name
func (VaultEntryDBEntry) TableName() string {
	return "vault_entries"
}

// --------------------------------------------------------------------------------------

// DefineTables prepare a database with the vault tables
//
// Meant for unit-testing and local sqlite vaults; hosted databases are migrated with the
// schema printed by utils/atlas-migrate.
func DefineTables(_ context.Context, db *gorm.DB) error {
	return db.AutoMigrate(
		VaultEventAuditDBEntry{},
		VaultEntryDBEntry{},
	)
}
