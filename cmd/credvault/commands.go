package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alwitt/credvault/db"
	"github.com/alwitt/credvault/models"
	"github.com/alwitt/credvault/vault"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func printSuccess(message string) {
	fmt.Println(color.GreenString("✓") + " " + message)
}

func printWarning(message string) {
	fmt.Fprintln(os.Stderr, color.YellowString("!")+" "+message)
}

// --------------------------------------------------------------------------------------
// unlock

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check a passphrase against the tenant's vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(true, func(
			ctx context.Context, service vault.Service, _ *vault.Session,
		) error {
			count, err := service.Count(ctx, cmdArgs.TenantID, nil)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf(
				"vault unlocked for tenant %s (%d entries)", color.CyanString(cmdArgs.TenantID), count,
			))
			return nil
		})
	},
}

// --------------------------------------------------------------------------------------
// save / update

type entryArgs struct {
	Title    string
	Username string
	URL      string
	Notes    string
}

var saveArgs entryArgs
var updateArgs entryArgs

func addEntryFlags(cmd *cobra.Command, target *entryArgs) {
	cmd.Flags().StringVar(&target.Title, "title", "", "entry title")
	cmd.Flags().StringVar(&target.Username, "username", "", "account username")
	cmd.Flags().StringVar(&target.URL, "url", "", "account URL")
	cmd.Flags().StringVar(&target.Notes, "notes", "", "notes to store encrypted with the password")
	_ = cmd.MarkFlagRequired("title")
}

// readEntry read the entry's metadata from flags, and its password from the user
func readEntry(target entryArgs) (models.EntryMetadata, models.SecretPayload, error) {
	password, err := readSensitive(envSecret, "Entry password: ", stdinLines)
	if err != nil {
		return models.EntryMetadata{}, models.SecretPayload{}, err
	}
	return models.EntryMetadata{
		Title: target.Title, Username: target.Username, URL: target.URL,
	}, models.NewSecretPayload(password, target.Notes), nil
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a new credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(true, func(
			ctx context.Context, service vault.Service, session *vault.Session,
		) error {
			metadata, secret, err := readEntry(saveArgs)
			if err != nil {
				return err
			}
			stop := startSpinner("Encrypting")
			entry, err := service.Save(ctx, session, metadata, secret, nil)
			stop()
			if err != nil {
				return err
			}
			printSuccess("saved entry " + color.CyanString(entry.ID))
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ENTRY_ID",
	Short: "Replace a credential's password and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(true, func(
			ctx context.Context, service vault.Service, session *vault.Session,
		) error {
			metadata, secret, err := readEntry(updateArgs)
			if err != nil {
				return err
			}
			stop := startSpinner("Encrypting")
			entry, err := service.Update(ctx, session, args[0], metadata, secret, nil)
			stop()
			if err != nil {
				return err
			}
			printSuccess("updated entry " + color.CyanString(entry.ID))
			return nil
		})
	},
}

// --------------------------------------------------------------------------------------
// reveal

var revealCmd = &cobra.Command{
	Use:   "reveal ENTRY_ID...",
	Short: "Decrypt and print credentials",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(true, func(
			ctx context.Context, service vault.Service, session *vault.Session,
		) error {
			stop := startSpinner("Decrypting")
			secrets, err := service.RevealMany(ctx, session, args, nil)
			stop()
			if err != nil {
				return err
			}
			for _, entryID := range args {
				secret := secrets[entryID]
				fmt.Printf("%s\n", color.CyanString(entryID))
				fmt.Printf("  password: %s\n", secret.GetPassword())
				if secret.Notes != nil {
					fmt.Printf("  notes:    %s\n", secret.GetNotes())
				}
			}
			return nil
		})
	},
}

// --------------------------------------------------------------------------------------
// list

var listArgs struct {
	Title    string
	Username string
	Limit    int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials; passwords stay encrypted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters := db.VaultEntryQueryFilter{}
		if listArgs.Title != "" {
			filters.TitleContains = &listArgs.Title
		}
		if listArgs.Username != "" {
			filters.UsernameContains = &listArgs.Username
		}
		if listArgs.Limit > 0 {
			filters.Limit = &listArgs.Limit
		}
		return withVault(false, func(
			ctx context.Context, service vault.Service, _ *vault.Session,
		) error {
			entries, err := service.List(ctx, cmdArgs.TenantID, filters, nil)
			if err != nil {
				return err
			}
			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTITLE\tUSERNAME\tURL\tUPDATED")
			for _, entry := range entries {
				fmt.Fprintf(
					writer,
					"%s\t%s\t%s\t%s\t%s\n",
					entry.ID,
					entry.Title,
					entry.Username,
					entry.URL,
					entry.UpdatedAt.Format("2006-01-02 15:04"),
				)
			}
			return writer.Flush()
		})
	},
}

// --------------------------------------------------------------------------------------
// delete

var deleteCmd = &cobra.Command{
	Use:   "delete ENTRY_ID",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(false, func(
			ctx context.Context, service vault.Service, _ *vault.Session,
		) error {
			if err := service.Delete(ctx, cmdArgs.TenantID, args[0], nil); err != nil {
				return err
			}
			printSuccess("deleted entry " + color.CyanString(args[0]))
			return nil
		})
	},
}

func init() {
	addEntryFlags(saveCmd, &saveArgs)
	addEntryFlags(updateCmd, &updateArgs)

	listCmd.Flags().StringVar(&listArgs.Title, "title", "", "case-insensitive title search")
	listCmd.Flags().StringVar(&listArgs.Username, "username", "", "case-insensitive username search")
	listCmd.Flags().IntVar(&listArgs.Limit, "limit", 0, "max entries to list")
}
