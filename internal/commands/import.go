package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/dedupe"
	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/parser"
	"github.com/ledgerlens/ledgerlens/internal/domain/tags"
)

func newImportCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "import <statement.xlsx>",
		Short: "Parse a bank statement and merge it into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], password)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "workbook password, if encrypted")

	return cmd
}

func runImport(path, password string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	p := parser.New(a.logger)
	result, err := p.Parse(data, password, filepath.Base(path), time.Now().UTC())
	for _, diag := range result.Diagnostics {
		if diag.Row > 0 {
			fmt.Printf("%s: row %d (%s): %s\n", diag.Level, diag.Row, diag.Column, diag.Message)
		} else {
			fmt.Printf("%s: %s\n", diag.Level, diag.Message)
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	tagSet, err := a.store.LoadTags()
	if err != nil {
		return err
	}
	if len(tagSet) == 0 {
		tagSet = tags.Defaults()
		if err := a.store.SaveTags(tagSet); err != nil {
			return err
		}
		fmt.Printf("seeded %d default tags\n", len(tagSet))
	}

	existing, err := a.store.LoadTransactions()
	if err != nil {
		return err
	}

	merged, stats := dedupe.Merge(existing, result.Transactions)
	merged = tags.NewMatcher(tagSet).Recategorize(merged)

	if err := a.store.SaveTransactions(merged); err != nil {
		return err
	}

	fmt.Printf("parsed %d transactions from %s", len(result.Transactions), result.Metadata.SourceFile)
	if result.Metadata.BankLabel != "" {
		fmt.Printf(" (%s)", result.Metadata.BankLabel)
	}
	fmt.Println()
	fmt.Printf("merged: %d new, %d duplicates skipped, %d total\n",
		stats.NetNew, stats.DuplicatesRemoved, len(merged))
	if stats.Overlap != nil {
		fmt.Printf("upload overlaps existing data from %s to %s\n",
			stats.Overlap.Start.Format("2006-01-02"), stats.Overlap.End.Format("2006-01-02"))
	}
	return nil
}
