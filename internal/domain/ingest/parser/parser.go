// Package parser turns decoded statement spreadsheets into canonical
// transactions. It locates the header row among account-info noise, resolves
// heterogeneous column names, and normalizes locale-specific dates and
// amounts. Fatal failures produce exactly one diagnostic and zero
// transactions; row-level problems skip only the offending row.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/sniffer"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

var (
	// ErrBadPassword covers both wrong and absent passwords on an
	// encrypted container; the decoder cannot distinguish the two.
	ErrBadPassword = errors.New("workbook is encrypted and the password was wrong or missing")
	ErrUnreadable  = errors.New("workbook could not be decoded")
)

// DiagnosticLevel distinguishes row-level warnings from fatal errors.
type DiagnosticLevel string

const (
	LevelWarning DiagnosticLevel = "warning"
	LevelError   DiagnosticLevel = "error"
)

// Diagnostic is one user-facing parse finding. Row is 1-based; 0 means the
// finding applies to the whole file.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Row     int             `json:"row,omitempty"`
	Column  string          `json:"column,omitempty"`
	Message string          `json:"message"`
}

func warn(row int, column, message string) *Diagnostic {
	return &Diagnostic{Level: LevelWarning, Row: row, Column: column, Message: message}
}

// Metadata describes the parse itself.
type Metadata struct {
	SourceFile       string    `json:"source_file"`
	BankLabel        string    `json:"bank_label,omitempty"`
	TransactionCount int       `json:"transaction_count"`
	ParsedAt         time.Time `json:"parsed_at"`
}

// ParseResult is the complete outcome of one ingestion run.
type ParseResult struct {
	Success      bool                      `json:"success"`
	Transactions []transaction.Transaction `json:"transactions"`
	Range        *transaction.DateRange    `json:"range,omitempty"`
	Diagnostics  []Diagnostic              `json:"diagnostics,omitempty"`
	Metadata     Metadata                  `json:"metadata"`
}

// Parser drives ingestion for one statement blob at a time. It holds no
// per-file state, so one Parser may be reused across files.
type Parser struct {
	logger *slog.Logger
}

// New creates a statement parser. A nil logger disables logging.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{logger: logger}
}

// Parse ingests a statement byte buffer. password may be empty for plain
// workbooks. importedAt is injected by the caller so that identical input
// always yields byte-identical transaction sets.
//
// Fatal ingestion failures return a non-nil error alongside a result that
// carries zero transactions and the single corresponding diagnostic.
func (p *Parser) Parse(data []byte, password, sourceFile string, importedAt time.Time) (*ParseResult, error) {
	result := &ParseResult{
		Metadata: Metadata{SourceFile: sourceFile, ParsedAt: importedAt},
	}

	if err := sniffer.Validate(data); err != nil {
		return p.fatal(result, err, "file is not a readable statement workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: password})
	if err != nil {
		// The decoder raises one way for every failure mode; the magic
		// bytes tell us which message the user should see.
		if sniffer.IsEncrypted(data) {
			return p.fatal(result, ErrBadPassword, ErrBadPassword.Error())
		}
		return p.fatal(result, ErrUnreadable, ErrUnreadable.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return p.fatal(result, ErrUnreadable, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return p.fatal(result, ErrUnreadable, fmt.Sprintf("failed to read sheet %s", sheets[0]))
	}

	headerIdx, err := LocateHeaderRow(rows)
	if err != nil {
		return p.fatal(result, err, "no header row found in the first 40 rows")
	}
	result.Metadata.BankLabel = bankLabel(rows[:headerIdx])

	mapping, err := MapColumns(rows[headerIdx])
	if err != nil {
		return p.fatal(result, err, err.Error())
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		rowNum := i + 1 // 1-based for diagnostics
		tx, diag := normalizeRow(rows[i], rowNum, mapping, sourceFile, importedAt)
		if diag != nil {
			result.Diagnostics = append(result.Diagnostics, *diag)
			p.logger.Warn("skipping statement row",
				"file", sourceFile, "row", diag.Row, "column", diag.Column, "reason", diag.Message)
			continue
		}
		if tx == nil {
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	result.Success = true
	result.Range = transaction.RangeOf(result.Transactions)
	result.Metadata.TransactionCount = len(result.Transactions)
	p.logger.Info("parsed statement",
		"file", sourceFile, "transactions", len(result.Transactions), "warnings", len(result.Diagnostics))
	return result, nil
}

// fatal records the single diagnostic for an aborted parse.
func (p *Parser) fatal(result *ParseResult, err error, message string) (*ParseResult, error) {
	result.Success = false
	result.Transactions = nil
	result.Diagnostics = []Diagnostic{{Level: LevelError, Message: message}}
	p.logger.Error("statement parse failed", "file", result.Metadata.SourceFile, "error", err)
	return result, err
}

// bankLabel extracts a display label from the metadata rows above the
// header, typically the bank or account holder line.
func bankLabel(preamble [][]string) string {
	for _, row := range preamble {
		for _, cell := range row {
			if c := normalizeCell(cell); c != "" {
				return strings.TrimSpace(cell)
			}
		}
	}
	return ""
}
