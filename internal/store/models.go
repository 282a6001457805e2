package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/domain/tags"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// transactionRecord is the flattened row shape. Slice fields are stored as
// JSON text columns; SQLite has no array type worth fighting over.
type transactionRecord struct {
	ID                string `gorm:"primaryKey"`
	Date              time.Time
	Narrative         string
	Reference         string
	Debit             *float64
	Credit            *float64
	Balance           float64
	Amount            float64
	Type              string
	Channel           string
	TagIDs            string
	ManualTagOverride bool
	Note              string
	CustomLabels      string
	Reviewed          bool
	SourceFile        string
	ImportedAt        time.Time
}

func newTransactionRecord(tx transaction.Transaction) (transactionRecord, error) {
	tagIDs, err := marshalStrings(tx.TagIDs)
	if err != nil {
		return transactionRecord{}, fmt.Errorf("failed to encode tag ids for %s: %w", tx.ID, err)
	}
	labels, err := marshalStrings(tx.CustomLabels)
	if err != nil {
		return transactionRecord{}, fmt.Errorf("failed to encode labels for %s: %w", tx.ID, err)
	}
	return transactionRecord{
		ID:                tx.ID,
		Date:              tx.Date,
		Narrative:         tx.Narrative,
		Reference:         tx.Reference,
		Debit:             tx.Debit,
		Credit:            tx.Credit,
		Balance:           tx.Balance,
		Amount:            tx.Amount,
		Type:              string(tx.Type),
		Channel:           string(tx.Channel),
		TagIDs:            tagIDs,
		ManualTagOverride: tx.ManualTagOverride,
		Note:              tx.Note,
		CustomLabels:      labels,
		Reviewed:          tx.Reviewed,
		SourceFile:        tx.SourceFile,
		ImportedAt:        tx.ImportedAt,
	}, nil
}

func (r transactionRecord) toDomain() (transaction.Transaction, error) {
	tagIDs, err := unmarshalStrings(r.TagIDs)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("corrupt tag ids on %s: %w", r.ID, err)
	}
	labels, err := unmarshalStrings(r.CustomLabels)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("corrupt labels on %s: %w", r.ID, err)
	}
	return transaction.Transaction{
		ID:                r.ID,
		Date:              r.Date,
		Narrative:         r.Narrative,
		Reference:         r.Reference,
		Debit:             r.Debit,
		Credit:            r.Credit,
		Balance:           r.Balance,
		Amount:            r.Amount,
		Type:              transaction.Type(r.Type),
		Channel:           transaction.Channel(r.Channel),
		TagIDs:            tagIDs,
		ManualTagOverride: r.ManualTagOverride,
		Note:              r.Note,
		CustomLabels:      labels,
		Reviewed:          r.Reviewed,
		SourceFile:        r.SourceFile,
		ImportedAt:        r.ImportedAt,
	}, nil
}

type tagRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Keywords  string
	Color     string
	Icon      string
	IsDefault bool
	ParentID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newTagRecord(tag tags.Tag) (tagRecord, error) {
	keywords, err := marshalStrings(tag.Keywords)
	if err != nil {
		return tagRecord{}, fmt.Errorf("failed to encode keywords for %s: %w", tag.ID, err)
	}
	return tagRecord{
		ID:        tag.ID,
		Name:      tag.Name,
		Keywords:  keywords,
		Color:     tag.Color,
		Icon:      tag.Icon,
		IsDefault: tag.IsDefault,
		ParentID:  tag.ParentID,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}, nil
}

func (r tagRecord) toDomain() (tags.Tag, error) {
	keywords, err := unmarshalStrings(r.Keywords)
	if err != nil {
		return tags.Tag{}, fmt.Errorf("corrupt keywords on tag %s: %w", r.ID, err)
	}
	return tags.Tag{
		ID:        r.ID,
		Name:      r.Name,
		Keywords:  keywords,
		Color:     r.Color,
		Icon:      r.Icon,
		IsDefault: r.IsDefault,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type budgetRecord struct {
	ID      string `gorm:"primaryKey"`
	TagID   string
	Monthly float64
}

func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
