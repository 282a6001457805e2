// Package store is the local persistence collaborator. The core exchanges
// plain value collections with it through load-all / save-all / delete-by-id
// calls; no storage semantics leak into the detectors. The handle is
// explicit: constructed once by the caller and passed by reference, with the
// schema migrated at open time.
package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerlens/ledgerlens/internal/domain/tags"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Budget caps monthly spending for one tag. It is a collaborator-owned
// value; the detection core never reads it.
type Budget struct {
	ID      string  `json:"id"`
	TagID   string  `json:"tag_id"`
	Monthly float64 `json:"monthly"`
}

// Store wraps a single SQLite database file.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&transactionRecord{}, &tagRecord{}, &budgetRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// LoadTransactions returns every stored transaction.
func (s *Store) LoadTransactions() ([]transaction.Transaction, error) {
	var records []transactionRecord
	if err := s.db.Order("date, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	out := make([]transaction.Transaction, 0, len(records))
	for _, r := range records {
		tx, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// SaveTransactions replaces the whole transaction collection in one database
// transaction, so readers never observe a partially written set.
func (s *Store) SaveTransactions(txs []transaction.Transaction) error {
	records := make([]transactionRecord, 0, len(txs))
	for _, tx := range txs {
		r, err := newTransactionRecord(tx)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	return s.db.Transaction(func(db *gorm.DB) error {
		if err := db.Where("1 = 1").Delete(&transactionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := db.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		return nil
	})
}

// LoadTags returns every stored tag.
func (s *Store) LoadTags() ([]tags.Tag, error) {
	var records []tagRecord
	if err := s.db.Order("name, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	out := make([]tags.Tag, 0, len(records))
	for _, r := range records {
		tag, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

// SaveTags replaces the whole tag collection.
func (s *Store) SaveTags(tagSet []tags.Tag) error {
	records := make([]tagRecord, 0, len(tagSet))
	for _, tag := range tagSet {
		r, err := newTagRecord(tag)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	return s.db.Transaction(func(db *gorm.DB) error {
		if err := db.Where("1 = 1").Delete(&tagRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := db.Create(records).Error; err != nil {
			return fmt.Errorf("failed to save tags: %w", err)
		}
		return nil
	})
}

// DeleteTag removes one tag by id. Deleting a missing tag is not an error.
func (s *Store) DeleteTag(id string) error {
	if err := s.db.Delete(&tagRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", id, err)
	}
	return nil
}

// LoadBudgets returns every stored budget.
func (s *Store) LoadBudgets() ([]Budget, error) {
	var records []budgetRecord
	if err := s.db.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	out := make([]Budget, 0, len(records))
	for _, r := range records {
		out = append(out, Budget{ID: r.ID, TagID: r.TagID, Monthly: r.Monthly})
	}
	return out, nil
}

// SaveBudgets replaces the whole budget collection.
func (s *Store) SaveBudgets(budgets []Budget) error {
	records := make([]budgetRecord, 0, len(budgets))
	for _, b := range budgets {
		records = append(records, budgetRecord{ID: b.ID, TagID: b.TagID, Monthly: b.Monthly})
	}
	return s.db.Transaction(func(db *gorm.DB) error {
		if err := db.Where("1 = 1").Delete(&budgetRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear budgets: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := db.Create(records).Error; err != nil {
			return fmt.Errorf("failed to save budgets: %w", err)
		}
		return nil
	})
}

// DeleteBudget removes one budget by id.
func (s *Store) DeleteBudget(id string) error {
	if err := s.db.Delete(&budgetRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
