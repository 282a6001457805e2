// Package tags owns the Tag model and deterministic keyword categorization.
package tags

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoKeywords rejects tags that could never match anything.
var ErrNoKeywords = errors.New("tag must have at least one keyword")

// Tag is a user- or system-defined category with an ordered,
// case-insensitive keyword list.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon,omitempty"`
	IsDefault bool      `json:"is_default"`
	ParentID  string    `json:"parent_id,omitempty"` // single level only
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a user tag. Keywords are stored lower-cased and trimmed,
// preserving order.
func New(name string, keywords []string, color string) (*Tag, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoKeywords
	}
	now := time.Now().UTC()
	return &Tag{
		ID:        uuid.NewString(),
		Name:      name,
		Keywords:  cleaned,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Defaults returns the built-in tag set. IDs are fixed so that re-seeding a
// store never duplicates them.
func Defaults() []Tag {
	mk := func(id, name, color string, keywords ...string) Tag {
		return Tag{ID: id, Name: name, Keywords: keywords, Color: color, IsDefault: true}
	}
	return []Tag{
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a001", "Food & Dining", "#e74c3c",
			"restaurant", "swiggy", "zomato", "cafe", "food", "dining", "eatery"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a002", "Groceries", "#27ae60",
			"grocery", "supermarket", "bigbasket", "mart", "bazaar", "kirana"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a003", "Transport", "#2980b9",
			"uber", "ola", "metro", "fuel", "petrol", "irctc", "cab", "parking"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a004", "Shopping", "#8e44ad",
			"amazon", "flipkart", "myntra", "shopping", "store"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a005", "Entertainment", "#d35400",
			"netflix", "spotify", "hotstar", "prime video", "cinema", "bookmyshow"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a006", "Utilities", "#16a085",
			"electricity", "water", "broadband", "airtel", "jio", "recharge", "bill"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a007", "Housing", "#c0392b",
			"rent", "maintenance", "society", "housing"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a008", "Health", "#f39c12",
			"pharmacy", "hospital", "clinic", "medical", "apollo"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a009", "Salary", "#2ecc71",
			"salary", "payroll", "stipend"),
		mk("5f2a9f0e-6b1c-4d6e-9a71-0c7f3f45a010", "Loans & EMI", "#7f8c8d",
			"emi", "loan", "installment", "repayment"),
	}
}
