package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind is the polarity of a transaction.
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindIncome || k == TransactionKindExpense
}

// ExpenseCategory classifies expenses. Income always carries ExpenseCategoryNotApplicable.
type ExpenseCategory string

const (
	ExpenseCategoryFood          ExpenseCategory = "food"
	ExpenseCategoryTransport     ExpenseCategory = "transport"
	ExpenseCategoryUtilities     ExpenseCategory = "utilities"
	ExpenseCategoryHealth        ExpenseCategory = "health"
	ExpenseCategoryEducation     ExpenseCategory = "education"
	ExpenseCategoryEntertainment ExpenseCategory = "entertainment"
	ExpenseCategoryHousing       ExpenseCategory = "housing"
	ExpenseCategoryOther         ExpenseCategory = "other"
	ExpenseCategoryNotApplicable ExpenseCategory = "not-applicable"
)

// ExpenseCategories lists every accepted category value.
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryTransport,
	ExpenseCategoryUtilities,
	ExpenseCategoryHealth,
	ExpenseCategoryEducation,
	ExpenseCategoryEntertainment,
	ExpenseCategoryHousing,
	ExpenseCategoryOther,
	ExpenseCategoryNotApplicable,
}

// IsValid reports whether c is a known category.
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AttachmentKind is the content family of an attached document.
type AttachmentKind string

const (
	AttachmentKindNone  AttachmentKind = ""
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindPDF   AttachmentKind = "pdf"
)

// Attachment describes the document stored for a transaction. The zero value
// means "no attachment". The storage key is derived from URL, never stored.
type Attachment struct {
	URL          string         `gorm:"column:url;not null;default:''" json:"url"`
	OriginalName string         `gorm:"column:original_name;not null;default:''" json:"originalName"`
	Kind         AttachmentKind `gorm:"column:kind;type:varchar(8);not null;default:''" json:"attachmentKind"`
}

// IsZero reports whether there is no attached document.
func (a Attachment) IsZero() bool {
	return a.URL == ""
}

// Transaction is a single income or expense entry.
type Transaction struct {
	Base
	Date            time.Time       `gorm:"not null;index" json:"date"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Kind            TransactionKind `gorm:"type:varchar(16);not null;index" json:"kind"`
	ExpenseCategory ExpenseCategory `gorm:"type:varchar(32);not null" json:"expenseCategory"`
	Description     string          `gorm:"not null" json:"description"`
	Notes           string          `gorm:"not null" json:"notes"`
	Attachment      Attachment      `gorm:"embedded;embeddedPrefix:attachment_" json:"attachment"`
	CreatedBy       string          `gorm:"type:uuid;not null;index" json:"createdBy"`

	// Relationships
	Author *User `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

// Normalize enforces the kind/category invariant, trims free text and stores
// the date in UTC.
func (t *Transaction) Normalize() {
	switch t.Kind {
	case TransactionKindIncome:
		t.ExpenseCategory = ExpenseCategoryNotApplicable
	case TransactionKindExpense:
		if t.ExpenseCategory == "" || t.ExpenseCategory == ExpenseCategoryNotApplicable {
			t.ExpenseCategory = ExpenseCategoryOther
		}
	}
	t.Description = strings.TrimSpace(t.Description)
	t.Notes = strings.TrimSpace(t.Notes)
	t.Date = t.Date.UTC()
}

// BeforeSave runs on every insert and update so the category rule holds for
// the whole life of the row, not only at creation.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.Normalize()
	return nil
}
