package model

import (
	"time"

	"gorm.io/gorm"
)

// Finance entry kinds
const (
	FinanceKindIncome  = "income"
	FinanceKindExpense = "expense"
)

// FinanceEntry represents a single financial movement of a church
// (tithe, offering, rent, salary, ...)
type FinanceEntry struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ChurchID    uint           `json:"church_id" gorm:"index;not null"`
	Kind        string         `json:"kind" gorm:"type:varchar(10);not null"` // "income" or "expense"
	Category    string         `json:"category" gorm:"type:varchar(50)"`      // "tithe", "offering", "rent", ...
	Amount      float64        `json:"amount" gorm:"type:numeric(12,2);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Date        time.Time      `json:"date" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// FinanceSummary aggregates entries over a period
type FinanceSummary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	Entries int     `json:"entries"`
}

// SummarizeFinance totals a set of entries. Entries with an unknown kind
// are counted but do not affect the totals.
func SummarizeFinance(entries []FinanceEntry) FinanceSummary {
	var s FinanceSummary
	for _, e := range entries {
		switch e.Kind {
		case FinanceKindIncome:
			s.Income += e.Amount
		case FinanceKindExpense:
			s.Expense += e.Amount
		}
		s.Entries++
	}
	s.Balance = s.Income - s.Expense
	return s
}
