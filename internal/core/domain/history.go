package domain

import "github.com/shopspring/decimal"

// ExpenseShare is one participant's declared share of an expense. A zero
// share marks the participant who absorbs the remainder of the amount.
type ExpenseShare struct {
	UserID string          `json:"userId"`
	Share  decimal.Decimal `json:"share"`
}

// HistoryEntry is an immutable room event: an expense when IsExpense is
// true, otherwise a settlement with a snapshot of the transfers that were
// settled. Date and Time keep the original wire formats (YYYY-MM-DD and
// HH:MM AM/PM).
type HistoryEntry struct {
	IsExpense bool   `json:"isExpense"`
	Date      string `json:"date"`
	Time      string `json:"time"`

	// Expense fields
	Amount          decimal.Decimal `json:"amount,omitempty"`
	Description     string          `json:"description,omitempty"`
	PaidUserID      string          `json:"paidUserId,omitempty"`
	CreatedByUserID string          `json:"createdByUserId,omitempty"`
	Users           []ExpenseShare  `json:"users,omitempty"`

	// Settlement fields
	SettledByUserID string     `json:"settledByUserId,omitempty"`
	Bill            []Transfer `json:"bill,omitempty"` // transfers at settlement time
}
