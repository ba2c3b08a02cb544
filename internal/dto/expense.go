package dto

import (
	"github.com/shopspring/decimal"
)

// ExpenseShareInput is one participant row of an expense submission. Share
// is the amount this participant owes toward the expense; exactly the
// participants with zero share absorb the remainder.
type ExpenseShareInput struct {
	UserID string          `json:"userId" binding:"required"`
	Share  decimal.Decimal `json:"share"`
}

// AddExpenseRequest is the body of POST /rooms/:roomID/expense. UserID is
// the spender; CreatedBy is whoever filled in the form.
type AddExpenseRequest struct {
	UserID      string              `json:"userId" binding:"required"`
	Amount      decimal.Decimal     `json:"amount" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Date        string              `json:"date"` // YYYY-MM-DD, server fills when empty
	Time        string              `json:"time"` // HH:MM AM/PM, server fills when empty
	Users       []ExpenseShareInput `json:"users" binding:"required"`
	CreatedBy   string              `json:"createdBy" binding:"required"`
}
