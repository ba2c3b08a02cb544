package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger is the pairwise debt matrix of a room: Ledger[i][j] is the amount
// member i owes member j, indexed by member position. The diagonal is always
// zero. After Collapse at most one of Ledger[i][j], Ledger[j][i] is nonzero
// for any pair.
type Ledger [][]decimal.Decimal

// NewLedger returns a zeroed n×n ledger.
func NewLedger(n int) Ledger {
	l := make(Ledger, n)
	for i := range l {
		l[i] = make([]decimal.Decimal, n)
	}
	return l
}

// Size returns the number of members the ledger covers.
func (l Ledger) Size() int {
	return len(l)
}

// Validate checks that the ledger is square, its diagonal is zero and no
// cell is negative.
func (l Ledger) Validate() error {
	for i, row := range l {
		if len(row) != len(l) {
			return fmt.Errorf("ledger row %d has %d cells, want %d", i, len(row), len(l))
		}
		for j, cell := range row {
			if i == j && !cell.IsZero() {
				return fmt.Errorf("ledger diagonal [%d][%d] must be zero", i, j)
			}
			if cell.IsNegative() {
				return fmt.Errorf("ledger cell [%d][%d] is negative", i, j)
			}
		}
	}
	return nil
}

// AddDebt records that debtor owes creditor an additional amount.
func (l Ledger) AddDebt(debtor, creditor int, amount decimal.Decimal) error {
	if debtor < 0 || debtor >= len(l) || creditor < 0 || creditor >= len(l) {
		return fmt.Errorf("member index out of range (debtor=%d, creditor=%d, size=%d)", debtor, creditor, len(l))
	}
	if debtor == creditor {
		return fmt.Errorf("member %d cannot owe itself", debtor)
	}
	l[debtor][creditor] = l[debtor][creditor].Add(amount)
	return nil
}

// Collapse nets mutual debts in place: for every unordered pair with both
// directions nonzero, the smaller amount is subtracted from both sides,
// leaving the difference on the owing side and zero on the other. Each
// unordered pair is visited exactly once (j <= i) so nothing is subtracted
// twice.
func (l Ledger) Collapse() {
	for i := 0; i < len(l); i++ {
		for j := 0; j <= i; j++ {
			if i == j {
				continue
			}
			if l[i][j].Sign() <= 0 {
				continue
			}
			if l[i][j].GreaterThan(l[j][i]) {
				l[i][j] = l[i][j].Sub(l[j][i])
				l[j][i] = decimal.Zero
			} else {
				l[j][i] = l[j][i].Sub(l[i][j])
				l[i][j] = decimal.Zero
			}
		}
	}
}

// HasOutstanding reports whether any debt remains in the ledger.
func (l Ledger) HasOutstanding() bool {
	for _, row := range l {
		for _, cell := range row {
			if cell.Sign() > 0 {
				return true
			}
		}
	}
	return false
}

// Reset zeroes every cell, keeping the dimensions.
func (l Ledger) Reset() {
	for i := range l {
		for j := range l[i] {
			l[i][j] = decimal.Zero
		}
	}
}

// Grow returns a copy of the ledger with one extra member appended.
func (l Ledger) Grow() Ledger {
	n := len(l) + 1
	grown := NewLedger(n)
	for i, row := range l {
		copy(grown[i], row)
	}
	return grown
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	c := make(Ledger, len(l))
	for i, row := range l {
		c[i] = make([]decimal.Decimal, len(row))
		copy(c[i], row)
	}
	return c
}
