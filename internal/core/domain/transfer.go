package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer is a directed payment obligation derived from the ledger: the
// sender owes the receiver the amount. IsReceived tracks the one-way
// PENDING -> RECEIVED confirmation made by the receiver.
type Transfer struct {
	SenderID   string          `json:"senderId"`
	Sender     string          `json:"sender"` // display name, denormalized for the UI
	ReceiverID string          `json:"receiverId"`
	Receiver   string          `json:"receiver"`
	Amount     decimal.Decimal `json:"amount"`
	IsReceived bool            `json:"isReceived"`
}

// Key returns the transfer's identity: sender, receiver and amount. The
// amount participates on purpose to match the persisted confirmation keys;
// a changed amount therefore yields a new identity with a fresh PENDING
// state.
func (t Transfer) Key() string {
	return fmt.Sprintf("%s|%s|%s", t.SenderID, t.ReceiverID, t.Amount.String())
}

// DeriveTransfers emits one transfer per positive ledger cell in row-major
// order. members must be ordered by ledger index. The caller is expected to
// Collapse the ledger first; derivation itself never mutates it.
func DeriveTransfers(l Ledger, members []User) ([]Transfer, error) {
	if len(members) != l.Size() {
		return nil, fmt.Errorf("member count %d does not match ledger size %d", len(members), l.Size())
	}
	var transfers []Transfer
	for i := range l {
		for j := range l[i] {
			if i == j {
				continue
			}
			if l[i][j].Sign() <= 0 {
				continue
			}
			transfers = append(transfers, Transfer{
				SenderID:   members[i].UserID,
				Sender:     members[i].Username,
				ReceiverID: members[j].UserID,
				Receiver:   members[j].Username,
				Amount:     l[i][j],
			})
		}
	}
	return transfers, nil
}

// MergeConfirmations carries IsReceived over from a previous transfer list
// onto a freshly derived one. A transfer keeps its confirmation only when
// its identity key is unchanged; any new key starts PENDING.
func MergeConfirmations(fresh, previous []Transfer) []Transfer {
	if len(previous) == 0 {
		return fresh
	}
	received := make(map[string]bool, len(previous))
	for _, t := range previous {
		if t.IsReceived {
			received[t.Key()] = true
		}
	}
	for i := range fresh {
		if received[fresh[i].Key()] {
			fresh[i].IsReceived = true
		}
	}
	return fresh
}

// AllReceived reports whether every transfer in a non-empty list has been
// confirmed by its receiver. An empty list is not considered settled.
func AllReceived(transfers []Transfer) bool {
	if len(transfers) == 0 {
		return false
	}
	for _, t := range transfers {
		if !t.IsReceived {
			return false
		}
	}
	return true
}
