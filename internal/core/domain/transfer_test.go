package domain_test

import (
	"testing"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeMembers() []domain.User {
	return []domain.User{
		{UserID: "u0", Username: "alice"},
		{UserID: "u1", Username: "bob"},
		{UserID: "u2", Username: "carol"},
	}
}

func TestDeriveTransfers_Cycle(t *testing.T) {
	// alice owes bob 50, bob owes carol 30, carol owes alice 20: no mutual
	// pairs, so collapse is a no-op and all three debts survive.
	l := ledgerFromInts([][]int64{
		{0, 50, 0},
		{0, 0, 30},
		{20, 0, 0},
	})
	l.Collapse()

	transfers, err := domain.DeriveTransfers(l, threeMembers())
	require.NoError(t, err)
	require.Len(t, transfers, 3)

	assert.Equal(t, "u0", transfers[0].SenderID)
	assert.Equal(t, "u1", transfers[0].ReceiverID)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, "u1", transfers[1].SenderID)
	assert.Equal(t, "u2", transfers[1].ReceiverID)
	assert.True(t, transfers[1].Amount.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, "u2", transfers[2].SenderID)
	assert.Equal(t, "u0", transfers[2].ReceiverID)
	assert.True(t, transfers[2].Amount.Equal(decimal.NewFromInt(20)))

	for _, tr := range transfers {
		assert.False(t, tr.IsReceived, "derived transfers start pending")
	}
}

func TestDeriveTransfers_MutualPairCollapsesToSingleEntry(t *testing.T) {
	l := ledgerFromInts([][]int64{
		{0, 100, 0},
		{40, 0, 0},
		{0, 0, 0},
	})
	l.Collapse()

	transfers, err := domain.DeriveTransfers(l, threeMembers())
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, "u0", transfers[0].SenderID)
	assert.Equal(t, "u1", transfers[0].ReceiverID)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromInt(60)))
}

func TestDeriveTransfers_Idempotent(t *testing.T) {
	l := ledgerFromInts([][]int64{
		{0, 50, 0},
		{0, 0, 30},
		{20, 0, 0},
	})
	first, err := domain.DeriveTransfers(l, threeMembers())
	require.NoError(t, err)
	second, err := domain.DeriveTransfers(l, threeMembers())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key(), "entry %d identity differs", i)
	}
}

func TestDeriveTransfers_MemberMismatch(t *testing.T) {
	l := domain.NewLedger(3)
	_, err := domain.DeriveTransfers(l, threeMembers()[:2])
	assert.Error(t, err)
}

func TestMergeConfirmations(t *testing.T) {
	fifty := decimal.NewFromInt(50)
	previous := []domain.Transfer{
		{SenderID: "u0", ReceiverID: "u1", Amount: fifty, IsReceived: true},
		{SenderID: "u1", ReceiverID: "u2", Amount: decimal.NewFromInt(30), IsReceived: false},
	}

	t.Run("unchanged identity keeps confirmation", func(t *testing.T) {
		fresh := []domain.Transfer{
			{SenderID: "u0", ReceiverID: "u1", Amount: fifty},
			{SenderID: "u1", ReceiverID: "u2", Amount: decimal.NewFromInt(30)},
		}
		merged := domain.MergeConfirmations(fresh, previous)
		assert.True(t, merged[0].IsReceived)
		assert.False(t, merged[1].IsReceived)
	})

	t.Run("changed amount resets to pending", func(t *testing.T) {
		fresh := []domain.Transfer{
			{SenderID: "u0", ReceiverID: "u1", Amount: decimal.NewFromInt(80)},
		}
		merged := domain.MergeConfirmations(fresh, previous)
		assert.False(t, merged[0].IsReceived, "new identity must start pending")
	})

	t.Run("no previous list is a no-op", func(t *testing.T) {
		fresh := []domain.Transfer{
			{SenderID: "u0", ReceiverID: "u1", Amount: fifty},
		}
		merged := domain.MergeConfirmations(fresh, nil)
		assert.False(t, merged[0].IsReceived)
	})
}

func TestAllReceived(t *testing.T) {
	ten := decimal.NewFromInt(10)
	assert.False(t, domain.AllReceived(nil), "empty list is not settled")
	assert.False(t, domain.AllReceived([]domain.Transfer{
		{SenderID: "a", ReceiverID: "b", Amount: ten, IsReceived: true},
		{SenderID: "b", ReceiverID: "c", Amount: ten},
	}))
	assert.True(t, domain.AllReceived([]domain.Transfer{
		{SenderID: "a", ReceiverID: "b", Amount: ten, IsReceived: true},
		{SenderID: "b", ReceiverID: "c", Amount: ten, IsReceived: true},
	}))
}

func TestRoom_MemberIndex(t *testing.T) {
	room := domain.Room{Users: []string{"u0", "u1", "u2"}}
	assert.Equal(t, 1, room.MemberIndex("u1"))
	assert.Equal(t, -1, room.MemberIndex("stranger"))
	assert.True(t, room.IsMember("u2"))
	assert.False(t, room.IsMember(""))
}
