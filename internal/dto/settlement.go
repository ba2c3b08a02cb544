package dto

import (
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSettlementResponse is the body of GET /room/:roomID/calculate-settlement.
type CalculateSettlementResponse struct {
	Success   bool              `json:"success"`
	PayerList []domain.Transfer `json:"payerList"`
}

// UpdatePayerListRequest is the body of POST /room/:roomID/update-payerlist,
// the earlier-design endpoint where the client computed the transfer list.
type UpdatePayerListRequest struct {
	PayerList []domain.Transfer `json:"payerList" binding:"required"`
}

// MarkReceivedRequest is the body of POST /room/:roomID/mark-received.
// UserID is the caller; it must equal ReceiverID.
type MarkReceivedRequest struct {
	SenderID   string          `json:"senderId" binding:"required"`
	ReceiverID string          `json:"receiverId" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	UserID     string          `json:"userId" binding:"required"`
}

// MarkReceivedResponse is the body returned by mark-received.
type MarkReceivedResponse struct {
	Success bool `json:"success"`
}

// SettleRequest is the body of POST /room/settle/:roomID. Timestamp is the
// client-generated submission time in Unix milliseconds.
type SettleRequest struct {
	AdminID   string            `json:"adminId" binding:"required"`
	PayerList []domain.Transfer `json:"payerList" binding:"required"`
	SettledBy string            `json:"settledBy" binding:"required"`
	Timestamp int64             `json:"timestamp" binding:"required"`
}
