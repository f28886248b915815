package models

import "time"

type TransactionType string

const (
	DepositTransaction    TransactionType = "deposit"
	WithdrawTransaction   TransactionType = "withdraw"
	SettlementTransaction TransactionType = "auction_settlement"
)

// Transaction is one ledger row. Settlement rows carry a memo unique per
// auction so a retried settlement cannot charge the winner twice.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PayerID      uint            `json:"payer_id"` // 0 = bank
	PayeeID      uint            `json:"payee_id"` // 0 = bank
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Memo         string          `gorm:"uniqueIndex" json:"memo"`
	BalanceAfter float64         `json:"balance_after"` // payer balance after, 0 when payer is the bank
	CreatedAt    time.Time       `json:"created_at"`
}
