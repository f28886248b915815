package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tycoonhq/tycoon-backend/models"
)

// LedgerService moves funds between player wallets. Payer/payee id 0 is
// the bank, which has no balance row. A transfer is idempotent per
// memo: replaying a settlement memo is a no-op, so the recovery sweep
// can retry a crashed settlement without double-charging.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) Transfer(payerID, payeeID uint, amount float64, memo string) error {
	if amount < 0 {
		return fmt.Errorf("transfer amount %.2f is negative", amount)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Transaction
		err := tx.Where("memo = ?", memo).First(&existing).Error
		if err == nil {
			return nil // already applied
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var balanceAfter float64
		if payerID != 0 {
			var payer models.Player
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payer, payerID).Error; err != nil {
				return fmt.Errorf("payer %d: %w", payerID, err)
			}
			if payer.Balance < amount {
				return fmt.Errorf("payer %d has insufficient funds: %.2f < %.2f", payerID, payer.Balance, amount)
			}
			payer.Balance -= amount
			if err := tx.Save(&payer).Error; err != nil {
				return err
			}
			balanceAfter = payer.Balance
		}

		if payeeID != 0 {
			var payee models.Player
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payee, payeeID).Error; err != nil {
				return fmt.Errorf("payee %d: %w", payeeID, err)
			}
			payee.Balance += amount
			if err := tx.Save(&payee).Error; err != nil {
				return err
			}
		}

		return tx.Create(&models.Transaction{
			PayerID:      payerID,
			PayeeID:      payeeID,
			Type:         models.SettlementTransaction,
			Amount:       amount,
			Memo:         memo,
			BalanceAfter: balanceAfter,
		}).Error
	})
}
