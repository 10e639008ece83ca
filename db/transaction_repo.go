package db

import (
	"github.com/amorlink/amorlink/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	CreateTransaction(txn *models.Transaction) (*models.Transaction, error)
	FindByTransactionID(transactionID string) (*models.Transaction, error)
	ListTransactions(userID uint, page, limit int) ([]models.Transaction, int64, error)
	// CompleteAndCredit marks the transaction completed and adds its credits
	// to the owner's balance in one transaction.
	CompleteAndCredit(txn *models.Transaction) error
	MarkFailed(txn *models.Transaction) error
}

type transactionRepo struct {
	DB *gorm.DB
}

func NewTransactionRepo(db *GormDB) TransactionRepository {
	return &transactionRepo{db.DB}
}

func (t *transactionRepo) CreateTransaction(txn *models.Transaction) (*models.Transaction, error) {
	if err := t.DB.Create(txn).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.Create transaction error")
	}
	return txn, nil
}

func (t *transactionRepo) FindByTransactionID(transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := t.DB.Where("transaction_id = ?", transactionID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (t *transactionRepo) ListTransactions(userID uint, page, limit int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := t.DB.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "gorm.Count transactions error")
	}

	var txns []models.Transaction
	err := t.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&txns).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "gorm.Find transactions error")
	}
	return txns, total, nil
}

func (t *transactionRepo) CompleteAndCredit(txn *models.Transaction) error {
	return t.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("id = ?", txn.ID).
			Update("status", models.TransactionCompleted).Error; err != nil {
			return errors.Wrap(err, "gorm.Update transaction error")
		}
		return tx.Model(&models.User{}).Where("id = ?", txn.UserID).
			Update("credits", gorm.Expr("credits + ?", txn.Credits)).Error
	})
}

func (t *transactionRepo) MarkFailed(txn *models.Transaction) error {
	return t.DB.Model(&models.Transaction{}).Where("id = ?", txn.ID).
		Update("status", models.TransactionFailed).Error
}
