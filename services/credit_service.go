package services

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	apiError "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GateDecision is the outcome of the credit gate check.
type GateDecision struct {
	Admitted bool
	Current  int
	Required int
}

// Gate decides whether a sender with the given balance may message a
// recipient. Only model recipients are priced; everyone else is admitted at
// zero charge. The gate reads the balance and never debits it — debiting is
// the payment ledger's job.
func Gate(senderBalance int, recipientRole string, pricePerMessage int) GateDecision {
	if recipientRole != models.RoleModel {
		return GateDecision{Admitted: true}
	}
	if senderBalance < pricePerMessage {
		return GateDecision{Admitted: false, Current: senderBalance, Required: pricePerMessage}
	}
	return GateDecision{Admitted: true, Current: senderBalance, Required: pricePerMessage}
}

var creditPackages = []models.CreditPackage{
	{Credits: 50, Price: 19.90, Bonus: 0},
	{Credits: 100, Price: 34.90, Bonus: 10},
	{Credits: 250, Price: 79.90, Bonus: 50},
	{Credits: 500, Price: 149.90, Bonus: 100},
}

type CreditService interface {
	Packages() []models.CreditPackage
	Purchase(userID uint, req *models.PurchaseRequest) (*models.Transaction, *apiError.Error)
	Transactions(userID uint, page, limit int) ([]models.Transaction, int64, *apiError.Error)
	Balance(userID uint) (int, *apiError.Error)
	ProcessPaymentWebhook(req *models.PaymentWebhookRequest) (*models.Transaction, *apiError.Error)
}

type creditService struct {
	Config          *config.Config
	transactionRepo db.TransactionRepository
	authRepo        db.AuthRepository
}

func NewCreditService(transactionRepo db.TransactionRepository, authRepo db.AuthRepository, conf *config.Config) CreditService {
	return &creditService{
		Config:          conf,
		transactionRepo: transactionRepo,
		authRepo:        authRepo,
	}
}

func (c *creditService) Packages() []models.CreditPackage {
	return creditPackages
}

func (c *creditService) Purchase(userID uint, req *models.PurchaseRequest) (*models.Transaction, *apiError.Error) {
	if req.PackageIndex == nil || *req.PackageIndex < 0 || *req.PackageIndex >= len(creditPackages) {
		return nil, apiError.New("invalid credit package", http.StatusBadRequest)
	}
	selected := creditPackages[*req.PackageIndex]
	totalCredits := selected.Credits + selected.Bonus

	txn := &models.Transaction{
		UserID:        userID,
		Type:          models.TransactionPurchase,
		Amount:        selected.Price,
		Credits:       totalCredits,
		Status:        models.TransactionPending,
		PaymentMethod: req.PaymentMethod,
		Description:   fmt.Sprintf("Purchase of %d credits", totalCredits),
		TransactionID: newTransactionID(),
	}

	txn, err := c.transactionRepo.CreateTransaction(txn)
	if err != nil {
		log.Printf("failed to create transaction: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return txn, nil
}

func newTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), suffix)
}

func (c *creditService) Transactions(userID uint, page, limit int) ([]models.Transaction, int64, *apiError.Error) {
	txns, total, err := c.transactionRepo.ListTransactions(userID, page, limit)
	if err != nil {
		log.Printf("failed to list transactions: %v", err)
		return nil, 0, apiError.ErrInternalServerError
	}
	return txns, total, nil
}

func (c *creditService) Balance(userID uint) (int, *apiError.Error) {
	user, err := c.authRepo.FindUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apiError.New("user not found", http.StatusNotFound)
		}
		return 0, apiError.ErrInternalServerError
	}
	return user.Credits, nil
}

// ProcessPaymentWebhook completes a pending transaction and credits the
// buyer. A transaction already completed is acknowledged and never credited
// twice, so payment-provider retries are safe.
func (c *creditService) ProcessPaymentWebhook(req *models.PaymentWebhookRequest) (*models.Transaction, *apiError.Error) {
	if req.TransactionID == "" || req.Status == "" {
		return nil, apiError.New("incomplete webhook payload", http.StatusBadRequest)
	}

	txn, err := c.transactionRepo.FindByTransactionID(req.TransactionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("transaction not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}

	if txn.Status == models.TransactionCompleted {
		log.Printf("transaction %s already processed", txn.TransactionID)
		return txn, nil
	}

	if req.Status == "approved" || req.Status == "completed" {
		if err := c.transactionRepo.CompleteAndCredit(txn); err != nil {
			log.Printf("failed to complete transaction %s: %v", txn.TransactionID, err)
			return nil, apiError.ErrInternalServerError
		}
		txn.Status = models.TransactionCompleted
		log.Printf("%d credits added to user %d", txn.Credits, txn.UserID)
		return txn, nil
	}

	if err := c.transactionRepo.MarkFailed(txn); err != nil {
		log.Printf("failed to mark transaction %s failed: %v", txn.TransactionID, err)
		return nil, apiError.ErrInternalServerError
	}
	txn.Status = models.TransactionFailed
	return txn, nil
}
