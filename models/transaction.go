package models

const (
	TransactionPurchase = "purchase"
	TransactionSpend    = "spend"
	TransactionRefund   = "refund"
)

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionCancelled = "cancelled"
)

// Transaction records a credit purchase. The balance credit happens when the
// payment webhook confirms it, never twice for the same transaction.
type Transaction struct {
	Model
	UserID        uint    `gorm:"not null;index" json:"user_id"`
	Type          string  `gorm:"not null" json:"type"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Credits       int     `gorm:"not null" json:"credits"`
	Status        string  `gorm:"default:pending" json:"status"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID string  `gorm:"uniqueIndex" json:"transaction_id"`
	Description   string  `json:"description"`
}

type CreditPackage struct {
	Credits int     `json:"credits"`
	Price   float64 `json:"price"`
	Bonus   int     `json:"bonus"`
}

type PurchaseRequest struct {
	PackageIndex  *int   `json:"package_index" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}
