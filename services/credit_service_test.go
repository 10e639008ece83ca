package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/models"
)

func TestGate(t *testing.T) {
	cases := []struct {
		name     string
		balance  int
		role     string
		price    int
		admitted bool
	}{
		{"non-model recipient with zero balance", 0, models.RoleUser, 10, true},
		{"admin recipient", 0, models.RoleAdmin, 10, true},
		{"model recipient, exact balance", 10, models.RoleModel, 10, true},
		{"model recipient, plenty", 100, models.RoleModel, 10, true},
		{"model recipient, one short", 9, models.RoleModel, 10, false},
		{"model recipient, zero balance", 0, models.RoleModel, 5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Gate(tc.balance, tc.role, tc.price)
			if decision.Admitted != tc.admitted {
				t.Fatalf("Gate(%d, %q, %d).Admitted = %v, want %v",
					tc.balance, tc.role, tc.price, decision.Admitted, tc.admitted)
			}
			if !decision.Admitted {
				if decision.Current != tc.balance || decision.Required != tc.price {
					t.Errorf("rejection detail = %d/%d, want %d/%d",
						decision.Current, decision.Required, tc.balance, tc.price)
				}
			}
		})
	}
}

func TestGateNeverMutatesBalance(t *testing.T) {
	balance := 50
	Gate(balance, models.RoleModel, 10)
	if balance != 50 {
		t.Fatal("gate must only read the balance")
	}
}

func newCreditFixture() (*fakeTransactionRepo, *fakeAuthRepo, CreditService) {
	txnRepo := newFakeTransactionRepo()
	authRepo := newFakeAuthRepo(
		&models.User{Model: models.Model{ID: 1}, Name: "Carlos", Credits: 42, Role: models.RoleUser},
	)
	svc := NewCreditService(txnRepo, authRepo, &config.Config{DefaultMessagePrice: 5})
	return txnRepo, authRepo, svc
}

func TestPurchaseCreatesPendingTransaction(t *testing.T) {
	txnRepo, _, svc := newCreditFixture()

	idx := 1
	txn, apiErr := svc.Purchase(1, &models.PurchaseRequest{PackageIndex: &idx, PaymentMethod: "pix"})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if txn.Status != models.TransactionPending {
		t.Errorf("status = %q, want pending", txn.Status)
	}
	pkg := svc.Packages()[idx]
	if txn.Credits != pkg.Credits+pkg.Bonus {
		t.Errorf("credits = %d, want %d", txn.Credits, pkg.Credits+pkg.Bonus)
	}
	if txn.Amount != pkg.Price {
		t.Errorf("amount = %v, want %v", txn.Amount, pkg.Price)
	}
	if !strings.HasPrefix(txn.TransactionID, "TXN-") {
		t.Errorf("transaction id = %q", txn.TransactionID)
	}
	if len(txnRepo.created) != 1 {
		t.Fatalf("expected one created transaction, got %d", len(txnRepo.created))
	}
}

func TestPurchaseRejectsInvalidPackage(t *testing.T) {
	_, _, svc := newCreditFixture()

	bad := []int{-1, len(svc.Packages())}
	for _, idx := range bad {
		idx := idx
		if _, apiErr := svc.Purchase(1, &models.PurchaseRequest{PackageIndex: &idx}); apiErr == nil || apiErr.Status != http.StatusBadRequest {
			t.Errorf("index %d: expected 400, got %v", idx, apiErr)
		}
	}
	if _, apiErr := svc.Purchase(1, &models.PurchaseRequest{}); apiErr == nil || apiErr.Status != http.StatusBadRequest {
		t.Errorf("nil index: expected 400, got %v", apiErr)
	}
}

func TestBalance(t *testing.T) {
	_, _, svc := newCreditFixture()

	credits, apiErr := svc.Balance(1)
	if apiErr != nil || credits != 42 {
		t.Fatalf("Balance(1) = %d, %v", credits, apiErr)
	}
	if _, apiErr := svc.Balance(99); apiErr == nil || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %v", apiErr)
	}
}

func TestPaymentWebhookCreditsOnce(t *testing.T) {
	txnRepo, _, svc := newCreditFixture()
	txnRepo.txns["TXN-1"] = &models.Transaction{
		UserID: 1, TransactionID: "TXN-1", Credits: 110, Status: models.TransactionPending,
	}

	req := &models.PaymentWebhookRequest{TransactionID: "TXN-1", Status: "approved"}

	txn, apiErr := svc.ProcessPaymentWebhook(req)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if txn.Status != models.TransactionCompleted {
		t.Errorf("status = %q, want completed", txn.Status)
	}
	if txnRepo.completeCalls != 1 {
		t.Fatalf("expected one credit, got %d", txnRepo.completeCalls)
	}

	// provider retry: acknowledged but never credited twice
	txn, apiErr = svc.ProcessPaymentWebhook(req)
	if apiErr != nil {
		t.Fatalf("retry must be acknowledged: %v", apiErr)
	}
	if txn.Status != models.TransactionCompleted {
		t.Errorf("retry status = %q, want completed", txn.Status)
	}
	if txnRepo.completeCalls != 1 {
		t.Errorf("retry credited again: %d complete calls", txnRepo.completeCalls)
	}
}

func TestPaymentWebhookRejection(t *testing.T) {
	txnRepo, _, svc := newCreditFixture()
	txnRepo.txns["TXN-2"] = &models.Transaction{
		UserID: 1, TransactionID: "TXN-2", Credits: 50, Status: models.TransactionPending,
	}

	txn, apiErr := svc.ProcessPaymentWebhook(&models.PaymentWebhookRequest{TransactionID: "TXN-2", Status: "refused"})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if txn.Status != models.TransactionFailed || txnRepo.failedCalls != 1 {
		t.Errorf("status = %q, failed calls = %d", txn.Status, txnRepo.failedCalls)
	}
	if txnRepo.completeCalls != 0 {
		t.Error("a refused payment must never credit")
	}
}

func TestPaymentWebhookValidation(t *testing.T) {
	_, _, svc := newCreditFixture()

	if _, apiErr := svc.ProcessPaymentWebhook(&models.PaymentWebhookRequest{Status: "approved"}); apiErr == nil || apiErr.Status != http.StatusBadRequest {
		t.Errorf("missing transaction id: expected 400, got %v", apiErr)
	}
	if _, apiErr := svc.ProcessPaymentWebhook(&models.PaymentWebhookRequest{TransactionID: "TXN-9", Status: "approved"}); apiErr == nil || apiErr.Status != http.StatusNotFound {
		t.Errorf("unknown transaction: expected 404, got %v", apiErr)
	}
}
