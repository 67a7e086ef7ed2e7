// Package ledger holds the pure rules for receivable (piutang) and payable
// (hutang) payments: request validation, overpayment checks and the batch
// runner. Persistence and balance lookups stay in the store layer.
package ledger

import (
	"fmt"
	"time"

	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/store"
)

const dateLayout = "2006-01-02"

// ValidatePayment checks a single payment request before any store call.
func ValidatePayment(req domain.PaymentRequest) error {
	if req.PartyID == "" {
		return fmt.Errorf("%w: party_id wajib diisi", store.ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: jumlah harus lebih dari 0", store.ErrValidation)
	}
	if req.KasirName == "" {
		return fmt.Errorf("%w: kasir_name wajib diisi", store.ErrValidation)
	}
	if _, err := time.Parse(dateLayout, req.PaymentDate); err != nil {
		return fmt.Errorf("%w: tanggal_bayar harus berformat YYYY-MM-DD", store.ErrValidation)
	}
	return nil
}

// CheckOutstanding rejects payments beyond the party's remaining balance.
func CheckOutstanding(outstanding int64, amount int64) error {
	if amount > outstanding {
		return fmt.Errorf("%w: jumlah %d melebihi sisa tagihan %d", store.ErrValidation, amount, outstanding)
	}
	return nil
}

// RunBatch applies pay to every item independently. One failing item never
// aborts the rest; its error message is preserved in the per-item result.
func RunBatch(req domain.BatchPaymentRequest, pay func(domain.BatchPaymentItem) (string, error)) domain.BatchPaymentResult {
	result := domain.BatchPaymentResult{
		Items: make([]domain.BatchPaymentItemResult, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		itemResult := domain.BatchPaymentItemResult{CustomerID: item.CustomerID}

		paymentID, err := pay(item)
		if err != nil {
			itemResult.Status = "failed"
			itemResult.Error = err.Error()
			result.FailCount++
		} else {
			itemResult.Status = "success"
			itemResult.PaymentID = paymentID
			result.SuccessCount++
		}
		result.Items = append(result.Items, itemResult)
	}
	return result
}
