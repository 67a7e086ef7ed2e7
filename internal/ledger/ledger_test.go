package ledger

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/store"
)

func TestValidatePayment(t *testing.T) {
	valid := domain.PaymentRequest{
		PartyID:     "sup-1",
		Amount:      150000,
		PaymentDate: "2026-08-30",
		KasirName:   "Siti",
	}
	if err := ValidatePayment(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*domain.PaymentRequest)
	}{
		{"missing party", func(r *domain.PaymentRequest) { r.PartyID = "" }},
		{"zero amount", func(r *domain.PaymentRequest) { r.Amount = 0 }},
		{"negative amount", func(r *domain.PaymentRequest) { r.Amount = -500 }},
		{"missing kasir", func(r *domain.PaymentRequest) { r.KasirName = "" }},
		{"bad date", func(r *domain.PaymentRequest) { r.PaymentDate = "30-08-2026" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := ValidatePayment(req)
			if !errors.Is(err, store.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCheckOutstanding(t *testing.T) {
	if err := CheckOutstanding(100000, 100000); err != nil {
		t.Fatalf("exact payoff should be allowed: %v", err)
	}
	if err := CheckOutstanding(100000, 100001); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("overpayment should be rejected, got %v", err)
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	req := domain.BatchPaymentRequest{
		PaymentDate: "2026-08-30",
		KasirName:   "Siti",
		Items: []domain.BatchPaymentItem{
			{CustomerID: "cus-a", Amount: 50000},
			{CustomerID: "cus-b", Amount: 999999999},
			{CustomerID: "cus-c", Amount: 25000},
		},
	}

	result := RunBatch(req, func(item domain.BatchPaymentItem) (string, error) {
		if item.CustomerID == "cus-b" {
			return "", fmt.Errorf("jumlah melebihi sisa tagihan")
		}
		return "pay-" + item.CustomerID, nil
	})

	if result.SuccessCount != 2 || result.FailCount != 1 {
		t.Fatalf("expected 2 success / 1 fail, got %d/%d", result.SuccessCount, result.FailCount)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 item results, got %d", len(result.Items))
	}
	if result.Items[0].Status != "success" || result.Items[0].PaymentID != "pay-cus-a" {
		t.Fatalf("unexpected first item: %+v", result.Items[0])
	}
	if result.Items[1].Status != "failed" || !strings.Contains(result.Items[1].Error, "melebihi sisa tagihan") {
		t.Fatalf("failure message not preserved: %+v", result.Items[1])
	}
	if result.Items[2].Status != "success" {
		t.Fatalf("item after failure should still be processed: %+v", result.Items[2])
	}
}

func TestRunBatchEmpty(t *testing.T) {
	result := RunBatch(domain.BatchPaymentRequest{}, func(domain.BatchPaymentItem) (string, error) {
		t.Fatal("pay should not be called")
		return "", nil
	})
	if result.SuccessCount != 0 || result.FailCount != 0 || len(result.Items) != 0 {
		t.Fatalf("unexpected result for empty batch: %+v", result)
	}
}
