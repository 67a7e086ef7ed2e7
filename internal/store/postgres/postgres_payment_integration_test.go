package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/store"
)

func TestRecordSupplierPaymentWritesCashLedger(t *testing.T) {
	databaseURL := os.Getenv("ASSUNNAHMART_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set ASSUNNAHMART_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	supplierID := fmt.Sprintf("sup-pay-it-%d", stamp)
	chargeID := fmt.Sprintf("chg-pay-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cash_ledger WHERE source_id IN (SELECT id FROM payments WHERE party_id = $1)`, supplierID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM payments WHERE party_id = $1`, supplierID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ledger_charges WHERE party_id = $1`, supplierID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, supplierID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, nama, telepon, konsinyasi, created_at)
		VALUES ($1, 'Supplier Payment IT', '', false, now())
	`, supplierID); err != nil {
		t.Fatalf("insert supplier: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_charges (id, party_type, party_id, jumlah, source_type, source_id, keterangan, occurred_at)
		VALUES ($1, 'supplier', $2, 200000, 'saldo_awal', null, '', now())
	`, chargeID, supplierID); err != nil {
		t.Fatalf("insert charge: %v", err)
	}

	payment, err := s.RecordPayment(ctx, domain.Payment{
		PartyType:   domain.PartySupplier,
		PartyID:     supplierID,
		Amount:      150000,
		PaymentDate: "2026-08-30",
		KasirName:   "Siti",
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	balance, err := s.GetPartyBalance(ctx, domain.PartySupplier, supplierID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Outstanding != 50000 {
		t.Fatalf("expected outstanding 50000, got %d", balance.Outstanding)
	}

	var direction string
	var amount int64
	if err := s.db.QueryRowContext(ctx, `
		SELECT arah, jumlah
		FROM cash_ledger
		WHERE source_id = $1
	`, payment.ID).Scan(&direction, &amount); err != nil {
		t.Fatalf("query cash ledger: %v", err)
	}
	if direction != domain.CashOut || amount != 150000 {
		t.Fatalf("expected kas keluar 150000, got %s %d", direction, amount)
	}

	_, err = s.RecordPayment(ctx, domain.Payment{
		PartyType:   domain.PartySupplier,
		PartyID:     supplierID,
		Amount:      60000,
		PaymentDate: "2026-08-30",
		KasirName:   "Siti",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}
}
