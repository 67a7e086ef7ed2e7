package opname

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"assunnahmart/backend/internal/domain"
)

func TestBuildRecapVarianceMatchesDefinition(t *testing.T) {
	aggregates := []domain.VarianceAggregate{
		{ProductID: "brg-1", ProductName: "Beras 5kg", Unit: "sak", PurchasePrice: 62000, SystemStock: 12, RealStockTotal: 12, ObserverCount: 2},
		{ProductID: "brg-2", ProductName: "Minyak Goreng 1L", Unit: "pcs", PurchasePrice: 14000, SystemStock: 30, RealStockTotal: 27, ObserverCount: 1},
		{ProductID: "brg-3", ProductName: "Gula Pasir 1kg", Unit: "pcs", PurchasePrice: 15500, SystemStock: 8, RealStockTotal: 13, ObserverCount: 3},
	}

	recap := BuildRecap("2024-01-01", "2024-01-31", aggregates)

	if len(recap.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recap.Rows))
	}
	for _, row := range recap.Rows {
		if row.Variance != row.SystemStock-row.RealStockTotal {
			t.Fatalf("row %s: variance %d != %d - %d", row.ProductID, row.Variance, row.SystemStock, row.RealStockTotal)
		}
		if row.VarianceValue != int64(row.Variance)*row.PurchasePrice {
			t.Fatalf("row %s: variance value %d not %d * %d", row.ProductID, row.VarianceValue, row.Variance, row.PurchasePrice)
		}
	}

	// Largest absolute variance first.
	if recap.Rows[0].ProductID != "brg-3" {
		t.Fatalf("expected brg-3 (|variance|=5) first, got %s", recap.Rows[0].ProductID)
	}
	if recap.Rows[0].Variance != -5 {
		t.Fatalf("expected variance -5 for brg-3, got %d", recap.Rows[0].Variance)
	}

	summary := recap.Summary
	if summary.SystemHigher != 1 || summary.RealHigher != 1 || summary.Balanced != 1 {
		t.Fatalf("unexpected summary split: +%d -%d =%d", summary.SystemHigher, summary.RealHigher, summary.Balanced)
	}
	if summary.AbsoluteVariance != 8 {
		t.Fatalf("expected absolute variance 8, got %d", summary.AbsoluteVariance)
	}
	wantValue := int64(3)*14000 + int64(-5)*15500
	if summary.VarianceValue != wantValue {
		t.Fatalf("expected variance value %d, got %d", wantValue, summary.VarianceValue)
	}
}

func TestAccuracyRate(t *testing.T) {
	cases := []struct {
		balanced int
		total    int
		want     string
	}{
		{0, 0, "100"},
		{3, 4, "75.0"},
		{4, 4, "100.0"},
		{0, 3, "0.0"},
		{1, 3, "33.3"},
	}
	for _, tc := range cases {
		if got := AccuracyRate(tc.balanced, tc.total); got != tc.want {
			t.Fatalf("AccuracyRate(%d, %d) = %q, want %q", tc.balanced, tc.total, got, tc.want)
		}
	}
}

func TestPreviewAdditionalCount(t *testing.T) {
	preview := Preview(12, 10, 5)

	if preview.RealStockTotal != 15 {
		t.Fatalf("expected preview real total 15, got %d", preview.RealStockTotal)
	}
	if preview.Variance != -3 {
		t.Fatalf("expected preview variance -3, got %d", preview.Variance)
	}
	if preview.Side != domain.VarianceRealHigher {
		t.Fatalf("expected side %q, got %q", domain.VarianceRealHigher, preview.Side)
	}
}

func TestPreviewBalancedAndSystemHigher(t *testing.T) {
	if got := Preview(10, 4, 6); got.Side != domain.VarianceBalanced || got.Variance != 0 {
		t.Fatalf("expected balanced preview, got %+v", got)
	}
	if got := Preview(10, 2, 3); got.Side != domain.VarianceSystemHigher || got.Variance != 5 {
		t.Fatalf("expected system-higher preview, got %+v", got)
	}
}

func TestBuildRecapEmptyRange(t *testing.T) {
	recap := BuildRecap("2024-02-01", "2024-02-01", nil)

	if len(recap.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(recap.Rows))
	}
	if recap.Summary.AccuracyRate != "100" {
		t.Fatalf("expected accuracy 100 for empty recap, got %q", recap.Summary.AccuracyRate)
	}
	if recap.Summary.TotalProducts != 0 {
		t.Fatalf("expected zero products, got %d", recap.Summary.TotalProducts)
	}
}

func TestRecapCSV(t *testing.T) {
	recap := BuildRecap("2024-01-01", "2024-01-31", []domain.VarianceAggregate{
		{
			ProductID: "brg-2", ProductName: "Minyak Goreng 1L", Unit: "pcs",
			PurchasePrice: 14000, SystemStock: 30, RealStockTotal: 27, ObserverCount: 1,
			Details: []domain.ObserverDetail{
				{KasirID: "kasir1", KasirName: "kasir1", CountedQty: 27, ObservedAt: time.Now().UTC()},
			},
		},
	})

	out, err := RecapCSV(recap)
	if err != nil {
		t.Fatalf("csv export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "barang_id,nama_barang") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Minyak Goreng 1L") || !strings.Contains(lines[1], ",3,") {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestRecapXLSXProducesWorkbook(t *testing.T) {
	recap := BuildRecap("2024-01-01", "2024-01-31", []domain.VarianceAggregate{
		{ProductID: "brg-1", ProductName: "Beras 5kg", Unit: "sak", PurchasePrice: 62000, SystemStock: 12, RealStockTotal: 10, ObserverCount: 2},
	})

	out, err := RecapXLSX(recap)
	if err != nil {
		t.Fatalf("xlsx export failed: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Fatalf("expected zip container, got %q", out[:2])
	}
}

func TestExportFileName(t *testing.T) {
	recap := domain.OpnameRecap{DateFrom: "2024-01-01", DateTo: "2024-01-31"}
	if got := ExportFileName(recap, "csv"); got != "rekap-opname-2024-01-01-2024-01-31.csv" {
		t.Fatalf("unexpected file name: %s", got)
	}
}
