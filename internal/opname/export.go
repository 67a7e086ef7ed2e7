package opname

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"assunnahmart/backend/internal/domain"
)

var exportHeader = []string{
	"barang_id", "nama_barang", "satuan", "harga_beli",
	"stok_sistem", "real_stok_total", "selisih_stok", "nilai_selisih",
	"jumlah_pengguna_input", "status",
}

// RecapCSV renders the rows of an already-computed recap. Export is pure
// formatting of fetched data; it never goes back to the store.
func RecapCSV(recap domain.OpnameRecap) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, row := range recap.Rows {
		record := []string{
			row.ProductID,
			row.ProductName,
			row.Unit,
			strconv.FormatInt(row.PurchasePrice, 10),
			strconv.Itoa(row.SystemStock),
			strconv.Itoa(row.RealStockTotal),
			strconv.Itoa(row.Variance),
			strconv.FormatInt(row.VarianceValue, 10),
			strconv.Itoa(row.ObserverCount),
			VarianceSide(row.Variance),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecapXLSX renders the recap as a single-sheet workbook: a small summary
// block followed by the per-product rows.
func RecapXLSX(recap domain.OpnameRecap) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Rekap Opname"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	summaryCells := [][]any{
		{"Periode", fmt.Sprintf("%s s/d %s", recap.DateFrom, recap.DateTo)},
		{"Total produk", recap.Summary.TotalProducts},
		{"Selisih positif", recap.Summary.SystemHigher},
		{"Selisih negatif", recap.Summary.RealHigher},
		{"Seimbang", recap.Summary.Balanced},
		{"Akurasi (%)", recap.Summary.AccuracyRate},
		{"Total selisih absolut", recap.Summary.AbsoluteVariance},
		{"Total nilai selisih", recap.Summary.VarianceValue},
	}
	for i, pair := range summaryCells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &pair); err != nil {
			return nil, err
		}
	}

	headerRow := len(summaryCells) + 2
	cell, err := excelize.CoordinatesToCellName(1, headerRow)
	if err != nil {
		return nil, err
	}
	header := make([]any, 0, len(exportHeader))
	for _, col := range exportHeader {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return nil, err
	}

	for i, row := range recap.Rows {
		cell, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.ProductID, row.ProductName, row.Unit, row.PurchasePrice,
			row.SystemStock, row.RealStockTotal, row.Variance, row.VarianceValue,
			row.ObserverCount, VarianceSide(row.Variance),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFileName builds a download name like rekap-opname-2024-01-01-2024-01-31.csv.
func ExportFileName(recap domain.OpnameRecap, ext string) string {
	from := recap.DateFrom
	to := recap.DateTo
	if from == "" {
		from = time.Now().UTC().Format("2006-01-02")
	}
	if to == "" {
		to = from
	}
	return fmt.Sprintf("rekap-opname-%s-%s.%s", from, to, ext)
}
