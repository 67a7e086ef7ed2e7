// Package opname turns raw count aggregates into the variance recap served to
// back-office clients. All reconciliation arithmetic lives here, in one place:
// the store layer sums observations and reports system stock, this package
// derives selisih, summary counts and the accuracy rate.
package opname

import (
	"sort"
	"strconv"

	"assunnahmart/backend/internal/domain"
)

// BuildRecap computes one VarianceRow per aggregate. selisih_stok is defined
// as stok_sistem - real_stok_total: positive means the system carries more
// than was counted, negative means the shelves hold more than the system.
func BuildRecap(dateFrom string, dateTo string, aggregates []domain.VarianceAggregate) domain.OpnameRecap {
	rows := make([]domain.VarianceRow, 0, len(aggregates))
	summary := domain.RecapSummary{}

	for _, agg := range aggregates {
		variance := agg.SystemStock - agg.RealStockTotal
		row := domain.VarianceRow{
			ProductID:      agg.ProductID,
			ProductName:    agg.ProductName,
			Unit:           agg.Unit,
			PurchasePrice:  agg.PurchasePrice,
			SystemStock:    agg.SystemStock,
			RealStockTotal: agg.RealStockTotal,
			Variance:       variance,
			VarianceValue:  int64(variance) * agg.PurchasePrice,
			ObserverCount:  agg.ObserverCount,
			Details:        agg.Details,
		}
		rows = append(rows, row)

		switch {
		case variance > 0:
			summary.SystemHigher++
		case variance < 0:
			summary.RealHigher++
		default:
			summary.Balanced++
		}
		summary.AbsoluteVariance += abs(variance)
		summary.VarianceValue += row.VarianceValue
	}

	sort.Slice(rows, func(i, j int) bool {
		if abs(rows[i].Variance) != abs(rows[j].Variance) {
			return abs(rows[i].Variance) > abs(rows[j].Variance)
		}
		return rows[i].ProductName < rows[j].ProductName
	})

	summary.TotalProducts = len(rows)
	summary.AccuracyRate = AccuracyRate(summary.Balanced, summary.TotalProducts)

	return domain.OpnameRecap{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Rows:     rows,
		Summary:  summary,
	}
}

// AccuracyRate formats balanced/total as a percentage with one decimal place.
// An empty recap reports "100": no counted products means nothing diverged.
func AccuracyRate(balanced int, total int) string {
	if total == 0 {
		return "100"
	}
	rate := float64(balanced) / float64(total) * 100
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// Preview computes the optimistic numbers shown right after a kasir submits an
// additional count, before the authoritative aggregation is re-fetched.
func Preview(systemStock int, currentRealTotal int, newlyEntered int) domain.CountPreview {
	realTotal := currentRealTotal + newlyEntered
	variance := systemStock - realTotal
	return domain.CountPreview{
		SystemStock:    systemStock,
		RealStockTotal: realTotal,
		Variance:       variance,
		Side:           VarianceSide(variance),
	}
}

// VarianceSide classifies a variance for display.
func VarianceSide(variance int) string {
	switch {
	case variance > 0:
		return domain.VarianceSystemHigher
	case variance < 0:
		return domain.VarianceRealHigher
	default:
		return domain.VarianceBalanced
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
