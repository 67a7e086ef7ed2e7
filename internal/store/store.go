package store

import (
	"context"
	"errors"
	"time"

	"assunnahmart/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
)

type Repository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListLowStockProducts(ctx context.Context, limit int) ([]domain.Product, error)

	CreateObservation(ctx context.Context, obs domain.StockCountObservation) (*domain.StockCountObservation, error)
	SumObservations(ctx context.Context, productID string, from time.Time, to time.Time) (int, error)
	GetVarianceAggregates(ctx context.Context, from time.Time, to time.Time) ([]domain.VarianceAggregate, error)

	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplierByID(ctx context.Context, id string) (*domain.Supplier, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)

	// RecordPayment atomically verifies the party's outstanding balance,
	// stores the payment and appends the matching cash-ledger entry.
	RecordPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	GetPartyBalance(ctx context.Context, partyType string, partyID string) (*domain.PartyBalance, error)
	ListPartyBalances(ctx context.Context, partyType string) ([]domain.PartyBalance, error)
	ListCashLedger(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.CashLedgerEntry, error)

	// CreateSale atomically decrements stock for every line, stores the sale
	// and posts either a cash-ledger entry (tunai) or a piutang charge (kredit).
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error)

	// CreatePurchase atomically increments stock, refreshes purchase prices
	// and posts either a cash-ledger entry (tunai) or a hutang charge (kredit).
	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
