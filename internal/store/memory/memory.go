package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/store"
	"assunnahmart/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	productsByID    map[string]domain.Product
	idByBarcode     map[string]string
	observations    []domain.StockCountObservation
	suppliersByID   map[string]domain.Supplier
	customersByID   map[string]domain.Customer
	charges         []domain.LedgerCharge
	payments        []domain.Payment
	cashLedger      []domain.CashLedgerEntry
	salesByID       map[string]*domain.Sale
	salesByIdem     map[string]*domain.Sale
	purchasesByID   map[string]domain.Purchase
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_KASIR_PASSWORD. If unset,
// hardcoded dev defaults are used with a warning. Never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	kasirPwd := envOr("SEED_KASIR_PASSWORD", "kasir123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_KASIR_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_KASIR_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"kasir", kasirPwd, domain.RoleKasir},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	suppliers := []domain.Supplier{
		{ID: "sup-sembako", Name: "CV Sumber Sembako", Phone: "0812-1111-2222", CreatedAt: now},
		{ID: "sup-snack", Name: "UD Aneka Snack", Phone: "0813-3333-4444", Consignment: true, CreatedAt: now},
	}
	customers := []domain.Customer{
		{ID: "cus-warung-bu-yati", Name: "Warung Bu Yati", Phone: "0851-5555-6666", CreatedAt: now},
		{ID: "cus-pak-dedi", Name: "Pak Dedi", Phone: "0852-7777-8888", CreatedAt: now},
	}

	products := []domain.Product{
		{ID: "brg-beras-5kg", Name: "Beras Premium 5kg", Barcode: "8991001100015", Unit: "karung", PurchasePrice: 62000, SalePrice: 68000, Stock: 40, MinStock: 10, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-minyak-1l", Name: "Minyak Goreng 1L", Barcode: "8991001100022", Unit: "botol", PurchasePrice: 15500, SalePrice: 17500, Stock: 60, MinStock: 12, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-gula-1kg", Name: "Gula Pasir 1kg", Barcode: "8991001100039", Unit: "pcs", PurchasePrice: 16000, SalePrice: 17800, Stock: 55, MinStock: 15, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-mie-instan", Name: "Mie Instan Goreng", Barcode: "8991001100046", Unit: "pcs", PurchasePrice: 2800, SalePrice: 3500, Stock: 240, MinStock: 48, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-kopi-sachet", Name: "Kopi Sachet", Barcode: "8991001100053", Unit: "renceng", PurchasePrice: 11000, SalePrice: 13000, Stock: 35, MinStock: 10, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-keripik", Name: "Keripik Singkong Balado", Barcode: "8991001100060", Unit: "pcs", PurchasePrice: 9000, SalePrice: 12500, Stock: 30, MinStock: 8, SupplierID: "sup-snack", Consignment: true, Active: true},
		{ID: "brg-air-600ml", Name: "Air Mineral 600ml", Barcode: "8991001100077", Unit: "botol", PurchasePrice: 2500, SalePrice: 3500, Stock: 120, MinStock: 24, SupplierID: "sup-sembako", Active: true},
		{ID: "brg-sabun", Name: "Sabun Mandi Batang", Barcode: "8991001100084", Unit: "pcs", PurchasePrice: 4200, SalePrice: 5500, Stock: 45, MinStock: 10, SupplierID: "sup-sembako", Active: true},
	}

	// Opening ledger balances so payment flows work out of the box.
	charges := []domain.LedgerCharge{
		{ID: xid.New("chg"), PartyType: domain.PartySupplier, PartyID: "sup-sembako", Amount: 1250000, SourceType: "saldo_awal", Note: "saldo awal hutang", OccurredAt: now},
		{ID: xid.New("chg"), PartyType: domain.PartySupplier, PartyID: "sup-snack", Amount: 375000, SourceType: "saldo_awal", Note: "saldo awal hutang", OccurredAt: now},
		{ID: xid.New("chg"), PartyType: domain.PartyCustomer, PartyID: "cus-warung-bu-yati", Amount: 420000, SourceType: "saldo_awal", Note: "saldo awal piutang", OccurredAt: now},
		{ID: xid.New("chg"), PartyType: domain.PartyCustomer, PartyID: "cus-pak-dedi", Amount: 150000, SourceType: "saldo_awal", Note: "saldo awal piutang", OccurredAt: now},
	}

	productMap := make(map[string]domain.Product, len(products))
	barcodeMap := make(map[string]string, len(products))
	for _, p := range products {
		productMap[p.ID] = p
		barcodeMap[p.Barcode] = p.ID
	}
	supplierMap := make(map[string]domain.Supplier, len(suppliers))
	for _, sup := range suppliers {
		supplierMap[sup.ID] = sup
	}
	customerMap := make(map[string]domain.Customer, len(customers))
	for _, cus := range customers {
		customerMap[cus.ID] = cus
	}

	return &Store{
		productsByID:    productMap,
		idByBarcode:     barcodeMap,
		observations:    make([]domain.StockCountObservation, 0, 128),
		suppliersByID:   supplierMap,
		customersByID:   customerMap,
		charges:         charges,
		payments:        make([]domain.Payment, 0, 64),
		cashLedger:      make([]domain.CashLedgerEntry, 0, 128),
		salesByID:       make(map[string]*domain.Sale),
		salesByIdem:     make(map[string]*domain.Sale),
		purchasesByID:   make(map[string]domain.Purchase),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if activeOnly && !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})

	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Unit == "" || product.SalePrice < 1 {
		return nil, store.ErrValidation
	}
	if product.PurchasePrice < 0 || product.Stock < 0 || product.MinStock < 0 {
		return nil, store.ErrValidation
	}
	if product.Barcode != "" {
		if _, exists := s.idByBarcode[product.Barcode]; exists {
			return nil, fmt.Errorf("%w: barcode %s sudah terdaftar", store.ErrValidation, product.Barcode)
		}
	}
	if product.SupplierID != "" {
		if _, exists := s.suppliersByID[product.SupplierID]; !exists {
			return nil, store.ErrNotFound
		}
	}
	if product.ID == "" {
		product.ID = xid.New("brg")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrValidation
	}

	product.Active = true
	s.productsByID[product.ID] = product
	if product.Barcode != "" {
		s.idByBarcode[product.Barcode] = product.ID
	}
	created := product
	return &created, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.idByBarcode[barcode]
	if !exists {
		return nil, store.ErrNotFound
	}
	product := s.productsByID[id]
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.productsByID[id]; ok && p.Active {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.productsByID[product.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(product.Name) == "" || product.Unit == "" || product.SalePrice < 1 {
		return nil, store.ErrValidation
	}
	if product.Barcode != current.Barcode {
		if product.Barcode != "" {
			if owner, taken := s.idByBarcode[product.Barcode]; taken && owner != product.ID {
				return nil, fmt.Errorf("%w: barcode %s sudah terdaftar", store.ErrValidation, product.Barcode)
			}
		}
		delete(s.idByBarcode, current.Barcode)
		if product.Barcode != "" {
			s.idByBarcode[product.Barcode] = product.ID
		}
	}

	s.productsByID[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) ListLowStockProducts(_ context.Context, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, 16)
	for _, p := range s.productsByID {
		if !p.Active || p.Stock > p.MinStock {
			continue
		}
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b domain.Product) int {
		if a.Stock == b.Stock {
			return cmpString(a.Name, b.Name)
		}
		if a.Stock < b.Stock {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateObservation(_ context.Context, obs domain.StockCountObservation) (*domain.StockCountObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obs.ProductID == "" || obs.KasirID == "" || obs.CountedQty < 1 {
		return nil, store.ErrValidation
	}
	if _, exists := s.productsByID[obs.ProductID]; !exists {
		return nil, store.ErrNotFound
	}
	if obs.ID == "" {
		obs.ID = xid.New("obs")
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	s.observations = append(s.observations, obs)
	created := obs
	return &created, nil
}

func (s *Store) SumObservations(_ context.Context, productID string, from time.Time, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, obs := range s.observations {
		if obs.ProductID != productID {
			continue
		}
		if obs.ObservedAt.Before(from) || !obs.ObservedAt.Before(to) {
			continue
		}
		total += obs.CountedQty
	}
	return total, nil
}

func (s *Store) GetVarianceAggregates(_ context.Context, from time.Time, to time.Time) ([]domain.VarianceAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := map[string]*domain.VarianceAggregate{}
	observers := map[string]map[string]struct{}{}

	for _, obs := range s.observations {
		if obs.ObservedAt.Before(from) || !obs.ObservedAt.Before(to) {
			continue
		}
		product, exists := s.productsByID[obs.ProductID]
		if !exists {
			continue
		}
		agg := byProduct[obs.ProductID]
		if agg == nil {
			agg = &domain.VarianceAggregate{
				ProductID:     product.ID,
				ProductName:   product.Name,
				Unit:          product.Unit,
				PurchasePrice: product.PurchasePrice,
				SystemStock:   product.Stock,
			}
			byProduct[obs.ProductID] = agg
			observers[obs.ProductID] = map[string]struct{}{}
		}
		agg.RealStockTotal += obs.CountedQty
		agg.Details = append(agg.Details, domain.ObserverDetail{
			KasirID:    obs.KasirID,
			KasirName:  obs.KasirName,
			CountedQty: obs.CountedQty,
			ObservedAt: obs.ObservedAt,
			Note:       obs.Note,
		})
		observers[obs.ProductID][obs.KasirID] = struct{}{}
	}

	result := make([]domain.VarianceAggregate, 0, len(byProduct))
	for productID, agg := range byProduct {
		agg.ObserverCount = len(observers[productID])
		slices.SortFunc(agg.Details, func(a, b domain.ObserverDetail) int {
			if a.ObservedAt.Equal(b.ObservedAt) {
				return cmpString(a.KasirID, b.KasirID)
			}
			if a.ObservedAt.Before(b.ObservedAt) {
				return -1
			}
			return 1
		})
		result = append(result, *agg)
	}
	slices.SortFunc(result, func(a, b domain.VarianceAggregate) int {
		return cmpString(a.ProductID, b.ProductID)
	})
	return result, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrValidation
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	s.suppliersByID[supplier.ID] = supplier
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliersByID))
	for _, supplier := range s.suppliersByID {
		suppliers = append(suppliers, supplier)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		return cmpString(a.Name, b.Name)
	})
	return suppliers, nil
}

func (s *Store) GetSupplierByID(_ context.Context, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, exists := s.suppliersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, store.ErrValidation
	}
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	s.customersByID[customer.ID] = customer
	copyCustomer := customer
	return &copyCustomer, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customersByID))
	for _, customer := range s.customersByID {
		customers = append(customers, customer)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

// outstandingLocked computes charges minus payments for one party.
// Caller holds s.mu.
func (s *Store) outstandingLocked(partyType string, partyID string) (charged int64, paid int64) {
	for _, charge := range s.charges {
		if charge.PartyType == partyType && charge.PartyID == partyID {
			charged += charge.Amount
		}
	}
	for _, payment := range s.payments {
		if payment.PartyType == partyType && payment.PartyID == partyID {
			paid += payment.Amount
		}
	}
	return charged, paid
}

func (s *Store) partyNameLocked(partyType string, partyID string) (string, bool) {
	switch partyType {
	case domain.PartySupplier:
		if sup, ok := s.suppliersByID[partyID]; ok {
			return sup.Name, true
		}
	case domain.PartyCustomer:
		if cus, ok := s.customersByID[partyID]; ok {
			return cus.Name, true
		}
	}
	return "", false
}

func (s *Store) RecordPayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.PartyType != domain.PartySupplier && payment.PartyType != domain.PartyCustomer {
		return nil, store.ErrValidation
	}
	if payment.Amount < 1 {
		return nil, store.ErrValidation
	}
	if _, ok := s.partyNameLocked(payment.PartyType, payment.PartyID); !ok {
		return nil, store.ErrNotFound
	}

	charged, paid := s.outstandingLocked(payment.PartyType, payment.PartyID)
	if payment.Amount > charged-paid {
		return nil, fmt.Errorf("%w: jumlah %d melebihi sisa tagihan %d", store.ErrValidation, payment.Amount, charged-paid)
	}

	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	direction := domain.CashIn
	if payment.PartyType == domain.PartySupplier {
		direction = domain.CashOut
	}
	s.payments = append(s.payments, payment)
	s.cashLedger = append(s.cashLedger, domain.CashLedgerEntry{
		ID:         xid.New("kas"),
		Direction:  direction,
		Amount:     payment.Amount,
		SourceType: "pembayaran_" + payment.PartyType,
		SourceID:   payment.ID,
		KasirName:  payment.KasirName,
		Note:       payment.Note,
		OccurredAt: payment.CreatedAt,
	})

	created := payment
	return &created, nil
}

func (s *Store) GetPartyBalance(_ context.Context, partyType string, partyID string) (*domain.PartyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.partyNameLocked(partyType, partyID)
	if !ok {
		return nil, store.ErrNotFound
	}
	charged, paid := s.outstandingLocked(partyType, partyID)
	return &domain.PartyBalance{
		PartyType:    partyType,
		PartyID:      partyID,
		PartyName:    name,
		TotalCharged: charged,
		TotalPaid:    paid,
		Outstanding:  charged - paid,
	}, nil
}

func (s *Store) ListPartyBalances(_ context.Context, partyType string) ([]domain.PartyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, 16)
	switch partyType {
	case domain.PartySupplier:
		for id := range s.suppliersByID {
			ids = append(ids, id)
		}
	case domain.PartyCustomer:
		for id := range s.customersByID {
			ids = append(ids, id)
		}
	default:
		return nil, store.ErrValidation
	}

	result := make([]domain.PartyBalance, 0, len(ids))
	for _, id := range ids {
		name, _ := s.partyNameLocked(partyType, id)
		charged, paid := s.outstandingLocked(partyType, id)
		result = append(result, domain.PartyBalance{
			PartyType:    partyType,
			PartyID:      id,
			PartyName:    name,
			TotalCharged: charged,
			TotalPaid:    paid,
			Outstanding:  charged - paid,
		})
	}
	slices.SortFunc(result, func(a, b domain.PartyBalance) int {
		return cmpString(a.PartyName, b.PartyName)
	})
	return result, nil
}

func (s *Store) ListCashLedger(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.CashLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CashLedgerEntry, 0, 64)
	for _, entry := range s.cashLedger {
		if entry.OccurredAt.Before(from) || !entry.OccurredAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.CashLedgerEntry) int {
		if a.OccurredAt.Equal(b.OccurredAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.OccurredAt.After(b.OccurredAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.IdempotencyKey == "" || len(sale.Items) == 0 {
		return nil, store.ErrValidation
	}
	if existing, ok := s.salesByIdem[sale.IdempotencyKey]; ok {
		return cloneSale(existing), nil
	}
	if sale.PaymentType != domain.PaymentTypeCash && sale.PaymentType != domain.PaymentTypeCredit {
		return nil, store.ErrValidation
	}
	if sale.PaymentType == domain.PaymentTypeCredit {
		if _, exists := s.customersByID[sale.CustomerID]; !exists {
			return nil, store.ErrNotFound
		}
	}

	total := int64(0)
	recomputed := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Qty < 1 {
			return nil, store.ErrValidation
		}
		product, exists := s.productsByID[item.ProductID]
		if !exists || !product.Active {
			return nil, fmt.Errorf("%w: barang %s", store.ErrNotFound, item.ProductID)
		}
		if product.Stock-item.Qty < 0 {
			return nil, fmt.Errorf("%w: %s tersisa %d", store.ErrInsufficientStock, product.Name, product.Stock)
		}
		recomputed = append(recomputed, domain.SaleItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: product.SalePrice,
		})
		total += int64(item.Qty) * product.SalePrice
	}

	if sale.ID == "" {
		sale.ID = xid.New("jual")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	sale.Items = recomputed
	sale.TotalAmount = total

	for _, item := range sale.Items {
		product := s.productsByID[item.ProductID]
		product.Stock -= item.Qty
		s.productsByID[item.ProductID] = product
	}

	if sale.PaymentType == domain.PaymentTypeCash {
		s.cashLedger = append(s.cashLedger, domain.CashLedgerEntry{
			ID:         xid.New("kas"),
			Direction:  domain.CashIn,
			Amount:     total,
			SourceType: "penjualan",
			SourceID:   sale.ID,
			KasirName:  sale.KasirName,
			OccurredAt: sale.CreatedAt,
		})
	} else {
		s.charges = append(s.charges, domain.LedgerCharge{
			ID:         xid.New("chg"),
			PartyType:  domain.PartyCustomer,
			PartyID:    sale.CustomerID,
			Amount:     total,
			SourceType: "penjualan_kredit",
			SourceID:   sale.ID,
			OccurredAt: sale.CreatedAt,
		})
	}

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	s.salesByIdem[sale.IdempotencyKey] = saved
	return cloneSale(saved), nil
}

func (s *Store) FindSaleByIdempotency(_ context.Context, key string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByIdem[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purchase.SupplierID == "" || len(purchase.Items) == 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.suppliersByID[purchase.SupplierID]; !exists {
		return nil, store.ErrNotFound
	}
	if purchase.PaymentType != domain.PaymentTypeCash && purchase.PaymentType != domain.PaymentTypeCredit {
		return nil, store.ErrValidation
	}

	total := int64(0)
	for _, item := range purchase.Items {
		if item.Qty < 1 || item.UnitCost < 1 {
			return nil, store.ErrValidation
		}
		if _, exists := s.productsByID[item.ProductID]; !exists {
			return nil, fmt.Errorf("%w: barang %s", store.ErrNotFound, item.ProductID)
		}
		total += int64(item.Qty) * item.UnitCost
	}

	if purchase.ID == "" {
		purchase.ID = xid.New("beli")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}
	purchase.TotalAmount = total

	for _, item := range purchase.Items {
		product := s.productsByID[item.ProductID]
		product.Stock += item.Qty
		product.PurchasePrice = item.UnitCost
		s.productsByID[item.ProductID] = product
	}

	if purchase.PaymentType == domain.PaymentTypeCash {
		s.cashLedger = append(s.cashLedger, domain.CashLedgerEntry{
			ID:         xid.New("kas"),
			Direction:  domain.CashOut,
			Amount:     total,
			SourceType: "pembelian",
			SourceID:   purchase.ID,
			KasirName:  purchase.KasirName,
			OccurredAt: purchase.CreatedAt,
		})
	} else {
		s.charges = append(s.charges, domain.LedgerCharge{
			ID:         xid.New("chg"),
			PartyType:  domain.PartySupplier,
			PartyID:    purchase.SupplierID,
			Amount:     total,
			SourceType: "pembelian_kredit",
			SourceID:   purchase.ID,
			OccurredAt: purchase.CreatedAt,
		})
	}

	s.purchasesByID[purchase.ID] = clonePurchase(purchase)
	saved := clonePurchase(purchase)
	return &saved, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrValidation
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleKasir
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrValidation
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	items := make([]domain.SaleItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return &dup
}

func clonePurchase(src domain.Purchase) domain.Purchase {
	dup := src
	items := make([]domain.PurchaseLine, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return dup
}
