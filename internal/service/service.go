package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"assunnahmart/backend/internal/cache"
	"assunnahmart/backend/internal/dedup"
	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/invalidation"
	"assunnahmart/backend/internal/ledger"
	"assunnahmart/backend/internal/opname"
	"assunnahmart/backend/internal/store"
	"assunnahmart/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const dateLayout = "2006-01-02"

type Service struct {
	repo     store.Repository
	recaps   cache.RecapCache
	bus      invalidation.Bus
	guard    *dedup.Guard
	recapTTL time.Duration
}

func New(repo store.Repository, recaps cache.RecapCache, bus invalidation.Bus, guard *dedup.Guard, recapTTL time.Duration) *Service {
	if recaps == nil {
		recaps = cache.NoopRecapCache{}
	}
	if recapTTL <= 0 {
		recapTTL = 30 * time.Second
	}

	s := &Service{
		repo:     repo,
		recaps:   recaps,
		bus:      bus,
		guard:    guard,
		recapTTL: recapTTL,
	}
	if bus != nil {
		// Dropping everything on any stock event keeps the policy simple;
		// recaps are cheap to recompute.
		bus.Subscribe(func(invalidation.Event) {
			if err := recaps.DropAll(context.Background()); err != nil {
				log.Printf("[service] WARN: failed to drop recap cache: %v", err)
			}
		})
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

func (s *Service) ListLowStockProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListLowStockProducts(ctx, limit)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" {
		return domain.Product{}, fmt.Errorf("%w: nama dan satuan wajib diisi", store.ErrValidation)
	}
	if req.SalePrice < 1 || req.PurchasePrice < 0 || req.InitialStock < 0 || req.MinStock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:          req.Name,
		Barcode:       req.Barcode,
		Unit:          req.Unit,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Stock:         req.InitialStock,
		MinStock:      req.MinStock,
		SupplierID:    req.SupplierID,
		Consignment:   req.Consignment,
		Active:        true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("nama=%s,harga_jual=%d,stok=%d", created.Name, created.SalePrice, created.Stock))
	s.publishStockChange(ctx, created.ID)

	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrValidation
		}
		updated.Name = name
	}
	if req.Barcode != nil {
		updated.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return domain.Product{}, store.ErrValidation
		}
		updated.Unit = unit
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return domain.Product{}, store.ErrValidation
		}
		updated.PurchasePrice = *req.PurchasePrice
	}
	if req.SalePrice != nil {
		if *req.SalePrice < 1 {
			return domain.Product{}, store.ErrValidation
		}
		updated.SalePrice = *req.SalePrice
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return domain.Product{}, store.ErrValidation
		}
		updated.MinStock = *req.MinStock
	}
	if req.SupplierID != nil {
		updated.SupplierID = *req.SupplierID
	}
	if req.Consignment != nil {
		updated.Consignment = *req.Consignment
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("active=%t,harga_jual=%d", saved.Active, saved.SalePrice))

	return *saved, nil
}

// CorrectStock overwrites the system stock of one product. This is the only
// path besides sales and purchases that mutates stock, and it is gated by the
// supervisor PIN at the handler layer.
func (s *Service) CorrectStock(ctx context.Context, productID string, newStock int, reason string) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}
	if newStock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stok tidak boleh negatif", store.ErrValidation)
	}

	existing, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	updated.Stock = newStock
	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "stock_correction", "product", saved.ID, fmt.Sprintf("stok=%d->%d,alasan=%s", existing.Stock, newStock, reason))
	s.publishStockChange(ctx, saved.ID)

	return *saved, nil
}

// SubmitObservation records one physical count. It never touches the
// product's system stock; the recap aggregator sums counts later. The
// response carries an optimistic preview of the totals the next recap
// fetch should show.
func (s *Service) SubmitObservation(ctx context.Context, req domain.ObservationRequest) (domain.ObservationResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.ObservationResponse{}, fmt.Errorf("authentication required")
	}
	if req.KasirID == "" {
		req.KasirID = actor.Username
	}

	if req.ProductID == "" {
		return domain.ObservationResponse{}, fmt.Errorf("%w: barang_id wajib diisi", store.ErrValidation)
	}
	if req.CountedQty < 1 {
		return domain.ObservationResponse{}, fmt.Errorf("%w: stok_fisik harus bilangan bulat positif", store.ErrValidation)
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return domain.ObservationResponse{}, err
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	actionKey := fmt.Sprintf("obs:%s:%s:%d", req.KasirID, req.ProductID, req.CountedQty)
	if s.guard != nil && !s.guard.Admit(actionKey) {
		currentReal, err := s.repo.SumObservations(ctx, req.ProductID, dayStart, dayEnd)
		if err != nil {
			return domain.ObservationResponse{}, err
		}
		return domain.ObservationResponse{
			Preview:   opname.Preview(product.Stock, currentReal, 0),
			Duplicate: true,
		}, nil
	}

	saved, err := s.repo.CreateObservation(ctx, domain.StockCountObservation{
		ID:         xid.New("obs"),
		ProductID:  req.ProductID,
		KasirID:    req.KasirID,
		KasirName:  actor.Username,
		CountedQty: req.CountedQty,
		Note:       strings.TrimSpace(req.Note),
		ObservedAt: now,
	})
	if err != nil {
		return domain.ObservationResponse{}, err
	}

	totalWithNew, err := s.repo.SumObservations(ctx, req.ProductID, dayStart, dayEnd)
	if err != nil {
		return domain.ObservationResponse{}, err
	}

	s.logAudit(ctx, "opname_input", "product", req.ProductID, fmt.Sprintf("stok_fisik=%d,kasir=%s", req.CountedQty, req.KasirID))
	s.publishStockChange(ctx, req.ProductID)

	return domain.ObservationResponse{
		Observation: *saved,
		Preview:     opname.Preview(product.Stock, totalWithNew-saved.CountedQty, saved.CountedQty),
	}, nil
}

// GetOpnameRecap serves the variance recap for an inclusive date range,
// cached per range until the TTL expires or a stock event drops the cache.
func (s *Service) GetOpnameRecap(ctx context.Context, dateFrom string, dateTo string) (domain.OpnameRecap, error) {
	from, err := time.Parse(dateLayout, dateFrom)
	if err != nil {
		return domain.OpnameRecap{}, fmt.Errorf("%w: date_from harus berformat YYYY-MM-DD", store.ErrValidation)
	}
	to, err := time.Parse(dateLayout, dateTo)
	if err != nil {
		return domain.OpnameRecap{}, fmt.Errorf("%w: date_to harus berformat YYYY-MM-DD", store.ErrValidation)
	}
	if to.Before(from) {
		return domain.OpnameRecap{}, fmt.Errorf("%w: date_to sebelum date_from", store.ErrValidation)
	}

	key := dateFrom + ":" + dateTo
	if cached, ok, err := s.recaps.Get(ctx, key); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: recap cache get failed: %v", err)
	}

	aggregates, err := s.repo.GetVarianceAggregates(ctx, from.UTC(), to.UTC().Add(24*time.Hour))
	if err != nil {
		return domain.OpnameRecap{}, err
	}

	recap := opname.BuildRecap(dateFrom, dateTo, aggregates)
	if err := s.recaps.Set(ctx, key, &recap, s.recapTTL); err != nil {
		log.Printf("[service] WARN: recap cache set failed: %v", err)
	}
	return recap, nil
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Supplier{}, fmt.Errorf("admin role required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.Supplier{}, fmt.Errorf("%w: nama wajib diisi", store.ErrValidation)
	}

	created, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		ID:          xid.New("sup"),
		Name:        req.Name,
		Phone:       strings.TrimSpace(req.Phone),
		Consignment: req.Consignment,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	s.logAudit(ctx, "supplier_create", "supplier", created.ID, created.Name)
	return *created, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.Customer{}, fmt.Errorf("authentication required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.Customer{}, fmt.Errorf("%w: nama wajib diisi", store.ErrValidation)
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:        xid.New("cus"),
		Name:      req.Name,
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "customer_create", "customer", created.ID, created.Name)
	return *created, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// RecordSupplierPayment settles part of a supplier's payable (hutang)
// balance. The store writes the payment and its kas keluar entry in one
// transaction.
func (s *Service) RecordSupplierPayment(ctx context.Context, req domain.PaymentRequest) (domain.Payment, error) {
	return s.recordPayment(ctx, domain.PartySupplier, req)
}

// RecordCustomerPayment settles part of a customer's receivable (piutang)
// balance, with a kas masuk entry.
func (s *Service) RecordCustomerPayment(ctx context.Context, req domain.PaymentRequest) (domain.Payment, error) {
	return s.recordPayment(ctx, domain.PartyCustomer, req)
}

func (s *Service) recordPayment(ctx context.Context, partyType string, req domain.PaymentRequest) (domain.Payment, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Payment{}, fmt.Errorf("authentication required")
	}
	if req.KasirName == "" {
		req.KasirName = actor.Username
	}
	if err := ledger.ValidatePayment(req); err != nil {
		return domain.Payment{}, err
	}

	saved, err := s.repo.RecordPayment(ctx, domain.Payment{
		ID:              xid.New("pay"),
		PartyType:       partyType,
		PartyID:         req.PartyID,
		Amount:          req.Amount,
		PaymentDate:     req.PaymentDate,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		KasirName:       req.KasirName,
		Note:            strings.TrimSpace(req.Note),
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.logAudit(ctx, "payment_"+partyType, "payment", saved.ID, fmt.Sprintf("party=%s,jumlah=%d", req.PartyID, req.Amount))
	return *saved, nil
}

// BatchCustomerPayments processes a mass payment list. Items are isolated:
// one failure never aborts the rest, and each failed item keeps its own
// error message in the result.
func (s *Service) BatchCustomerPayments(ctx context.Context, req domain.BatchPaymentRequest) (domain.BatchPaymentResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.BatchPaymentResult{}, fmt.Errorf("authentication required")
	}
	if req.KasirName == "" {
		req.KasirName = actor.Username
	}
	if _, err := time.Parse(dateLayout, req.PaymentDate); err != nil {
		return domain.BatchPaymentResult{}, fmt.Errorf("%w: tanggal_bayar harus berformat YYYY-MM-DD", store.ErrValidation)
	}
	if len(req.Items) == 0 {
		return domain.BatchPaymentResult{}, fmt.Errorf("%w: items kosong", store.ErrValidation)
	}

	result := ledger.RunBatch(req, func(item domain.BatchPaymentItem) (string, error) {
		payment, err := s.RecordCustomerPayment(ctx, domain.PaymentRequest{
			PartyID:         item.CustomerID,
			Amount:          item.Amount,
			PaymentDate:     req.PaymentDate,
			ReferenceNumber: item.ReferenceNumber,
			KasirName:       req.KasirName,
			Note:            item.Note,
		})
		if err != nil {
			return "", err
		}
		return payment.ID, nil
	})

	s.logAudit(ctx, "payment_customer_batch", "payment", xid.New("batch"), fmt.Sprintf("sukses=%d,gagal=%d", result.SuccessCount, result.FailCount))
	return result, nil
}

func (s *Service) GetSupplierBalance(ctx context.Context, supplierID string) (domain.PartyBalance, error) {
	balance, err := s.repo.GetPartyBalance(ctx, domain.PartySupplier, supplierID)
	if err != nil {
		return domain.PartyBalance{}, err
	}
	return *balance, nil
}

func (s *Service) GetCustomerBalance(ctx context.Context, customerID string) (domain.PartyBalance, error) {
	balance, err := s.repo.GetPartyBalance(ctx, domain.PartyCustomer, customerID)
	if err != nil {
		return domain.PartyBalance{}, err
	}
	return *balance, nil
}

func (s *Service) ListSupplierBalances(ctx context.Context) ([]domain.PartyBalance, error) {
	return s.repo.ListPartyBalances(ctx, domain.PartySupplier)
}

func (s *Service) ListCustomerBalances(ctx context.Context) ([]domain.PartyBalance, error) {
	return s.repo.ListPartyBalances(ctx, domain.PartyCustomer)
}

func (s *Service) ListCashLedger(ctx context.Context, dateFrom string, dateTo string, limit int) ([]domain.CashLedgerEntry, error) {
	from, to, err := parseDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 200
	}
	return s.repo.ListCashLedger(ctx, from, to, limit)
}

// RegisterScan resolves a barcode to a product for the POS cart. The same
// barcode arriving twice within the debounce window on one terminal counts
// as a single press; Added reports whether the cart should add a line.
func (s *Service) RegisterScan(ctx context.Context, req domain.ScanRequest) (domain.ScanResponse, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.ScanResponse{}, fmt.Errorf("authentication required")
	}
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Barcode == "" {
		return domain.ScanResponse{}, fmt.Errorf("%w: barcode wajib diisi", store.ErrValidation)
	}

	product, err := s.repo.GetProductByBarcode(ctx, req.Barcode)
	if err != nil {
		return domain.ScanResponse{}, err
	}

	added := true
	if s.guard != nil {
		added = s.guard.Admit(fmt.Sprintf("scan:%s:%s", req.TerminalID, req.Barcode))
	}

	return domain.ScanResponse{Product: *product, Added: added}, nil
}

// CreateSale commits a cart: stock decremented per line, cash sales post a
// kas masuk entry, credit sales post a piutang charge. A retried request
// with the same idempotency key returns the stored sale with Duplicate set.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.SaleResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.SaleResponse{}, fmt.Errorf("authentication required")
	}
	if req.KasirName == "" {
		req.KasirName = actor.Username
	}
	if req.IdempotencyKey == "" {
		return domain.SaleResponse{}, fmt.Errorf("%w: idempotency_key wajib diisi", store.ErrValidation)
	}
	if len(req.Items) == 0 {
		return domain.SaleResponse{}, fmt.Errorf("%w: items kosong", store.ErrValidation)
	}
	if req.PaymentType == "" {
		req.PaymentType = domain.PaymentTypeCash
	}
	if req.PaymentType == domain.PaymentTypeCredit && req.CustomerID == "" {
		return domain.SaleResponse{}, fmt.Errorf("%w: penjualan kredit butuh customer_id", store.ErrValidation)
	}

	if existing, err := s.repo.FindSaleByIdempotency(ctx, req.IdempotencyKey); err == nil {
		return domain.SaleResponse{Sale: *existing, Duplicate: true}, nil
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	productIDs := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if line.ProductID == "" || line.Qty < 1 {
			return domain.SaleResponse{}, store.ErrValidation
		}
		items = append(items, domain.SaleItem{ProductID: line.ProductID, Qty: line.Qty})
		productIDs = append(productIDs, line.ProductID)
	}

	saved, err := s.repo.CreateSale(ctx, domain.Sale{
		ID:             xid.New("jual"),
		IdempotencyKey: req.IdempotencyKey,
		TerminalID:     req.TerminalID,
		PaymentType:    req.PaymentType,
		CustomerID:     req.CustomerID,
		KasirName:      req.KasirName,
		CreatedAt:      time.Now().UTC(),
		Items:          items,
	})
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, "sale_create", "sale", saved.ID, fmt.Sprintf("total=%d,jenis=%s", saved.TotalAmount, saved.PaymentType))
	s.publishStockChange(ctx, productIDs...)

	return domain.SaleResponse{Sale: *saved}, nil
}

// CreatePurchase receives goods from a supplier: stock incremented, purchase
// price refreshed, hutang charged for credit purchases.
func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseRequest) (domain.Purchase, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Purchase{}, fmt.Errorf("admin role required")
	}
	if req.KasirName == "" {
		req.KasirName = actor.Username
	}
	if req.SupplierID == "" {
		return domain.Purchase{}, fmt.Errorf("%w: supplier_id wajib diisi", store.ErrValidation)
	}
	if len(req.Items) == 0 {
		return domain.Purchase{}, fmt.Errorf("%w: items kosong", store.ErrValidation)
	}
	if req.PaymentType == "" {
		req.PaymentType = domain.PaymentTypeCredit
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if line.ProductID == "" || line.Qty < 1 || line.UnitCost < 1 {
			return domain.Purchase{}, store.ErrValidation
		}
		productIDs = append(productIDs, line.ProductID)
	}

	saved, err := s.repo.CreatePurchase(ctx, domain.Purchase{
		ID:              xid.New("beli"),
		SupplierID:      req.SupplierID,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		PaymentType:     req.PaymentType,
		KasirName:       req.KasirName,
		CreatedAt:       time.Now().UTC(),
		Items:           req.Items,
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logAudit(ctx, "purchase_create", "purchase", saved.ID, fmt.Sprintf("supplier=%s,total=%d,jenis=%s", saved.SupplierID, saved.TotalAmount, saved.PaymentType))
	s.publishStockChange(ctx, productIDs...)

	return *saved, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, dateFrom string, dateTo string, limit int) ([]domain.AuditLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin role required")
	}

	from, to, err := parseDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 200
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// parseDateRange turns inclusive ISO dates into a [from, to) UTC window.
// Empty values default to the last 30 days.
func parseDateRange(dateFrom string, dateTo string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-30 * 24 * time.Hour)
	to := now.Add(24 * time.Hour)

	if dateFrom != "" {
		parsed, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: date_from harus berformat YYYY-MM-DD", store.ErrValidation)
		}
		from = parsed.UTC()
	}
	if dateTo != "" {
		parsed, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: date_to harus berformat YYYY-MM-DD", store.ErrValidation)
		}
		to = parsed.UTC().Add(24 * time.Hour)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date_to sebelum date_from", store.ErrValidation)
	}
	return from, to, nil
}

func (s *Service) publishStockChange(ctx context.Context, productIDs ...string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, invalidation.Event{
		Topic:      invalidation.TopicStock,
		ProductIDs: productIDs,
	})
	if err != nil {
		log.Printf("[service] WARN: failed to publish stock invalidation: %v", err)
	}
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
