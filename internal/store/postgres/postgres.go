package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/store"
	"assunnahmart/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active
		FROM products
		WHERE ($1 = false OR active = true)
		ORDER BY nama
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Unit == "" || product.SalePrice < 1 {
		return nil, store.ErrValidation
	}
	if product.PurchasePrice < 0 || product.Stock < 0 || product.MinStock < 0 {
		return nil, store.ErrValidation
	}
	if product.ID == "" {
		product.ID = xid.New("brg")
	}
	product.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
	`, product.ID, product.Name, nullIfEmpty(product.Barcode), product.Unit, product.PurchasePrice, product.SalePrice, product.Stock, product.MinStock, nullIfEmpty(product.SupplierID), product.Consignment, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: barcode %s sudah terdaftar", store.ErrValidation, product.Barcode)
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active
		FROM products
		WHERE id = $1
	`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active
		FROM products
		WHERE barcode = $1
	`, barcode)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active
		FROM products
		WHERE active = true AND id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" || product.Unit == "" || product.SalePrice < 1 {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET nama = $2, barcode = $3, satuan = $4, harga_beli = $5, harga_jual = $6,
			stok = $7, stok_minimal = $8, supplier_id = $9, konsinyasi = $10, active = $11, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, nullIfEmpty(product.Barcode), product.Unit, product.PurchasePrice, product.SalePrice, product.Stock, product.MinStock, nullIfEmpty(product.SupplierID), product.Consignment, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: barcode %s sudah terdaftar", store.ErrValidation, product.Barcode)
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) ListLowStockProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama, barcode, satuan, harga_beli, harga_jual, stok, stok_minimal, supplier_id, konsinyasi, active
		FROM products
		WHERE active = true AND stok <= stok_minimal
		ORDER BY stok ASC, nama
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) CreateObservation(ctx context.Context, obs domain.StockCountObservation) (*domain.StockCountObservation, error) {
	if obs.ProductID == "" || obs.KasirID == "" || obs.CountedQty < 1 {
		return nil, store.ErrValidation
	}
	if obs.ID == "" {
		obs.ID = xid.New("obs")
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_opname_inputs (id, product_id, kasir_id, kasir_name, stok_fisik, keterangan, observed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, obs.ID, obs.ProductID, obs.KasirID, obs.KasirName, obs.CountedQty, strings.TrimSpace(obs.Note), obs.ObservedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	created := obs
	return &created, nil
}

func (s *Store) SumObservations(ctx context.Context, productID string, from time.Time, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(stok_fisik), 0)
		FROM stock_opname_inputs
		WHERE product_id = $1 AND observed_at >= $2 AND observed_at < $3
	`, productID, from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) GetVarianceAggregates(ctx context.Context, from time.Time, to time.Time) ([]domain.VarianceAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.product_id, p.nama, p.satuan, p.harga_beli, p.stok,
			o.kasir_id, o.kasir_name, o.stok_fisik, o.keterangan, o.observed_at
		FROM stock_opname_inputs o
		JOIN products p ON p.id = o.product_id
		WHERE o.observed_at >= $1 AND o.observed_at < $2
		ORDER BY o.product_id, o.observed_at, o.kasir_id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.VarianceAggregate, 0, 64)
	observers := map[string]struct{}{}
	var current *domain.VarianceAggregate

	for rows.Next() {
		var productID, productName, unit string
		var purchasePrice int64
		var systemStock int
		var kasirID, kasirName, note string
		var countedQty int
		var observedAt time.Time
		if err := rows.Scan(&productID, &productName, &unit, &purchasePrice, &systemStock, &kasirID, &kasirName, &countedQty, &note, &observedAt); err != nil {
			return nil, err
		}

		if current == nil || current.ProductID != productID {
			if current != nil {
				current.ObserverCount = len(observers)
				result = append(result, *current)
			}
			current = &domain.VarianceAggregate{
				ProductID:     productID,
				ProductName:   productName,
				Unit:          unit,
				PurchasePrice: purchasePrice,
				SystemStock:   systemStock,
			}
			observers = map[string]struct{}{}
		}
		current.RealStockTotal += countedQty
		current.Details = append(current.Details, domain.ObserverDetail{
			KasirID:    kasirID,
			KasirName:  kasirName,
			CountedQty: countedQty,
			ObservedAt: observedAt.UTC(),
			Note:       note,
		})
		observers[kasirID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		current.ObserverCount = len(observers)
		result = append(result, *current)
	}
	return result, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, nama, telepon, konsinyasi, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, supplier.ID, supplier.Name, strings.TrimSpace(supplier.Phone), supplier.Consignment, supplier.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := supplier
	return &created, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama, telepon, konsinyasi, created_at
		FROM suppliers
		ORDER BY nama
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 32)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Consignment, &sup.CreatedAt); err != nil {
			return nil, err
		}
		sup.CreatedAt = sup.CreatedAt.UTC()
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Store) GetSupplierByID(ctx context.Context, id string) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nama, telepon, konsinyasi, created_at
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Consignment, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sup.CreatedAt = sup.CreatedAt.UTC()
	return &sup, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, nama, telepon, created_at)
		VALUES ($1,$2,$3,$4)
	`, customer.ID, customer.Name, strings.TrimSpace(customer.Phone), customer.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama, telepon, created_at
		FROM customers
		ORDER BY nama
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var cus domain.Customer
		if err := rows.Scan(&cus.ID, &cus.Name, &cus.Phone, &cus.CreatedAt); err != nil {
			return nil, err
		}
		cus.CreatedAt = cus.CreatedAt.UTC()
		customers = append(customers, cus)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var cus domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nama, telepon, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&cus.ID, &cus.Name, &cus.Phone, &cus.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	cus.CreatedAt = cus.CreatedAt.UTC()
	return &cus, nil
}

func (s *Store) RecordPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.PartyType != domain.PartySupplier && payment.PartyType != domain.PartyCustomer {
		return nil, store.ErrValidation
	}
	if payment.Amount < 1 {
		return nil, store.ErrValidation
	}
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := partyExists(ctx, tx, payment.PartyType, payment.PartyID); err != nil {
		return nil, err
	}

	var charged, paid int64
	err = tx.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(jumlah) FROM ledger_charges WHERE party_type = $1 AND party_id = $2), 0),
			COALESCE((SELECT SUM(jumlah) FROM payments WHERE party_type = $1 AND party_id = $2), 0)
	`, payment.PartyType, payment.PartyID).Scan(&charged, &paid)
	if err != nil {
		return nil, err
	}
	if payment.Amount > charged-paid {
		return nil, fmt.Errorf("%w: jumlah %d melebihi sisa tagihan %d", store.ErrValidation, payment.Amount, charged-paid)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, party_type, party_id, jumlah, tanggal_bayar, nomor_referensi, kasir_name, keterangan, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, payment.ID, payment.PartyType, payment.PartyID, payment.Amount, payment.PaymentDate, strings.TrimSpace(payment.ReferenceNumber), payment.KasirName, strings.TrimSpace(payment.Note), payment.CreatedAt)
	if err != nil {
		return nil, err
	}

	direction := domain.CashIn
	if payment.PartyType == domain.PartySupplier {
		direction = domain.CashOut
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cash_ledger (id, arah, jumlah, source_type, source_id, kasir_name, keterangan, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, xid.New("kas"), direction, payment.Amount, "pembayaran_"+payment.PartyType, payment.ID, payment.KasirName, strings.TrimSpace(payment.Note), payment.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := payment
	return &created, nil
}

func (s *Store) GetPartyBalance(ctx context.Context, partyType string, partyID string) (*domain.PartyBalance, error) {
	name, err := s.partyName(ctx, partyType, partyID)
	if err != nil {
		return nil, err
	}

	var charged, paid int64
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(jumlah) FROM ledger_charges WHERE party_type = $1 AND party_id = $2), 0),
			COALESCE((SELECT SUM(jumlah) FROM payments WHERE party_type = $1 AND party_id = $2), 0)
	`, partyType, partyID).Scan(&charged, &paid)
	if err != nil {
		return nil, err
	}

	return &domain.PartyBalance{
		PartyType:    partyType,
		PartyID:      partyID,
		PartyName:    name,
		TotalCharged: charged,
		TotalPaid:    paid,
		Outstanding:  charged - paid,
	}, nil
}

func (s *Store) ListPartyBalances(ctx context.Context, partyType string) ([]domain.PartyBalance, error) {
	var table string
	switch partyType {
	case domain.PartySupplier:
		table = "suppliers"
	case domain.PartyCustomer:
		table = "customers"
	default:
		return nil, store.ErrValidation
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.nama,
			COALESCE((SELECT SUM(c.jumlah) FROM ledger_charges c WHERE c.party_type = $1 AND c.party_id = p.id), 0),
			COALESCE((SELECT SUM(y.jumlah) FROM payments y WHERE y.party_type = $1 AND y.party_id = p.id), 0)
		FROM `+table+` p
		ORDER BY p.nama
	`, partyType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.PartyBalance, 0, 64)
	for rows.Next() {
		balance := domain.PartyBalance{PartyType: partyType}
		if err := rows.Scan(&balance.PartyID, &balance.PartyName, &balance.TotalCharged, &balance.TotalPaid); err != nil {
			return nil, err
		}
		balance.Outstanding = balance.TotalCharged - balance.TotalPaid
		result = append(result, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ListCashLedger(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.CashLedgerEntry, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, arah, jumlah, source_type, source_id, kasir_name, keterangan, occurred_at
		FROM cash_ledger
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.CashLedgerEntry, 0, limit)
	for rows.Next() {
		var entry domain.CashLedgerEntry
		var sourceID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Direction, &entry.Amount, &entry.SourceType, &sourceID, &entry.KasirName, &entry.Note, &entry.OccurredAt); err != nil {
			return nil, err
		}
		if sourceID.Valid {
			entry.SourceID = sourceID.String
		}
		entry.OccurredAt = entry.OccurredAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.IdempotencyKey == "" || len(sale.Items) == 0 {
		return nil, store.ErrValidation
	}
	if sale.PaymentType != domain.PaymentTypeCash && sale.PaymentType != domain.PaymentTypeCredit {
		return nil, store.ErrValidation
	}
	if sale.ID == "" {
		sale.ID = xid.New("jual")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	if existing, err := s.FindSaleByIdempotency(ctx, sale.IdempotencyKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if sale.PaymentType == domain.PaymentTypeCredit {
		if err := partyExists(ctx, tx, domain.PartyCustomer, sale.CustomerID); err != nil {
			return nil, err
		}
	}

	total := int64(0)
	recomputed := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Qty < 1 {
			return nil, store.ErrValidation
		}
		var name string
		var salePrice int64
		var stock int
		err := tx.QueryRowContext(ctx, `
			SELECT nama, harga_jual, stok
			FROM products
			WHERE id = $1 AND active = true
			FOR UPDATE
		`, item.ProductID).Scan(&name, &salePrice, &stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: barang %s", store.ErrNotFound, item.ProductID)
			}
			return nil, err
		}
		if stock-item.Qty < 0 {
			return nil, fmt.Errorf("%w: %s tersisa %d", store.ErrInsufficientStock, name, stock)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET stok = stok - $2, updated_at = now() WHERE id = $1
		`, item.ProductID, item.Qty)
		if err != nil {
			return nil, err
		}
		recomputed = append(recomputed, domain.SaleItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: salePrice,
		})
		total += int64(item.Qty) * salePrice
	}
	sale.Items = recomputed
	sale.TotalAmount = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, idempotency_key, terminal_id, jenis_pembayaran, customer_id, kasir_name, total, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, sale.ID, sale.IdempotencyKey, sale.TerminalID, sale.PaymentType, nullIfEmpty(sale.CustomerID), sale.KasirName, sale.TotalAmount, sale.CreatedAt)
	if err != nil {
		// A racing retry with the same key committed first; serve its result.
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			return s.FindSaleByIdempotency(ctx, sale.IdempotencyKey)
		}
		return nil, err
	}

	for _, item := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, qty, harga_satuan)
			VALUES ($1,$2,$3,$4)
		`, sale.ID, item.ProductID, item.Qty, item.UnitPrice)
		if err != nil {
			return nil, err
		}
	}

	if sale.PaymentType == domain.PaymentTypeCash {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cash_ledger (id, arah, jumlah, source_type, source_id, kasir_name, keterangan, occurred_at)
			VALUES ($1,$2,$3,$4,$5,$6,'',$7)
		`, xid.New("kas"), domain.CashIn, sale.TotalAmount, "penjualan", sale.ID, sale.KasirName, sale.CreatedAt)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_charges (id, party_type, party_id, jumlah, source_type, source_id, keterangan, occurred_at)
			VALUES ($1,$2,$3,$4,$5,$6,'',$7)
		`, xid.New("chg"), domain.PartyCustomer, sale.CustomerID, sale.TotalAmount, "penjualan_kredit", sale.ID, sale.CreatedAt)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error) {
	var sale domain.Sale
	var customerID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, idempotency_key, terminal_id, jenis_pembayaran, customer_id, kasir_name, total, created_at
		FROM sales
		WHERE idempotency_key = $1
	`, key).Scan(&sale.ID, &sale.IdempotencyKey, &sale.TerminalID, &sale.PaymentType, &customerID, &sale.KasirName, &sale.TotalAmount, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if customerID.Valid {
		sale.CustomerID = customerID.String
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, qty, harga_satuan
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY product_id
	`, sale.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.Qty, &item.UnitPrice); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.SupplierID == "" || len(purchase.Items) == 0 {
		return nil, store.ErrValidation
	}
	if purchase.PaymentType != domain.PaymentTypeCash && purchase.PaymentType != domain.PaymentTypeCredit {
		return nil, store.ErrValidation
	}
	if purchase.ID == "" {
		purchase.ID = xid.New("beli")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := partyExists(ctx, tx, domain.PartySupplier, purchase.SupplierID); err != nil {
		return nil, err
	}

	total := int64(0)
	for _, item := range purchase.Items {
		if item.Qty < 1 || item.UnitCost < 1 {
			return nil, store.ErrValidation
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stok = stok + $2, harga_beli = $3, updated_at = now() WHERE id = $1
		`, item.ProductID, item.Qty, item.UnitCost)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w: barang %s", store.ErrNotFound, item.ProductID)
		}
		total += int64(item.Qty) * item.UnitCost
	}
	purchase.TotalAmount = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (id, supplier_id, nomor_referensi, jenis_pembayaran, kasir_name, total, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, purchase.ID, purchase.SupplierID, strings.TrimSpace(purchase.ReferenceNumber), purchase.PaymentType, purchase.KasirName, purchase.TotalAmount, purchase.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range purchase.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, product_id, qty, harga_satuan)
			VALUES ($1,$2,$3,$4)
		`, purchase.ID, item.ProductID, item.Qty, item.UnitCost)
		if err != nil {
			return nil, err
		}
	}

	if purchase.PaymentType == domain.PaymentTypeCash {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cash_ledger (id, arah, jumlah, source_type, source_id, kasir_name, keterangan, occurred_at)
			VALUES ($1,$2,$3,$4,$5,$6,'',$7)
		`, xid.New("kas"), domain.CashOut, purchase.TotalAmount, "pembelian", purchase.ID, purchase.KasirName, purchase.CreatedAt)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_charges (id, party_type, party_id, jumlah, source_type, source_id, keterangan, occurred_at)
			VALUES ($1,$2,$3,$4,$5,$6,'',$7)
		`, xid.New("chg"), domain.PartySupplier, purchase.SupplierID, purchase.TotalAmount, "pembelian_kredit", purchase.ID, purchase.CreatedAt)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := purchase
	return &created, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if user.Role == "" {
		user.Role = domain.RoleKasir
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, active, created_at)
		VALUES ($1,$2,$3,true,$4)
	`, username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrValidation
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password_hash, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) partyName(ctx context.Context, partyType string, partyID string) (string, error) {
	var query string
	switch partyType {
	case domain.PartySupplier:
		query = `SELECT nama FROM suppliers WHERE id = $1`
	case domain.PartyCustomer:
		query = `SELECT nama FROM customers WHERE id = $1`
	default:
		return "", store.ErrValidation
	}

	var name string
	if err := s.db.QueryRowContext(ctx, query, partyID).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func partyExists(ctx context.Context, tx *sql.Tx, partyType string, partyID string) error {
	var query string
	switch partyType {
	case domain.PartySupplier:
		query = `SELECT 1 FROM suppliers WHERE id = $1`
	case domain.PartyCustomer:
		query = `SELECT 1 FROM customers WHERE id = $1`
	default:
		return store.ErrValidation
	}

	var one int
	if err := tx.QueryRowContext(ctx, query, partyID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var barcode, supplierID sql.NullString
	err := row.Scan(&p.ID, &p.Name, &barcode, &p.Unit, &p.PurchasePrice, &p.SalePrice, &p.Stock, &p.MinStock, &supplierID, &p.Consignment, &p.Active)
	if err != nil {
		return domain.Product{}, err
	}
	if barcode.Valid {
		p.Barcode = barcode.String
	}
	if supplierID.Valid {
		p.SupplierID = supplierID.String
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
