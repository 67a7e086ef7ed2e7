package domain

import "time"

type Product struct {
	ID            string `json:"id"`
	Name          string `json:"nama"`
	Barcode       string `json:"barcode"`
	Unit          string `json:"satuan"`
	PurchasePrice int64  `json:"harga_beli"`
	SalePrice     int64  `json:"harga_jual"`
	Stock         int    `json:"stok"`
	MinStock      int    `json:"stok_minimal"`
	SupplierID    string `json:"supplier_id,omitempty"`
	Consignment   bool   `json:"konsinyasi"`
	Active        bool   `json:"active"`
}

type ProductCreateRequest struct {
	Name          string `json:"nama"`
	Barcode       string `json:"barcode"`
	Unit          string `json:"satuan"`
	PurchasePrice int64  `json:"harga_beli"`
	SalePrice     int64  `json:"harga_jual"`
	InitialStock  int    `json:"stok_awal"`
	MinStock      int    `json:"stok_minimal"`
	SupplierID    string `json:"supplier_id,omitempty"`
	Consignment   bool   `json:"konsinyasi"`
}

type ProductUpdateRequest struct {
	Name          *string `json:"nama,omitempty"`
	Barcode       *string `json:"barcode,omitempty"`
	Unit          *string `json:"satuan,omitempty"`
	PurchasePrice *int64  `json:"harga_beli,omitempty"`
	SalePrice     *int64  `json:"harga_jual,omitempty"`
	MinStock      *int    `json:"stok_minimal,omitempty"`
	SupplierID    *string `json:"supplier_id,omitempty"`
	Consignment   *bool   `json:"konsinyasi,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// StockCorrectionRequest adjusts the authoritative system stock directly.
// Corrections are gated by the supervisor PIN at the HTTP layer.
type StockCorrectionRequest struct {
	SupervisorPIN string `json:"supervisor_pin"`
	NewStock      int    `json:"stok_baru"`
	Reason        string `json:"alasan"`
}

// StockCountObservation is one physical count submitted by one kasir for one
// product. Observations are append-only; a correction is a new observation,
// never an edit. Submitting an observation does not touch Product.Stock.
type StockCountObservation struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"barang_id"`
	KasirID    string    `json:"kasir_id"`
	KasirName  string    `json:"kasir_name"`
	CountedQty int       `json:"stok_fisik"`
	Note       string    `json:"keterangan,omitempty"`
	ObservedAt time.Time `json:"tanggal_input"`
}

type ObservationRequest struct {
	ProductID  string `json:"barang_id"`
	CountedQty int    `json:"stok_fisik"`
	KasirID    string `json:"kasir_id,omitempty"`
	Note       string `json:"keterangan,omitempty"`
}

// CountPreview is the optimistic preview returned right after an observation
// is accepted: the totals the next recap fetch is expected to show. It is
// display-only and superseded by the authoritative aggregation.
type CountPreview struct {
	SystemStock    int    `json:"stok_sistem"`
	RealStockTotal int    `json:"real_stok_total"`
	Variance       int    `json:"selisih_stok"`
	Side           string `json:"status"`
}

type ObservationResponse struct {
	Observation StockCountObservation `json:"observation"`
	Preview     CountPreview          `json:"preview"`
	Duplicate   bool                  `json:"duplicate"`
}

// ObserverDetail is one kasir's contribution inside a variance row.
type ObserverDetail struct {
	KasirID    string    `json:"kasir_id"`
	KasirName  string    `json:"kasir_name"`
	CountedQty int       `json:"stok_fisik"`
	ObservedAt time.Time `json:"tanggal_input"`
	Note       string    `json:"keterangan,omitempty"`
}

// VarianceAggregate is the raw per-product aggregation produced by the store
// layer for a date range: summed physical counts joined against the system
// stock at fetch time. The variance itself is computed once, in package opname.
type VarianceAggregate struct {
	ProductID      string
	ProductName    string
	Unit           string
	PurchasePrice  int64
	SystemStock    int
	RealStockTotal int
	ObserverCount  int
	Details        []ObserverDetail
}

// VarianceRow is one product's reconciliation result as served to clients.
type VarianceRow struct {
	ProductID      string           `json:"barang_id"`
	ProductName    string           `json:"nama_barang"`
	Unit           string           `json:"satuan"`
	PurchasePrice  int64            `json:"harga_beli"`
	SystemStock    int              `json:"stok_sistem"`
	RealStockTotal int              `json:"real_stok_total"`
	Variance       int              `json:"selisih_stok"`
	VarianceValue  int64            `json:"nilai_selisih"`
	ObserverCount  int              `json:"jumlah_pengguna_input"`
	Details        []ObserverDetail `json:"detail_input_pengguna"`
}

type RecapSummary struct {
	TotalProducts    int    `json:"total_produk"`
	SystemHigher     int    `json:"selisih_positif"`
	RealHigher       int    `json:"selisih_negatif"`
	Balanced         int    `json:"seimbang"`
	AccuracyRate     string `json:"akurasi"`
	AbsoluteVariance int    `json:"total_selisih_absolut"`
	VarianceValue    int64  `json:"total_nilai_selisih"`
}

type OpnameRecap struct {
	DateFrom string        `json:"date_from"`
	DateTo   string        `json:"date_to"`
	Rows     []VarianceRow `json:"rows"`
	Summary  RecapSummary  `json:"summary"`
}

type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"nama"`
	Phone       string    `json:"telepon,omitempty"`
	Consignment bool      `json:"konsinyasi"`
	CreatedAt   time.Time `json:"created_at"`
}

type SupplierCreateRequest struct {
	Name        string `json:"nama"`
	Phone       string `json:"telepon"`
	Consignment bool   `json:"konsinyasi"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"nama"`
	Phone     string    `json:"telepon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name  string `json:"nama"`
	Phone string `json:"telepon"`
}

const (
	PartyCustomer = "customer"
	PartySupplier = "supplier"
)

// LedgerCharge is one debt posting: piutang when the party is a customer,
// hutang when the party is a supplier.
type LedgerCharge struct {
	ID         string    `json:"id"`
	PartyType  string    `json:"party_type"`
	PartyID    string    `json:"party_id"`
	Amount     int64     `json:"jumlah"`
	SourceType string    `json:"source_type"`
	SourceID   string    `json:"source_id,omitempty"`
	Note       string    `json:"keterangan,omitempty"`
	OccurredAt time.Time `json:"tanggal"`
}

type Payment struct {
	ID              string    `json:"id"`
	PartyType       string    `json:"party_type"`
	PartyID         string    `json:"party_id"`
	Amount          int64     `json:"jumlah"`
	PaymentDate     string    `json:"tanggal_bayar"`
	ReferenceNumber string    `json:"nomor_referensi"`
	KasirName       string    `json:"kasir_name"`
	Note            string    `json:"keterangan,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PaymentRequest struct {
	PartyID         string `json:"party_id"`
	Amount          int64  `json:"jumlah"`
	PaymentDate     string `json:"tanggal_bayar"`
	ReferenceNumber string `json:"nomor_referensi"`
	KasirName       string `json:"kasir_name"`
	Note            string `json:"keterangan,omitempty"`
}

type PartyBalance struct {
	PartyType    string `json:"party_type"`
	PartyID      string `json:"party_id"`
	PartyName    string `json:"nama"`
	TotalCharged int64  `json:"total_tagihan"`
	TotalPaid    int64  `json:"total_bayar"`
	Outstanding  int64  `json:"sisa"`
}

type BatchPaymentItem struct {
	CustomerID      string `json:"customer_id"`
	Amount          int64  `json:"jumlah"`
	ReferenceNumber string `json:"nomor_referensi"`
	Note            string `json:"keterangan,omitempty"`
}

type BatchPaymentRequest struct {
	PaymentDate string             `json:"tanggal_bayar"`
	KasirName   string             `json:"kasir_name"`
	Items       []BatchPaymentItem `json:"items"`
}

type BatchPaymentItemResult struct {
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	PaymentID  string `json:"payment_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BatchPaymentResult struct {
	SuccessCount int                      `json:"success_count"`
	FailCount    int                      `json:"fail_count"`
	Items        []BatchPaymentItemResult `json:"items"`
}

const (
	CashIn  = "masuk"
	CashOut = "keluar"
)

type CashLedgerEntry struct {
	ID         string    `json:"id"`
	Direction  string    `json:"arah"`
	Amount     int64     `json:"jumlah"`
	SourceType string    `json:"source_type"`
	SourceID   string    `json:"source_id,omitempty"`
	KasirName  string    `json:"kasir_name"`
	Note       string    `json:"keterangan,omitempty"`
	OccurredAt time.Time `json:"tanggal"`
}

const (
	PaymentTypeCash   = "tunai"
	PaymentTypeCredit = "kredit"
)

type SaleLine struct {
	ProductID string `json:"barang_id"`
	Qty       int    `json:"qty"`
}

type SaleItem struct {
	ProductID string `json:"barang_id"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"harga_satuan"`
}

type SaleRequest struct {
	IdempotencyKey string     `json:"idempotency_key"`
	TerminalID     string     `json:"terminal_id"`
	PaymentType    string     `json:"jenis_pembayaran"`
	CustomerID     string     `json:"customer_id,omitempty"`
	KasirName      string     `json:"kasir_name"`
	Items          []SaleLine `json:"items"`
}

type Sale struct {
	ID             string     `json:"id"`
	IdempotencyKey string     `json:"idempotency_key"`
	TerminalID     string     `json:"terminal_id"`
	PaymentType    string     `json:"jenis_pembayaran"`
	CustomerID     string     `json:"customer_id,omitempty"`
	KasirName      string     `json:"kasir_name"`
	TotalAmount    int64      `json:"total"`
	CreatedAt      time.Time  `json:"created_at"`
	Items          []SaleItem `json:"items"`
}

type SaleResponse struct {
	Sale      Sale `json:"sale"`
	Duplicate bool `json:"duplicate"`
}

type ScanRequest struct {
	TerminalID string `json:"terminal_id"`
	Barcode    string `json:"barcode"`
}

type ScanResponse struct {
	Product Product `json:"product"`
	Added   bool    `json:"added"`
}

type PurchaseLine struct {
	ProductID string `json:"barang_id"`
	Qty       int    `json:"qty"`
	UnitCost  int64  `json:"harga_satuan"`
}

type PurchaseRequest struct {
	SupplierID      string         `json:"supplier_id"`
	ReferenceNumber string         `json:"nomor_referensi"`
	PaymentType     string         `json:"jenis_pembayaran"`
	KasirName       string         `json:"kasir_name"`
	Items           []PurchaseLine `json:"items"`
}

type Purchase struct {
	ID              string         `json:"id"`
	SupplierID      string         `json:"supplier_id"`
	ReferenceNumber string         `json:"nomor_referensi"`
	PaymentType     string         `json:"jenis_pembayaran"`
	KasirName       string         `json:"kasir_name"`
	TotalAmount     int64          `json:"total"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []PurchaseLine `json:"items"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type KasirCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type KasirUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleKasir = "kasir"
)

const (
	VarianceBalanced     = "seimbang"
	VarianceSystemHigher = "stok sistem lebih besar"
	VarianceRealHigher   = "stok fisik lebih besar"
)
