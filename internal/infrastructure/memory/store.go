// Package memory implementa los puertos de persistencia en memoria.
// El TxRunner serializa las transacciones y restaura una copia del estado si fn falla,
// con la misma semántica de Commit/Rollback que PostgreSQL. Se usa en tests y desarrollo local.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
	"github.com/jhoicas/tienda-pos-api/internal/domain/sequence"
)

var (
	_ inventory.TxRunner                        = (*TxRunner)(nil)
	_ sales.SalesTxRunner                       = (*TxRunner)(nil)
	_ repository.ProductRepository              = (*ProductRepo)(nil)
	_ repository.InventoryRepository            = (*InventoryRepo)(nil)
	_ repository.InventoryTransactionRepository = (*TransactionRepo)(nil)
	_ repository.SaleRepository                 = (*SaleRepo)(nil)
	_ repository.SequenceRepository             = (*SequenceRepo)(nil)
	_ repository.ReportRepository               = (*ReportRepo)(nil)
)

type state struct {
	products     map[string]*entity.Product
	inventory    map[string]*entity.InventoryRecord
	transactions []*entity.InventoryTransaction
	sales        map[int64]*entity.Sale
	items        map[int64][]*entity.SaleItem
	sequences    map[string]int
	nextID       int64
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		inventory: make(map[string]*entity.InventoryRecord),
		sales:     make(map[int64]*entity.Sale),
		items:     make(map[int64][]*entity.SaleItem),
		sequences: make(map[string]int),
	}
}

func (st *state) id() int64 {
	st.nextID++
	return st.nextID
}

func (st *state) clone() *state {
	c := newState()
	c.nextID = st.nextID
	for k, v := range st.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range st.inventory {
		c.inventory[k] = copyRecord(v)
	}
	c.transactions = append(c.transactions, st.transactions...)
	for k, v := range st.sales {
		s := *v
		c.sales[k] = &s
	}
	for k, v := range st.items {
		list := make([]*entity.SaleItem, 0, len(v))
		for _, it := range v {
			cp := *it
			list = append(list, &cp)
		}
		c.items[k] = list
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store estado compartido en memoria.
type Store struct {
	mu  sync.Mutex
	st  *state
	loc *time.Location
}

// NewStore crea un almacén vacío. loc define el día contable de las ventas.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{st: newState(), loc: loc}
}

// handle da acceso al estado; inTx indica que el TxRunner ya tiene el lock.
type handle struct {
	s    *Store
	inTx bool
}

func (h handle) lock() func() {
	if h.inTx {
		return func() {}
	}
	h.s.mu.Lock()
	return h.s.mu.Unlock
}

// Products repositorio de catálogo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{handle{s: s}} }

// Inventory repositorio de inventario fuera de transacción.
func (s *Store) Inventory() *InventoryRepo { return &InventoryRepo{handle{s: s}} }

// Transactions repositorio de historial fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{handle{s: s}} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{handle{s: s}} }

// Reports repositorio de reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{handle{s: s}} }

// TxRunner runner transaccional sobre este almacén.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// PutProduct inserta o reemplaza un producto del catálogo (carga de datos).
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	if p.Status == "" {
		p.Status = entity.ProductStatusActive
	}
	s.st.products[p.ProductID] = &p
}

// RemoveProduct quita un producto del catálogo.
func (s *Store) RemoveProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.products, productID)
}

// PutInventory inserta o reemplaza el registro de inventario (carga de datos).
func (s *Store) PutInventory(rec entity.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = s.st.id()
	}
	s.st.inventory[rec.ProductID] = copyRecord(&rec)
}

// PutSale inserta una venta con sus líneas sin pasar por el caso de uso (carga de datos).
func (s *Store) PutSale(sale entity.Sale, items []entity.SaleItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == 0 {
		sale.ID = s.st.id()
	}
	s.st.sales[sale.ID] = &sale
	for _, it := range items {
		it := it
		it.ID = s.st.id()
		it.SaleID = sale.ID
		s.st.items[sale.ID] = append(s.st.items[sale.ID], &it)
	}
	return sale.ID
}

// AllTransactions copia del historial completo en orden de inserción.
func (s *Store) AllTransactions() []entity.InventoryTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.InventoryTransaction, 0, len(s.st.transactions))
	for _, t := range s.st.transactions {
		out = append(out, *t)
	}
	return out
}

// SaleCount número de ventas almacenadas.
func (s *Store) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.sales)
}

// ItemCount número total de líneas de venta almacenadas.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.st.items {
		n += len(v)
	}
	return n
}

// TxRunner serializa transacciones: toma el lock, trabaja sobre el estado y lo restaura si fn falla.
type TxRunner struct {
	s *Store
}

func (r *TxRunner) begin() (*state, func(commit bool)) {
	r.s.mu.Lock()
	snapshot := r.s.st.clone()
	return snapshot, func(commit bool) {
		if !commit {
			r.s.st = snapshot
		}
		r.s.mu.Unlock()
	}
}

// Run ejecuta fn con repositorios de inventario atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.LedgerRepos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, end := r.begin()
	defer func() { end(err == nil) }()
	return fn(r.ledgerRepos())
}

// RunSales ejecuta fn con repositorios de inventario y ventas atados a la transacción.
func (r *TxRunner) RunSales(ctx context.Context, fn func(repos sales.SalesRepos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, end := r.begin()
	defer func() { end(err == nil) }()
	h := handle{s: r.s, inTx: true}
	return fn(sales.SalesRepos{
		LedgerRepos: r.ledgerRepos(),
		Sales:       &SaleRepo{h},
		Sequences:   &SequenceRepo{h},
	})
}

func (r *TxRunner) ledgerRepos() inventory.LedgerRepos {
	h := handle{s: r.s, inTx: true}
	return inventory.LedgerRepos{
		Products:     &ProductRepo{h},
		Inventory:    &InventoryRepo{h},
		Transactions: &TransactionRepo{h},
	}
}

// ProductRepo catálogo en memoria.
type ProductRepo struct{ handle }

// GetByProductID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByProductID(_ context.Context, productID string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.s.st.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// InventoryRepo inventario en memoria.
type InventoryRepo struct{ handle }

// Get devuelve una copia del registro o nil.
func (r *InventoryRepo) Get(_ context.Context, productID string) (*entity.InventoryRecord, error) {
	defer r.lock()()
	rec, ok := r.s.st.inventory[productID]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

// GetForUpdate idéntico a Get: el lock del TxRunner ya serializa.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, productID)
}

// Ensure crea el registro en cero si falta.
func (r *InventoryRepo) Ensure(_ context.Context, productID string, reorderPoint int) (*entity.InventoryRecord, error) {
	defer r.lock()()
	rec, ok := r.s.st.inventory[productID]
	if !ok {
		rec = &entity.InventoryRecord{
			ID:           r.s.st.id(),
			ProductID:    productID,
			ReorderPoint: reorderPoint,
			UpdatedAt:    time.Now(),
		}
		r.s.st.inventory[productID] = rec
	}
	return copyRecord(rec), nil
}

// Update reemplaza el registro.
func (r *InventoryRepo) Update(_ context.Context, record *entity.InventoryRecord) error {
	defer r.lock()()
	if _, ok := r.s.st.inventory[record.ProductID]; !ok {
		return errNoInventory
	}
	r.s.st.inventory[record.ProductID] = copyRecord(record)
	return nil
}

// ListStockLevels todos los productos del catálogo ordenados por código.
func (r *InventoryRepo) ListStockLevels(_ context.Context, defaultReorder int) ([]entity.StockLevel, error) {
	defer r.lock()()
	out := make([]entity.StockLevel, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		l := entity.StockLevel{
			ProductID:    p.ProductID,
			Name:         p.Name,
			Brand:        p.Brand,
			Category:     p.Category,
			Price:        p.Price,
			ReorderPoint: defaultReorder,
		}
		if rec, ok := r.s.st.inventory[p.ProductID]; ok {
			l.Stock = rec.Stock
			l.ReorderPoint = rec.ReorderPoint
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// TransactionRepo historial en memoria.
type TransactionRepo struct{ handle }

// Create agrega un movimiento.
func (r *TransactionRepo) Create(_ context.Context, tx *entity.InventoryTransaction) error {
	defer r.lock()()
	cp := *tx
	r.s.st.transactions = append(r.s.st.transactions, &cp)
	return nil
}

// ListByProduct más recientes primero.
func (r *TransactionRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, int, error) {
	defer r.lock()()
	var all []*entity.InventoryTransaction
	for i := len(r.s.st.transactions) - 1; i >= 0; i-- {
		t := r.s.st.transactions[i]
		if t.ProductID == productID {
			cp := *t
			all = append(all, &cp)
		}
	}
	return paginate(all, limit, offset), len(all), nil
}

// SaleRepo ventas en memoria.
type SaleRepo struct{ handle }

// Create inserta la cabecera y asigna ID.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.lock()()
	for _, s := range r.s.st.sales {
		if s.SaleNumber == sale.SaleNumber {
			return errDuplicateSaleNumber
		}
	}
	sale.ID = r.s.st.id()
	cp := *sale
	r.s.st.sales[sale.ID] = &cp
	return nil
}

// CreateItem inserta una línea.
func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	defer r.lock()()
	if _, ok := r.s.st.sales[item.SaleID]; !ok {
		return errNoSale
	}
	item.ID = r.s.st.id()
	cp := *item
	r.s.st.items[item.SaleID] = append(r.s.st.items[item.SaleID], &cp)
	return nil
}

// GetByID devuelve una copia o nil.
func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	defer r.lock()()
	s, ok := r.s.st.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// GetForUpdate idéntico a GetByID.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

// ListItems líneas de una venta en orden de inserción.
func (r *SaleRepo) ListItems(_ context.Context, saleID int64) ([]*entity.SaleItem, error) {
	defer r.lock()()
	src := r.s.st.items[saleID]
	out := make([]*entity.SaleItem, 0, len(src))
	for _, it := range src {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

// Update aplica los campos no nil.
func (r *SaleRepo) Update(_ context.Context, id int64, upd entity.SaleUpdate) (bool, error) {
	defer r.lock()()
	s, ok := r.s.st.sales[id]
	if !ok {
		return false, nil
	}
	if upd.CustomerName != nil {
		s.CustomerName = *upd.CustomerName
	}
	if upd.Contact != nil {
		s.Contact = *upd.Contact
	}
	if upd.PaymentMethod != nil {
		s.PaymentMethod = *upd.PaymentMethod
	}
	if upd.PaymentStatus != nil {
		s.PaymentStatus = *upd.PaymentStatus
	}
	if upd.Total != nil {
		s.Total = *upd.Total
	}
	if upd.Status != nil {
		s.Status = *upd.Status
	}
	if upd.Address != nil {
		v := *upd.Address
		s.Address = &v
	}
	return true, nil
}

// DeleteItems borra las líneas de una venta.
func (r *SaleRepo) DeleteItems(_ context.Context, saleID int64) error {
	defer r.lock()()
	delete(r.s.st.items, saleID)
	return nil
}

// Delete borra la cabecera.
func (r *SaleRepo) Delete(_ context.Context, id int64) (bool, error) {
	defer r.lock()()
	if _, ok := r.s.st.sales[id]; !ok {
		return false, nil
	}
	if len(r.s.st.items[id]) > 0 {
		return false, errItemsRemain
	}
	delete(r.s.st.sales, id)
	return true, nil
}

// Stats agregados en el rango.
func (r *SaleRepo) Stats(_ context.Context, rg repository.DateRange, todayStart time.Time) (repository.SalesStats, error) {
	defer r.lock()()
	stats := repository.SalesStats{Total: decimal.Zero, Average: decimal.Zero}
	todayEnd := todayStart.AddDate(0, 0, 1)
	for _, s := range r.s.st.sales {
		if !s.CreatedAt.Before(todayStart) && s.CreatedAt.Before(todayEnd) {
			stats.TodayCount++
		}
		if !inRange(s.CreatedAt, rg) {
			continue
		}
		stats.Count++
		stats.Total = stats.Total.Add(s.Total)
	}
	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count)))
	}
	return stats, nil
}

// SequenceRepo contador diario en memoria, sembrado con el mayor sufijo ya emitido.
type SequenceRepo struct{ handle }

// NextSaleSequence siguiente consecutivo del día.
func (r *SequenceRepo) NextSaleSequence(_ context.Context, day time.Time) (int, error) {
	defer r.lock()()
	prefix := sequence.DayPrefix(day.In(r.s.loc))
	last, ok := r.s.st.sequences[prefix]
	if !ok {
		numbers := make([]string, 0, len(r.s.st.sales))
		for _, s := range r.s.st.sales {
			numbers = append(numbers, s.SaleNumber)
		}
		last = sequence.NextFromExisting(numbers, prefix) - 1
	}
	last++
	r.s.st.sequences[prefix] = last
	return last, nil
}

// ReportRepo consultas de reporte en memoria.
type ReportRepo struct{ handle }

// ListCompletedSales ventas Completed o sin estado, más recientes primero.
func (r *ReportRepo) ListCompletedSales(_ context.Context, f repository.SalesFilter) ([]*entity.Sale, int, error) {
	defer r.lock()()
	var all []*entity.Sale
	for _, s := range r.s.st.sales {
		if s.Status != "" && s.Status != entity.SaleStatusCompleted {
			continue
		}
		if !inRange(s.CreatedAt, f.Range) {
			continue
		}
		cp := *s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, f.Limit, f.Offset), len(all), nil
}

// ItemsForSales líneas agrupadas por venta.
func (r *ReportRepo) ItemsForSales(_ context.Context, saleIDs []int64) (map[int64][]*entity.SaleItem, error) {
	defer r.lock()()
	out := make(map[int64][]*entity.SaleItem, len(saleIDs))
	for _, id := range saleIDs {
		for _, it := range r.s.st.items[id] {
			cp := *it
			out[id] = append(out[id], &cp)
		}
	}
	return out, nil
}

// SalesTrend suma por día o mes de las ventas no canceladas desde since.
func (r *ReportRepo) SalesTrend(_ context.Context, bucket string, since time.Time) ([]repository.TrendPoint, error) {
	defer r.lock()()
	byPeriod := make(map[time.Time]*repository.TrendPoint)
	for _, s := range r.s.st.sales {
		if s.Status == entity.SaleStatusCancelled || s.CreatedAt.Before(since) {
			continue
		}
		t := s.CreatedAt.In(r.s.loc)
		period := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.s.loc)
		if bucket == repository.BucketMonth {
			period = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, r.s.loc)
		}
		p, ok := byPeriod[period]
		if !ok {
			p = &repository.TrendPoint{Period: period, Total: decimal.Zero}
			byPeriod[period] = p
		}
		p.Total = p.Total.Add(s.Total)
		p.Count++
	}
	out := make([]repository.TrendPoint, 0, len(byPeriod))
	for _, p := range byPeriod {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

func inRange(t time.Time, r repository.DateRange) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func copyRecord(rec *entity.InventoryRecord) *entity.InventoryRecord {
	cp := *rec
	if rec.SupplierID != nil {
		s := *rec.SupplierID
		cp.SupplierID = &s
	}
	if rec.LastRestocked != nil {
		t := *rec.LastRestocked
		cp.LastRestocked = &t
	}
	return &cp
}

type memError string

func (e memError) Error() string { return string(e) }

const (
	errNoInventory         memError = "memory: registro de inventario inexistente"
	errNoSale              memError = "memory: venta inexistente"
	errItemsRemain         memError = "memory: la venta aún tiene líneas"
	errDuplicateSaleNumber memError = "memory: sale_number duplicado"
)
