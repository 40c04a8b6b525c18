// AngelaMos | 2026
// store_mem_test.go

package order

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/catalog"
	"github.com/carterperez-dev/storefront/internal/core"
)

var errInjected = errors.New("injected storage failure")

type memState struct {
	users    map[string]Customer
	products map[string]catalog.Product
	orders   map[string]Order
	lines    map[string]Line
}

func (s *memState) clone() *memState {
	c := &memState{
		users:    make(map[string]Customer, len(s.users)),
		products: make(map[string]catalog.Product, len(s.products)),
		orders:   make(map[string]Order, len(s.orders)),
		lines:    make(map[string]Line, len(s.lines)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		if v.Stock != nil {
			stock := *v.Stock
			v.Stock = &stock
		}
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	return c
}

// memStore keeps a committed state and hands WithinTx a private copy that
// only replaces the committed state when fn succeeds.
type memStore struct {
	mu        sync.Mutex
	committed *memState

	failOnLine int
	failCommit bool
	locks      []string
	lineWrites int
}

func newMemStore() *memStore {
	return &memStore{committed: &memState{
		users:    map[string]Customer{},
		products: map[string]catalog.Product{},
		orders:   map[string]Order{},
		lines:    map[string]Line{},
	}}
}

func (m *memStore) addUser(id string) {
	m.committed.users[id] = Customer{ID: id, Email: id + "@example.com", Name: id}
}

func (m *memStore) addProduct(id, price string, stock *int) {
	m.committed.products[id] = catalog.Product{
		ID:    id,
		Name:  id,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func (m *memStore) stock(id string) *int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed.products[id].Stock
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed.orders)
}

func (m *memStore) lineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed.lines)
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.committed.clone()
	if err := fn(&memRepo{store: m, state: staged}); err != nil {
		return err
	}
	if m.failCommit {
		return errInjected
	}

	m.committed = staged
	return nil
}

func (m *memStore) view() *memRepo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memRepo{store: m, state: m.committed}
}

func (m *memStore) UserExists(ctx context.Context, id string) (bool, error) {
	return m.view().UserExists(ctx, id)
}

func (m *memStore) LockProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return m.view().LockProduct(ctx, id)
}

func (m *memStore) InsertOrder(context.Context, *Order) error {
	return errors.New("write outside transaction")
}

func (m *memStore) InsertLine(context.Context, *Line) error {
	return errors.New("write outside transaction")
}

func (m *memStore) SetStock(context.Context, string, int) error {
	return errors.New("write outside transaction")
}

func (m *memStore) SetTotal(context.Context, string, decimal.Decimal) error {
	return errors.New("write outside transaction")
}

func (m *memStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	return m.view().GetOrder(ctx, id)
}

func (m *memStore) ListOrders(ctx context.Context, p ListOrdersParams) ([]Order, int, error) {
	return m.view().ListOrders(ctx, p)
}

func (m *memStore) GetLine(ctx context.Context, id string) (*Line, error) {
	return m.view().GetLine(ctx, id)
}

func (m *memStore) ListLines(ctx context.Context, p ListLinesParams) ([]Line, int, error) {
	return m.view().ListLines(ctx, p)
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.committed.orders[id]
	if !ok {
		return core.ErrNotFound
	}
	o.Status = status
	m.committed.orders[id] = o
	return nil
}

func (m *memStore) DeleteOrder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.committed.orders[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.committed.orders, id)
	for lid, l := range m.committed.lines {
		if l.OrderID == id {
			delete(m.committed.lines, lid)
		}
	}
	return nil
}

func (m *memStore) Totals(ctx context.Context, userID string) (int, decimal.Decimal, error) {
	return m.view().Totals(ctx, userID)
}

// memRepo reads and writes one memState. The store mutex is held by the
// caller for transactional use.
type memRepo struct {
	store *memStore
	state *memState
}

func (r *memRepo) UserExists(_ context.Context, id string) (bool, error) {
	_, ok := r.state.users[id]
	return ok, nil
}

func (r *memRepo) LockProduct(_ context.Context, id string) (*catalog.Product, error) {
	r.store.locks = append(r.store.locks, id)
	p, ok := r.state.products[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if p.Stock != nil {
		stock := *p.Stock
		p.Stock = &stock
	}
	return &p, nil
}

func (r *memRepo) InsertOrder(_ context.Context, o *Order) error {
	if _, ok := r.state.users[o.UserID]; !ok {
		return core.ErrInvalidReference
	}
	cp := *o
	cp.Lines, cp.User = nil, nil
	r.state.orders[o.ID] = cp
	return nil
}

func (r *memRepo) InsertLine(_ context.Context, l *Line) error {
	r.store.lineWrites++
	if r.store.failOnLine > 0 && r.store.lineWrites == r.store.failOnLine {
		return errInjected
	}
	cp := *l
	cp.Product = nil
	r.state.lines[l.ID] = cp
	return nil
}

func (r *memRepo) SetStock(_ context.Context, id string, stock int) error {
	p, ok := r.state.products[id]
	if !ok {
		return core.ErrInvalidReference
	}
	if stock < 0 {
		return core.ErrStockConstraint
	}
	p.Stock = &stock
	r.state.products[id] = p
	return nil
}

func (r *memRepo) SetTotal(_ context.Context, id string, total decimal.Decimal) error {
	o, ok := r.state.orders[id]
	if !ok {
		return core.ErrNotFound
	}
	o.TotalAmount = total
	r.state.orders[id] = o
	return nil
}

func (r *memRepo) GetOrder(_ context.Context, id string) (*Order, error) {
	o, ok := r.state.orders[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	o.Lines = r.linesOf(id)
	if c, ok := r.state.users[o.UserID]; ok {
		o.User = &c
	}
	return &o, nil
}

func (r *memRepo) linesOf(orderID string) []Line {
	var lines []Line
	for _, l := range r.state.lines {
		if l.OrderID != orderID {
			continue
		}
		p := r.state.products[l.ProductID]
		l.Product = &p
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines
}

func (r *memRepo) ListOrders(_ context.Context, p ListOrdersParams) ([]Order, int, error) {
	p.Normalize()
	var out []Order
	for _, o := range r.state.orders {
		if p.UserID != "" && o.UserID != p.UserID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if p.Offset() >= total {
		return []Order{}, total, nil
	}
	end := min(total, p.Offset()+p.PageSize)
	return out[p.Offset():end], total, nil
}

func (r *memRepo) GetLine(_ context.Context, id string) (*Line, error) {
	l, ok := r.state.lines[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &l, nil
}

func (r *memRepo) ListLines(_ context.Context, p ListLinesParams) ([]Line, int, error) {
	lines := r.linesOf(p.OrderID)
	return lines, len(lines), nil
}

func (r *memRepo) UpdateStatus(context.Context, string, Status) error {
	return errors.New("not used inside transactions")
}

func (r *memRepo) DeleteOrder(context.Context, string) error {
	return errors.New("not used inside transactions")
}

func (r *memRepo) Totals(_ context.Context, userID string) (int, decimal.Decimal, error) {
	count, spent := 0, decimal.Zero
	for _, o := range r.state.orders {
		if o.Status == StatusCancelled {
			continue
		}
		if userID != "" && o.UserID != userID {
			continue
		}
		count++
		spent = spent.Add(o.TotalAmount)
	}
	return count, spent, nil
}
