package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/bayramdkmn/ecommerce-api/internal/cache"
	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
)

type mockCartRepository struct {
	m      sync.Mutex
	nextID int64
	carts  map[int64]*domain.Cart // keyed by user id
	err    error
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[int64]*domain.Cart{}}
}

func (m *mockCartRepository) GetOrCreate(_ context.Context, userID int64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		m.nextID++
		cart = &domain.Cart{
			ID:        m.nextID,
			UserID:    userID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		m.carts[userID] = cart
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (m *mockCartRepository) byID(cartID int64) *domain.Cart {
	for _, cart := range m.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

func (m *mockCartRepository) AddItem(_ context.Context, cartID, productID int64, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart := m.byID(cartID)
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: time.Now()})
	return nil
}

func (m *mockCartRepository) RemoveItem(_ context.Context, cartID, productID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart := m.byID(cartID)
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCartRepository) DecreaseItem(_ context.Context, cartID, productID int64, decrement int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart := m.byID(cartID)
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			if cart.Items[i].Quantity > decrement {
				cart.Items[i].Quantity -= decrement
			} else {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			}
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) Clear(_ context.Context, cartID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byID(cartID).Items = nil
	return nil
}

type mockProductRepository struct {
	products map[int64]*domain.Product
	err      error
}

func (m *mockProductRepository) ListActive(context.Context) ([]*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var products []*domain.Product
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *mockProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	found := map[int64]*domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (m *mockProductRepository) ListCategories(context.Context) ([]*domain.Category, error) {
	return nil, m.err
}

type mockCache struct {
	m    sync.Mutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, int64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ int64, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

// mockOrderStore keeps cart lines and orders in memory and gives WithinTx
// real rollback semantics: on error the pre-transaction state is restored.
type mockOrderStore struct {
	m      sync.Mutex
	nextID int64
	lines  []domain.PricedCartLine
	orders map[int64]*domain.Order

	lockErr        error
	orderInsertErr error
	itemsInsertErr error
	deleteErr      error
	updateErr      error

	// runs before the status write, outside the lock; lets a test slip a
	// competing transition in between the service's read and its write
	beforeStatusUpdate func()
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: map[int64]*domain.Order{}}
}

func (m *mockOrderStore) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	m.m.Lock()
	snapLines := append([]domain.PricedCartLine(nil), m.lines...)
	snapOrders := make(map[int64]*domain.Order, len(m.orders))
	for id, o := range m.orders {
		copied := *o
		copied.Items = append([]domain.OrderItem(nil), o.Items...)
		snapOrders[id] = &copied
	}
	snapNextID := m.nextID
	m.m.Unlock()

	if err := fn(nil); err != nil {
		m.m.Lock()
		m.lines = snapLines
		m.orders = snapOrders
		m.nextID = snapNextID
		m.m.Unlock()
		return err
	}
	return nil
}

func (m *mockOrderStore) LockCartLines(_ context.Context, _ *sql.Tx, _ int64) ([]domain.PricedCartLine, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	return append([]domain.PricedCartLine(nil), m.lines...), nil
}

func (m *mockOrderStore) InsertOrder(_ context.Context, _ *sql.Tx, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.orderInsertErr != nil {
		return m.orderInsertErr
	}
	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = time.Now()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderStore) InsertOrderItems(_ context.Context, _ *sql.Tx, orderID int64, items []domain.OrderItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.itemsInsertErr != nil {
		return m.itemsInsertErr
	}
	order := m.orders[orderID]
	for i := range items {
		items[i].OrderID = orderID
		items[i].ID = int64(i + 1)
		order.Items = append(order.Items, items[i])
	}
	return nil
}

func (m *mockOrderStore) DeleteCartLines(_ context.Context, _ *sql.Tx, _ int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.lines = nil
	return nil
}

func (m *mockOrderStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *mockOrderStore) ListOrdersByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var orders []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderStore) ListOrdersByUserAndStatus(_ context.Context, userID int64, status domain.OrderStatus) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var orders []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderStore) ListAllOrders(context.Context) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var orders []*domain.Order
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, from, to domain.OrderStatus) error {
	if m.beforeStatusUpdate != nil {
		m.beforeStatusUpdate()
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.Status != from {
		return repository.ErrOrderStatusChanged
	}
	order.Status = to
	return nil
}

// setStatus flips an order's status directly, bypassing the compare-and-swap.
func (m *mockOrderStore) setStatus(orderID int64, status domain.OrderStatus) {
	m.m.Lock()
	defer m.m.Unlock()
	m.orders[orderID].Status = status
}
