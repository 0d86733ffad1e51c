package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.CartSession
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[int64]*domain.CartSession)}
}

func (m *memStore) Get(_ context.Context, customerID int64) (*domain.CartSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[customerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	cp.Lines = append([]domain.CartLine(nil), sess.Lines...)
	return &cp, nil
}

func (m *memStore) Put(_ context.Context, sess *domain.CartSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	cp.Lines = append([]domain.CartLine(nil), sess.Lines...)
	m.sessions[sess.CustomerId] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, customerID)
	return nil
}

type fakeCatalog struct {
	products map[int64]*domain.Product
	variants map[int64]*domain.ProductVariant
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeCatalog) GetVariant(_ context.Context, id int64) (*domain.ProductVariant, error) {
	v, ok := f.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func newTestService() (*Service, *fakeCatalog) {
	discount := decimal.NewFromFloat(80)
	variantPrice := decimal.NewFromFloat(120)
	variantStock := 2
	catalog := &fakeCatalog{
		products: map[int64]*domain.Product{
			1: {ID: 1, Title: "Ruby Pendant", Slug: "ruby-pendant", Price: decimal.NewFromFloat(100), Stock: 5, IsActive: true},
			2: {ID: 2, Title: "Brass Lamp", Slug: "brass-lamp", Price: decimal.NewFromFloat(90), DiscountPrice: &discount, Stock: 1, IsActive: true},
			3: {ID: 3, Title: "Retired Item", Slug: "retired-item", Price: decimal.NewFromFloat(10), Stock: 10, IsActive: false},
		},
		variants: map[int64]*domain.ProductVariant{
			7: {ID: 7, ProductId: 1, VariantName: "size", VariantValue: "L", Price: &variantPrice, Stock: &variantStock},
		},
	}
	return NewService(newMemStore(), catalog, time.Hour), catalog
}

func TestAddItem(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.AddItem(ctx, 100, 1, 0, 2)
	require.NoError(t, err)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, 2, sess.Lines[0].Quantity)

	// same line accumulates
	sess, err = svc.AddItem(ctx, 100, 1, 0, 1)
	require.NoError(t, err)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, 3, sess.Lines[0].Quantity)
}

func TestAddItemStockLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 2, 0, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AddItem(ctx, 100, 2, 0, 1)
	assert.NoError(t, err)

	// accumulating past stock also fails
	_, err = svc.AddItem(ctx, 100, 2, 0, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAddItemInactiveProduct(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddItem(context.Background(), 100, 3, 0, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddItem(context.Background(), 100, 999, 0, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAddItemBadQuantity(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddItem(context.Background(), 100, 1, 0, 0)
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestAddVariantUsesVariantStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 7, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	sess, err := svc.AddItem(ctx, 100, 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.Lines[0].VariantId)
}

func TestUpdateVariantUsesVariantStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 7, 1)
	require.NoError(t, err)

	// variant caps at 2 even though the base product has 5 in stock
	_, err = svc.UpdateItem(ctx, 100, 1, 7, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	sess, err := svc.UpdateItem(ctx, 100, 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Lines[0].Quantity)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 0, 2)
	require.NoError(t, err)

	sess, err := svc.UpdateItem(ctx, 100, 1, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sess.Lines[0].Quantity)

	_, err = svc.UpdateItem(ctx, 100, 1, 0, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	sess, err = svc.RemoveItem(ctx, 100, 1, 0)
	require.NoError(t, err)
	assert.True(t, sess.IsEmpty())
}

func TestPrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 0, 2) // 2 x 100
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 100, 2, 0, 1) // 1 x 80 (discount)
	require.NoError(t, err)

	sess, err := svc.Get(ctx, 100)
	require.NoError(t, err)

	priced, err := svc.Price(ctx, sess)
	require.NoError(t, err)
	require.Len(t, priced.Lines, 2)
	assert.True(t, priced.Total.Equal(decimal.NewFromFloat(280)), "got total %s", priced.Total)
}

func TestPriceVariantOverride(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 7, 2) // 2 x 120 variant price
	require.NoError(t, err)

	sess, err := svc.Get(ctx, 100)
	require.NoError(t, err)

	priced, err := svc.Price(ctx, sess)
	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)
	assert.True(t, priced.Total.Equal(decimal.NewFromFloat(240)))
	assert.Equal(t, 2, priced.Lines[0].Stock)
}

func TestClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 100, 1, 0, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 100))

	sess, err := svc.Get(ctx, 100)
	require.NoError(t, err)
	assert.True(t, sess.IsEmpty())
}
