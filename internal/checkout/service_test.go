package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

// fakeRepo mimics the database, enforcing the guarded stock decrement under
// a mutex the way a transactional UPDATE ... WHERE stock >= ? would.
type fakeRepo struct {
	mu        sync.Mutex
	stock     map[int64]int
	orders    map[int64]*domain.Order
	items     map[int64][]domain.OrderItem
	addresses map[int64]int64 // address id -> customer id
	retries   map[int64]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stock:     make(map[int64]int),
		orders:    make(map[int64]*domain.Order),
		items:     make(map[int64][]domain.OrderItem),
		addresses: make(map[int64]int64),
		retries:   make(map[int64]int),
	}
}

func (r *fakeRepo) PlaceOrder(_ context.Context, order *domain.Order, items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		if r.stock[item.ProductId] < item.Quantity {
			return ErrStockConflict
		}
	}
	for _, item := range items {
		r.stock[item.ProductId] -= item.Quantity
	}
	for i := range items {
		items[i].OrderId = order.ID
	}
	cp := *order
	r.orders[order.ID] = &cp
	r.items[order.ID] = append([]domain.OrderItem(nil), items...)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeRepo) GetAddress(_ context.Context, id, customerID int64) (*domain.CustomerAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.addresses[id]
	if !ok || owner != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &domain.CustomerAddress{ID: id, CustomerId: owner}, nil
}

func (r *fakeRepo) ListPendingPayment(_ context.Context, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.PaymentStatus == domain.PaymentPending && o.Status == domain.OrderPending && o.PaymentRef != "" {
			cp := *o
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) StalePending(_ context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.Status == domain.OrderPending && o.CreatedAt.Before(cutoff) {
			cp := *o
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) StorePaymentRef(_ context.Context, id int64, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[id].PaymentRef = ref
	return nil
}

func (r *fakeRepo) MarkPaid(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = domain.OrderPaid
	o.PaymentStatus = domain.PaymentSuccess
	return true, nil
}

func (r *fakeRepo) IncrementPaymentRetry(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries[id]++
	r.orders[id].PaymentRetry = r.retries[id]
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[id].Status = status
	return nil
}

func (r *fakeRepo) CancelOrder(_ context.Context, id int64, paymentStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if o.Status != domain.OrderPending && o.Status != domain.OrderPaid {
		return false, nil
	}
	o.Status = domain.OrderCancelled
	o.PaymentStatus = paymentStatus
	for _, item := range r.items[id] {
		r.stock[item.ProductId] += item.Quantity
	}
	return true, nil
}

// fakeCarts serves a fixed cart per customer
type fakeCarts struct {
	mu    sync.Mutex
	carts map[int64]*domain.CartSession
	price decimal.Decimal
}

func (f *fakeCarts) Get(_ context.Context, customerID int64) (*domain.CartSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.carts[customerID]
	if !ok {
		return &domain.CartSession{CustomerId: customerID}, nil
	}
	return sess, nil
}

func (f *fakeCarts) Price(_ context.Context, sess *domain.CartSession) (*domain.PricedCart, error) {
	priced := &domain.PricedCart{Total: decimal.Zero}
	for _, line := range sess.Lines {
		sub := f.price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		priced.Lines = append(priced.Lines, domain.PricedCartLine{
			CartLine:  line,
			Title:     "item",
			UnitPrice: f.price,
			Subtotal:  sub,
		})
		priced.Total = priced.Total.Add(sub)
	}
	return priced, nil
}

func (f *fakeCarts) Clear(_ context.Context, customerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, customerID)
	return nil
}

type scriptedPayment struct {
	mu         sync.Mutex
	chargeErr  error
	status     string
	statusErr  error
	chargeRefs []string
}

func (p *scriptedPayment) Charge(_ context.Context, req *ChargeRequest) (*ChargeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chargeErr != nil {
		return nil, p.chargeErr
	}
	ref := "PAY-" + req.OrderNo
	p.chargeRefs = append(p.chargeRefs, ref)
	return &ChargeResult{Ref: ref, Status: "pending"}, nil
}

func (p *scriptedPayment) Status(_ context.Context, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.statusErr
}

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) PublishOrder(event string, _ *domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) has(event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e == event {
			return true
		}
	}
	return false
}

func setup() (*Service, *fakeRepo, *fakeCarts, *scriptedPayment, *recordingBus) {
	repo := newFakeRepo()
	repo.stock[1] = 5
	repo.addresses[10] = 100

	carts := &fakeCarts{
		carts: map[int64]*domain.CartSession{
			100: {CustomerId: 100, Lines: []domain.CartLine{{ProductId: 1, Quantity: 2}}},
		},
		price: decimal.NewFromFloat(50),
	}
	payment := &scriptedPayment{status: "pending"}
	bus := &recordingBus{}
	svc := NewService(repo, carts, payment, bus)
	return svc, repo, carts, payment, bus
}

func TestCheckoutHappyPath(t *testing.T) {
	svc, repo, carts, _, bus := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(100)))
	assert.NotEmpty(t, order.PaymentRef)

	// stock decremented exactly by ordered quantity
	assert.Equal(t, 3, repo.stock[1])

	// cart destroyed on checkout
	sess, err := carts.Get(ctx, 100)
	require.NoError(t, err)
	assert.True(t, sess.IsEmpty())

	assert.True(t, bus.has(EventOrderCreated))
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, repo, _, _, _ := setup()
	repo.addresses[11] = 200

	_, err := svc.Checkout(context.Background(), 200, 11)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutBadAddress(t *testing.T) {
	svc, _, _, _, _ := setup()

	// address belongs to customer 100, not 200
	_, err := svc.Checkout(context.Background(), 200, 10)
	assert.ErrorIs(t, err, ErrBadAddress)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	svc, repo, carts, _, _ := setup()
	repo.stock[1] = 1
	carts.carts[100].Lines[0].Quantity = 2

	_, err := svc.Checkout(context.Background(), 100, 10)
	assert.ErrorIs(t, err, ErrStockConflict)
	// inventory untouched on abort
	assert.Equal(t, 1, repo.stock[1])
}

func TestConcurrentCheckoutLowStock(t *testing.T) {
	// Two simultaneous checkouts for the last unit: exactly one succeeds.
	repo := newFakeRepo()
	repo.stock[1] = 1
	repo.addresses[10] = 100
	repo.addresses[11] = 200

	carts := &fakeCarts{
		carts: map[int64]*domain.CartSession{
			100: {CustomerId: 100, Lines: []domain.CartLine{{ProductId: 1, Quantity: 1}}},
			200: {CustomerId: 200, Lines: []domain.CartLine{{ProductId: 1, Quantity: 1}}},
		},
		price: decimal.NewFromFloat(50),
	}
	svc := NewService(repo, carts, &scriptedPayment{status: "pending"}, &recordingBus{})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, cust := range []struct{ customer, address int64 }{{100, 10}, {200, 11}} {
		wg.Add(1)
		go func(i int, customerID, addressID int64) {
			defer wg.Done()
			_, results[i] = svc.Checkout(context.Background(), customerID, addressID)
		}(i, cust.customer, cust.address)
	}
	wg.Wait()

	succeeded := 0
	conflicted := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrStockConflict):
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 0, repo.stock[1], "stock never goes negative")
}

func TestPaymentSyncSuccess(t *testing.T) {
	svc, repo, _, payment, bus := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	payment.mu.Lock()
	payment.status = "success"
	payment.mu.Unlock()

	svc.SyncPendingPayments(ctx)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, got.Status)
	assert.Equal(t, domain.PaymentSuccess, got.PaymentStatus)
	assert.True(t, bus.has(EventOrderPaid))
}

func TestPaymentSyncFailureRestocks(t *testing.T) {
	svc, repo, _, payment, bus := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)
	require.Equal(t, 3, repo.stock[1])

	payment.mu.Lock()
	payment.status = "failed"
	payment.mu.Unlock()

	svc.SyncPendingPayments(ctx)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, 5, repo.stock[1], "reserved stock restored")
	assert.True(t, bus.has(EventOrderCancelled))
}

func TestPaymentSyncPollErrorRetries(t *testing.T) {
	svc, repo, _, payment, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	payment.mu.Lock()
	payment.statusErr = assert.AnError
	payment.mu.Unlock()

	svc.SyncPendingPayments(ctx)
	got, _ := repo.GetByID(ctx, order.ID)
	assert.Equal(t, 1, got.PaymentRetry)
	assert.Equal(t, domain.OrderPending, got.Status)

	// after enough failed polls the order is cancelled and restocked
	for i := 0; i < maxPaymentRetry; i++ {
		svc.SyncPendingPayments(ctx)
	}
	got, _ = repo.GetByID(ctx, order.ID)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, 5, repo.stock[1])
}

func TestCancelByOwner(t *testing.T) {
	svc, repo, _, _, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, 999)
	assert.ErrorIs(t, err, ErrNotOwner)

	cancelled, err := svc.Cancel(ctx, order.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentFailed, cancelled.PaymentStatus, "unpaid cancellation closes out the payment")
	assert.Equal(t, 5, repo.stock[1])

	// cancelling again is an illegal transition
	_, err = svc.Cancel(ctx, order.ID, 100)
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestSetStatusTransitions(t *testing.T) {
	svc, repo, _, payment, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	// pending -> shipped is illegal
	_, err = svc.SetStatus(ctx, order.ID, domain.OrderShipped)
	assert.ErrorIs(t, err, ErrBadTransition)

	payment.mu.Lock()
	payment.status = "success"
	payment.mu.Unlock()
	svc.SyncPendingPayments(ctx)

	shipped, err := svc.SetStatus(ctx, order.ID, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, shipped.Status)

	// shipped orders do not restock on cancel, and cancel is illegal anyway
	_, err = svc.SetStatus(ctx, order.ID, domain.OrderCancelled)
	assert.ErrorIs(t, err, ErrBadTransition)

	delivered, err := svc.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, delivered.Status)
	assert.Equal(t, 3, repo.stock[1], "no restock on delivered order")
}

func TestExpireStalePending(t *testing.T) {
	svc, repo, _, _, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	// backdate the order
	repo.mu.Lock()
	repo.orders[order.ID].CreatedAt = time.Now().Add(-2 * time.Hour)
	repo.mu.Unlock()

	expired := svc.ExpireStalePending(ctx, time.Hour)
	assert.Equal(t, 1, expired)

	got, _ := repo.GetByID(ctx, order.ID)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, 5, repo.stock[1])
}

func TestConcurrentCancelRestocksOnce(t *testing.T) {
	// Customer cancel racing the stale sweep over the same order: exactly
	// one path wins the guarded transition and stock comes back once.
	svc, repo, _, _, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)
	require.Equal(t, 3, repo.stock[1])

	repo.mu.Lock()
	repo.orders[order.ID].CreatedAt = time.Now().Add(-2 * time.Hour)
	repo.mu.Unlock()

	var wg sync.WaitGroup
	var cancelErr error
	var expired int
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Cancel(ctx, order.ID, 100)
	}()
	go func() {
		defer wg.Done()
		expired = svc.ExpireStalePending(ctx, time.Hour)
	}()
	wg.Wait()

	got, _ := repo.GetByID(ctx, order.ID)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, 5, repo.stock[1], "stock restored exactly once")

	if cancelErr == nil {
		assert.Equal(t, 0, expired, "sweep must lose when the customer cancel wins")
	} else {
		assert.ErrorIs(t, cancelErr, ErrBadTransition)
		assert.Equal(t, 1, expired)
	}
}

func TestCancelPaidOrderKeepsPaymentRecord(t *testing.T) {
	svc, repo, _, payment, _ := setup()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 100, 10)
	require.NoError(t, err)

	payment.mu.Lock()
	payment.status = "success"
	payment.mu.Unlock()
	svc.SyncPendingPayments(ctx)

	cancelled, err := svc.SetStatus(ctx, order.ID, domain.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentSuccess, cancelled.PaymentStatus)
	assert.Equal(t, 5, repo.stock[1])
}
