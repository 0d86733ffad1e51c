package checkout

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/pkg/common"
)

// Service-level checkout errors
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBadAddress    = errors.New("address not found for customer")
	ErrNotOwner      = errors.New("order does not belong to customer")
	ErrBadTransition = errors.New("illegal order status transition")
)

// maxPaymentRetry bounds gateway polling attempts before giving up
const maxPaymentRetry = 5

// CartAccess is the slice of the cart service checkout needs
type CartAccess interface {
	Get(ctx context.Context, customerID int64) (*domain.CartSession, error)
	Price(ctx context.Context, sess *domain.CartSession) (*domain.PricedCart, error)
	Clear(ctx context.Context, customerID int64) error
}

// Publisher receives order lifecycle events
type Publisher interface {
	PublishOrder(event string, order *domain.Order)
}

// Order lifecycle event names
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
	EventOrderShipped   = "order.shipped"
)

// Service converts carts into orders and drives payment state
type Service struct {
	repo     Repository
	carts    CartAccess
	payment  PaymentClient
	bus      Publisher
	stopChan chan struct{}
	ticker   *time.Ticker
}

func NewService(repo Repository, carts CartAccess, payment PaymentClient, bus Publisher) *Service {
	return &Service{
		repo:     repo,
		carts:    carts,
		payment:  payment,
		bus:      bus,
		stopChan: make(chan struct{}),
	}
}

// Checkout validates the customer's cart, atomically reserves stock, creates
// a pending order and initiates payment. On any stock shortage the whole
// operation aborts without touching inventory.
func (s *Service) Checkout(ctx context.Context, customerID, addressID int64) (*domain.Order, error) {
	if _, err := s.repo.GetAddress(ctx, addressID, customerID); err != nil {
		return nil, ErrBadAddress
	}

	sess, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if sess.IsEmpty() {
		return nil, ErrEmptyCart
	}

	priced, err := s.carts.Price(ctx, sess)
	if err != nil {
		return nil, errors.Wrap(err, "price cart")
	}
	if len(priced.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:            common.UUIDint64(),
		OrderNo:       common.NewOrderNo(),
		CustomerId:    customerID,
		AddressId:     addressID,
		TotalAmount:   priced.Total,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	items := make([]domain.OrderItem, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		items = append(items, domain.OrderItem{
			ID:        common.UUIDint64(),
			ProductId: line.ProductId,
			VariantId: line.VariantId,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	if err := s.repo.PlaceOrder(ctx, order, items); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, customerID); err != nil {
		zap.L().Warn("failed to clear cart after checkout",
			zap.Int64("customer_id", customerID), zap.Error(err))
	}

	if s.bus != nil {
		s.bus.PublishOrder(EventOrderCreated, order)
	}

	s.initiatePayment(ctx, order)
	return order, nil
}

// initiatePayment asks the gateway for a charge and stores the reference.
// Failures leave the order pending; the sync loop retries later orders and
// the stale-pending sweep eventually cancels unreferenced ones.
func (s *Service) initiatePayment(ctx context.Context, order *domain.Order) {
	if s.payment == nil {
		return
	}
	result, err := s.payment.Charge(ctx, &ChargeRequest{
		OrderNo:  order.OrderNo,
		Amount:   order.TotalAmount,
		Currency: "INR",
	})
	if err != nil {
		zap.L().Error("payment charge failed",
			zap.String("order_no", order.OrderNo), zap.Error(err))
		return
	}
	order.PaymentRef = result.Ref
	if err := s.repo.StorePaymentRef(ctx, order.ID, result.Ref); err != nil {
		zap.L().Error("failed to store payment ref",
			zap.String("order_no", order.OrderNo), zap.Error(err))
		return
	}
	if result.Status != "pending" {
		s.applyPaymentResult(ctx, order, result.Status)
	}
}

// Start begins the periodic payment status sync
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.ticker = time.NewTicker(interval)
	go s.syncLoop(ctx)
	zap.L().Info("payment sync service started", zap.Duration("sync_interval", interval))
}

// Stop halts the payment sync loop
func (s *Service) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
	zap.L().Info("payment sync service stopped")
}

func (s *Service) syncLoop(ctx context.Context) {
	for {
		select {
		case <-s.ticker.C:
			s.SyncPendingPayments(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SyncPendingPayments polls the gateway for every order awaiting a result
func (s *Service) SyncPendingPayments(ctx context.Context) {
	pending, err := s.repo.ListPendingPayment(ctx, 100)
	if err != nil {
		zap.L().Error("failed to list pending payments", zap.Error(err))
		return
	}
	for _, order := range pending {
		status, err := s.payment.Status(ctx, order.PaymentRef)
		if err != nil {
			zap.L().Warn("payment status poll failed",
				zap.String("order_no", order.OrderNo), zap.Error(err))
			if order.PaymentRetry+1 >= maxPaymentRetry {
				s.applyPaymentResult(ctx, order, "failed")
				continue
			}
			if err := s.repo.IncrementPaymentRetry(ctx, order.ID); err != nil {
				zap.L().Error("failed to increment payment retry", zap.Error(err))
			}
			continue
		}
		if status == "pending" {
			continue
		}
		s.applyPaymentResult(ctx, order, status)
	}
}

func (s *Service) applyPaymentResult(ctx context.Context, order *domain.Order, status string) {
	switch status {
	case "success":
		won, err := s.repo.MarkPaid(ctx, order.ID)
		if err != nil {
			zap.L().Error("failed to mark order paid",
				zap.String("order_no", order.OrderNo), zap.Error(err))
			return
		}
		if !won {
			// cancelled (and restocked) while the poll was in flight
			return
		}
		order.PaymentStatus = domain.PaymentSuccess
		order.Status = domain.OrderPaid
		if s.bus != nil {
			s.bus.PublishOrder(EventOrderPaid, order)
		}
		zap.L().Info("order paid", zap.String("order_no", order.OrderNo))
	case "failed":
		if err := s.cancelWithRestock(ctx, order, domain.PaymentFailed); err != nil {
			if errors.Is(err, ErrBadTransition) {
				// another path cancelled or paid it first
				return
			}
			zap.L().Error("failed to cancel unpaid order",
				zap.String("order_no", order.OrderNo), zap.Error(err))
			return
		}
		zap.L().Info("order cancelled after failed payment", zap.String("order_no", order.OrderNo))
	default:
		zap.L().Warn("unknown payment status",
			zap.String("order_no", order.OrderNo), zap.String("status", status))
	}
}

// cancelWithRestock is the single cancellation path. The repository's guarded
// transition decides the winner when customer cancel, the payment sync loop
// and the stale sweep race over one order; losers get ErrBadTransition and
// stock is restored exactly once.
func (s *Service) cancelWithRestock(ctx context.Context, order *domain.Order, paymentStatus string) error {
	won, err := s.repo.CancelOrder(ctx, order.ID, paymentStatus)
	if err != nil {
		return err
	}
	if !won {
		return ErrBadTransition
	}
	order.PaymentStatus = paymentStatus
	order.Status = domain.OrderCancelled
	if s.bus != nil {
		s.bus.PublishOrder(EventOrderCancelled, order)
	}
	return nil
}

// cancelPaymentStatus picks the terminal payment status for a cancellation:
// paid orders keep their success record, unpaid ones are marked failed.
func cancelPaymentStatus(order *domain.Order) string {
	if order.PaymentStatus == domain.PaymentSuccess {
		return domain.PaymentSuccess
	}
	return domain.PaymentFailed
}

// Cancel aborts a customer's own not-yet-shipped order and restores stock.
// customerID 0 means an admin acting on any order.
func (s *Service) Cancel(ctx context.Context, orderID, customerID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customerID != 0 && order.CustomerId != customerID {
		return nil, ErrNotOwner
	}
	if !order.CanTransition(domain.OrderCancelled) {
		return nil, ErrBadTransition
	}
	if err := s.cancelWithRestock(ctx, order, cancelPaymentStatus(order)); err != nil {
		return nil, err
	}
	return order, nil
}

// SetStatus applies an admin status transition, restocking on cancellation
// of not-yet-shipped orders.
func (s *Service) SetStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanTransition(status) {
		return nil, ErrBadTransition
	}
	if status == domain.OrderCancelled {
		if err := s.cancelWithRestock(ctx, order, cancelPaymentStatus(order)); err != nil {
			return nil, err
		}
		return order, nil
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	if s.bus != nil && status == domain.OrderShipped {
		s.bus.PublishOrder(EventOrderShipped, order)
	}
	return order, nil
}

// ExpireStalePending cancels pending orders older than maxAge and returns
// their reserved stock. Run from the scheduler.
func (s *Service) ExpireStalePending(ctx context.Context, maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	stale, err := s.repo.StalePending(ctx, cutoff, 100)
	if err != nil {
		zap.L().Error("failed to list stale pending orders", zap.Error(err))
		return 0
	}
	expired := 0
	for _, order := range stale {
		if err := s.cancelWithRestock(ctx, order, domain.PaymentFailed); err != nil {
			if errors.Is(err, ErrBadTransition) {
				continue
			}
			zap.L().Error("failed to expire stale order",
				zap.String("order_no", order.OrderNo), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		zap.L().Info("expired stale pending orders", zap.Int("count", expired))
	}
	return expired
}
