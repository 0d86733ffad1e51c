package checkout

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

// ErrStockConflict is returned when a guarded stock decrement matches no row,
// meaning another checkout took the remaining stock first.
var ErrStockConflict = errors.New("insufficient stock")

// Repository handles order persistence and stock reservation
type Repository interface {
	// PlaceOrder atomically reserves stock for every item and persists the
	// order with its items. Any item short on stock rolls the whole
	// transaction back with ErrStockConflict.
	PlaceOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error

	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetAddress(ctx context.Context, id, customerID int64) (*domain.CustomerAddress, error)

	// ListPendingPayment returns orders awaiting a payment result
	ListPendingPayment(ctx context.Context, limit int) ([]*domain.Order, error)

	// StalePending returns pending orders created before the cutoff
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error)

	// StorePaymentRef records the gateway reference on a fresh order
	StorePaymentRef(ctx context.Context, id int64, ref string) error
	IncrementPaymentRetry(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status string) error

	// MarkPaid atomically moves a pending order to paid. Reports false
	// when the order already left pending (e.g. cancelled while the
	// gateway poll was in flight).
	MarkPaid(ctx context.Context, id int64) (bool, error)

	// CancelOrder atomically moves a pending or paid order to cancelled and
	// returns its reserved stock to the catalog, all in one transaction.
	// Reports false when another transition won first, so racing cancellation
	// paths restore stock at most once.
	CancelOrder(ctx context.Context, id int64, paymentStatus string) (bool, error)
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) PlaceOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			// Guarded decrement: matches only while enough stock remains,
			// so concurrent checkouts can never drive stock negative.
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductId, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStockConflict
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderId = order.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) GetAddress(ctx context.Context, id, customerID int64) (*domain.CustomerAddress, error) {
	var addr domain.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepository) ListPendingPayment(ctx context.Context, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND status = ?", domain.PaymentPending, domain.OrderPending).
		Where("payment_ref <> ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.OrderPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormRepository) StorePaymentRef(ctx context.Context, id int64, ref string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"payment_ref": ref, "updated_at": time.Now()}).Error
}

func (r *GormRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.OrderPending).
		Updates(map[string]interface{}{
			"status":         domain.OrderPaid,
			"payment_status": domain.PaymentSuccess,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *GormRepository) IncrementPaymentRetry(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("payment_retry", gorm.Expr("payment_retry + 1")).Error
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *GormRepository) CancelOrder(ctx context.Context, id int64, paymentStatus string) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guarded transition: matches only while the order is still
		// cancellable, so concurrent cancellation paths restock once.
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status IN ?", id, []string{domain.OrderPending, domain.OrderPaid}).
			Updates(map[string]interface{}{
				"status":         domain.OrderCancelled,
				"payment_status": paymentStatus,
				"updated_at":     time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			err := tx.Model(&domain.Product{}).
				Where("id = ?", item.ProductId).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	return won, err
}
