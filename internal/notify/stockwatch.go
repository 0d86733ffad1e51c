package notify

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

// LowStockSource finds the products of an order whose stock has fallen to or
// below the threshold.
type LowStockSource interface {
	LowStock(ctx context.Context, orderID int64, threshold int) ([]domain.Product, error)
}

// GormLowStockSource reads low-stock products from the catalog tables
type GormLowStockSource struct {
	db *gorm.DB
}

func NewGormLowStockSource(db *gorm.DB) *GormLowStockSource {
	return &GormLowStockSource{db: db}
}

func (s *GormLowStockSource) LowStock(ctx context.Context, orderID int64, threshold int) ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.WithContext(ctx).
		Where("id IN (?) AND stock <= ?",
			s.db.Model(&domain.OrderItem{}).Select("product_id").Where("order_id = ?", orderID),
			threshold).
		Find(&products).Error
	return products, err
}

// StockWatcher republishes stock.low warnings after each order drains stock.
// It listens on order.created so checkout stays unaware of the concern.
type StockWatcher struct {
	bus      *Bus
	source   LowStockSource
	settings Settings
}

func NewStockWatcher(bus *Bus, source LowStockSource, settings Settings) (*StockWatcher, error) {
	w := &StockWatcher{bus: bus, source: source, settings: settings}
	if err := bus.SubscribeOrder("order.created", w.OnOrderCreated); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *StockWatcher) threshold() int {
	t := w.settings.GetInt("checkout", "low_stock_threshold")
	if t <= 0 {
		t = 5
	}
	return t
}

// OnOrderCreated checks the ordered products and warns about any running low
func (w *StockWatcher) OnOrderCreated(evt OrderEvent) {
	products, err := w.source.LowStock(context.Background(), evt.OrderId, w.threshold())
	if err != nil {
		zap.L().Warn("low stock check failed",
			zap.String("order_no", evt.OrderNo), zap.Error(err))
		return
	}
	for i := range products {
		w.bus.PublishStockLow(&products[i])
	}
}
