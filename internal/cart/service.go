package cart

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

// Cart-level validation errors surfaced to the storefront API
var (
	ErrProductUnavailable = errors.New("product not available")
	ErrInsufficientStock  = errors.New("requested quantity exceeds stock")
	ErrBadQuantity        = errors.New("quantity must be positive")
)

// DefaultSessionTTL is how long an untouched cart survives
const DefaultSessionTTL = 72 * time.Hour

// ProductReader is the slice of catalog access the cart needs
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error)
}

// GormProductReader adapts a gorm handle to the ProductReader interface
type GormProductReader struct {
	db *gorm.DB
}

func NewGormProductReader(db *gorm.DB) *GormProductReader {
	return &GormProductReader{db: db}
}

func (r *GormProductReader) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductReader) GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// Service manages cart sessions on top of a Store
type Service struct {
	store    Store
	products ProductReader
	ttl      time.Duration
}

func NewService(store Store, products ProductReader, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{store: store, products: products, ttl: ttl}
}

// Get returns the customer's cart, an empty session if none exists
func (s *Service) Get(ctx context.Context, customerID int64) (*domain.CartSession, error) {
	sess, err := s.store.Get(ctx, customerID)
	if errors.Is(err, ErrNotFound) {
		return &domain.CartSession{CustomerId: customerID}, nil
	}
	return sess, err
}

// AddItem puts qty of a product (optionally a variant) into the cart.
// Stock is validated against the current catalog for early feedback; the
// authoritative check happens again at checkout.
func (s *Service) AddItem(ctx context.Context, customerID, productID, variantID int64, qty int) (*domain.CartSession, error) {
	if qty <= 0 {
		return nil, ErrBadQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, ErrProductUnavailable
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	available := product.Stock
	if variantID != 0 {
		variant, err := s.products.GetVariant(ctx, variantID)
		if err != nil || variant.ProductId != productID {
			return nil, ErrProductUnavailable
		}
		if variant.Stock != nil {
			available = *variant.Stock
		}
	}

	sess, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if idx := sess.Find(productID, variantID); idx >= 0 {
		if sess.Lines[idx].Quantity+qty > available {
			return nil, ErrInsufficientStock
		}
		sess.Lines[idx].Quantity += qty
	} else {
		if qty > available {
			return nil, ErrInsufficientStock
		}
		sess.Lines = append(sess.Lines, domain.CartLine{
			ProductId: productID,
			VariantId: variantID,
			Quantity:  qty,
		})
	}

	sess.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, sess, s.ttl); err != nil {
		return nil, errors.Wrap(err, "save cart session")
	}
	return sess, nil
}

// UpdateItem sets the quantity of an existing line; zero removes it
func (s *Service) UpdateItem(ctx context.Context, customerID, productID, variantID int64, qty int) (*domain.CartSession, error) {
	if qty < 0 {
		return nil, ErrBadQuantity
	}
	sess, err := s.store.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	idx := sess.Find(productID, variantID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	if qty == 0 {
		sess.Lines = append(sess.Lines[:idx], sess.Lines[idx+1:]...)
	} else {
		product, err := s.products.GetProduct(ctx, productID)
		if err != nil || !product.IsActive {
			return nil, ErrProductUnavailable
		}
		available := product.Stock
		if variantID != 0 {
			variant, err := s.products.GetVariant(ctx, variantID)
			if err != nil || variant.ProductId != productID {
				return nil, ErrProductUnavailable
			}
			if variant.Stock != nil {
				available = *variant.Stock
			}
		}
		if qty > available {
			return nil, ErrInsufficientStock
		}
		sess.Lines[idx].Quantity = qty
	}

	sess.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, sess, s.ttl); err != nil {
		return nil, errors.Wrap(err, "save cart session")
	}
	return sess, nil
}

// RemoveItem drops a line from the cart
func (s *Service) RemoveItem(ctx context.Context, customerID, productID, variantID int64) (*domain.CartSession, error) {
	return s.UpdateItem(ctx, customerID, productID, variantID, 0)
}

// Clear destroys the cart session
func (s *Service) Clear(ctx context.Context, customerID int64) error {
	return s.store.Delete(ctx, customerID)
}

// Price joins the cart with current catalog prices for display
func (s *Service) Price(ctx context.Context, sess *domain.CartSession) (*domain.PricedCart, error) {
	priced := &domain.PricedCart{Total: decimal.Zero, Lines: []domain.PricedCartLine{}}
	for _, line := range sess.Lines {
		product, err := s.products.GetProduct(ctx, line.ProductId)
		if err != nil {
			// product vanished from the catalog; skip the line
			continue
		}
		unit := product.SellingPrice()
		stock := product.Stock
		if line.VariantId != 0 {
			if variant, err := s.products.GetVariant(ctx, line.VariantId); err == nil {
				if variant.Price != nil {
					unit = *variant.Price
				}
				if variant.Stock != nil {
					stock = *variant.Stock
				}
			}
		}
		subtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		priced.Lines = append(priced.Lines, domain.PricedCartLine{
			CartLine:  line,
			Title:     product.Title,
			Slug:      product.Slug,
			ImageUrl:  product.ImageUrl,
			UnitPrice: unit,
			Subtotal:  subtotal,
			Stock:     stock,
		})
		priced.Total = priced.Total.Add(subtotal)
	}
	return priced, nil
}
