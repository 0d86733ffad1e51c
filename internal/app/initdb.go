package app

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/pkg/common"
)

const (
	superEmail      = "admin@nexchakra.com"
	defaultPassword = "Admin@123"
)

// checkSuper creates the default admin account on first run and repairs it
// when the role or status has drifted.
func (a *Application) checkSuper() {
	var admin domain.Customer
	err := a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.Customer{
			ID:        common.UUIDint64(),
			Name:      "Administrator",
			Email:     superEmail,
			Password:  hashed,
			Role:      domain.RoleAdmin,
			Status:    domain.StatusActive,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !strings.EqualFold(admin.Role, domain.RoleAdmin)
	resetStatus := !strings.EqualFold(admin.Status, domain.StatusActive)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		updates["password"] = hashed
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if resetStatus {
		updates["status"] = domain.StatusActive
	}

	if err := a.gormDB.Model(&domain.Customer{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusReset", resetStatus))
}

type settingDefault struct {
	Key     string
	Default string
	Remark  string
}

var settingDefaults = []settingDefault{
	{"store.name", "NexChakra", "Store display name"},
	{"store.currency", "INR", "Currency code used for display"},
	{"store.support_email", "support@nexchakra.com", "Customer support address"},
	{"checkout.cart_ttl_hours", "72", "Hours before an abandoned cart expires"},
	{"checkout.stale_pending_minutes", "60", "Minutes before an unpaid pending order is cancelled"},
	{"checkout.low_stock_threshold", "5", "Stock level that flags a product on the dashboard"},
	{"smtp.host", "", "SMTP server host, mail disabled when empty"},
	{"smtp.port", "587", "SMTP server port"},
	{"smtp.username", "", "SMTP username"},
	{"smtp.password", "", "SMTP password"},
	{"smtp.from", "orders@nexchakra.com", "Sender address for order mail"},
	{"system.oprlog_retention_days", "365", "Days to keep admin audit records"},
}

// checkSettings initializes missing sys_config entries with defaults
func (a *Application) checkSettings() {
	for sortid, def := range settingDefaults {
		parts := strings.SplitN(def.Key, ".", 2)
		if len(parts) != 2 {
			continue
		}
		category, name := parts[0], parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)
		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  def.Default,
				Remark: def.Remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", def.Key),
				zap.String("default", def.Default))
		}
	}
}

// checkCategories seeds the top-level catalog tree on an empty database
func (a *Application) checkCategories() {
	var count int64
	a.gormDB.Model(&domain.Category{}).Count(&count)
	if count > 0 {
		return
	}
	for i, name := range []string{"Jewelry", "Antiques", "Gifts"} {
		a.gormDB.Create(&domain.Category{
			ID:   common.UUIDint64(),
			Name: name,
			Slug: common.Slugify(name),
			Sort: i,
		})
	}
	zap.L().Info("initialized default categories")
}

// checkProducts seeds a small demo catalog on an empty database
func (a *Application) checkProducts() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count > 0 {
		return
	}
	var jewelry domain.Category
	if err := a.gormDB.Where("slug = ?", "jewelry").First(&jewelry).Error; err != nil {
		return
	}

	demo := []domain.Product{
		{
			Title: "Gold Chakra Pendant", Sku: "NX-PEND-001",
			Description: "22k gold pendant with chakra motif",
			Price:       decimal.NewFromInt(12500), Material: "gold",
			Weight: decimal.NewFromFloat(8.5), Stock: 10, IsActive: true,
		},
		{
			Title: "Silver Temple Ring", Sku: "NX-RING-001",
			Description: "Oxidised silver ring, temple work",
			Price:       decimal.NewFromInt(1800), Material: "silver",
			Weight: decimal.NewFromFloat(4.2), Stock: 25, IsActive: true,
		},
		{
			Title: "Antique Brass Bangle", Sku: "NX-BANG-001",
			Description: "Handmade brass bangle, single piece",
			Price:       decimal.NewFromInt(950), Material: "brass",
			Weight: decimal.NewFromFloat(12.0), Stock: 1, IsLimited: true, IsActive: true,
		},
	}
	for i := range demo {
		demo[i].ID = common.UUIDint64()
		demo[i].CategoryId = jewelry.ID
		demo[i].Slug = common.Slugify(demo[i].Title)
		a.gormDB.Create(&demo[i])
	}
	zap.L().Info("initialized demo products", zap.Int("count", len(demo)))
}
