package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type settingPayload struct {
	Type   string `json:"type" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Value  string `json:"value"`
	Remark string `json:"remark"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/settings", listSettings)
	webserver.ApiPUT("/settings", updateSetting)
}

func listSettings(c echo.Context) error {
	db := GetDB(c).Model(&domain.SysConfig{})
	if ctype := strings.TrimSpace(c.QueryParam("type")); ctype != "" {
		db = db.Where("type = ?", ctype)
	}
	var rows []domain.SysConfig
	if err := db.Order("type ASC, sort ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, rows)
}

// updateSetting upserts one sys_config row keyed by (type, name)
func updateSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var cfg domain.SysConfig
	err := GetDB(c).Where("type = ? AND name = ?", payload.Type, payload.Name).First(&cfg).Error
	switch {
	case err == nil:
		cfg.Value = payload.Value
		if payload.Remark != "" {
			cfg.Remark = payload.Remark
		}
		cfg.UpdatedAt = time.Now()
		if err := GetDB(c).Save(&cfg).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		cfg = domain.SysConfig{
			ID:        common.UUIDint64(),
			Type:      payload.Type,
			Name:      payload.Name,
			Value:     payload.Value,
			Remark:    payload.Remark,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := GetDB(c).Create(&cfg).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create setting", err.Error())
		}
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query setting", err.Error())
	}
	addOprLog(c, "settings:update", fmt.Sprintf("set %s.%s = %s", cfg.Type, cfg.Name, cfg.Value))
	return ok(c, cfg)
}
