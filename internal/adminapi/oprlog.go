package adminapi

import (
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
)

func registerOprLogRoutes() {
	webserver.ApiGET("/oprlog", listOprLog)
}

func listOprLog(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.SysOprLog{})
	if action := strings.TrimSpace(c.QueryParam("action")); action != "" {
		db = db.Where("opt_action = ?", action)
	}
	if name := strings.TrimSpace(c.QueryParam("opr_name")); name != "" {
		db = db.Where("opr_name = ?", name)
	}
	if start := strings.TrimSpace(c.QueryParam("start")); start != "" {
		t, err := dateparse.ParseLocal(start)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse start date", err.Error())
		}
		db = db.Where("opt_time >= ?", t)
	}
	if end := strings.TrimSpace(c.QueryParam("end")); end != "" {
		t, err := dateparse.ParseLocal(end)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse end date", err.Error())
		}
		db = db.Where("opt_time <= ?", t)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	var rows []domain.SysOprLog
	if err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}
