// Package adminapi exposes the management API mounted under /api/v1/admin:
// catalog administration, order fulfilment, customer management, settings,
// dashboard and data export. All routes require an admin token.
package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

// package-local shorthands matching the handler call style
var (
	ok                    = webserver.OK
	fail                  = webserver.Fail
	paged                 = webserver.Paged
	parsePagination       = webserver.ParsePagination
	parseIDParam          = webserver.ParseIDParam
	handleValidationError = webserver.HandleValidationError

	GetDB       = webserver.GetDB
	GetConfig   = webserver.GetConfig
	GetCheckout = webserver.GetCheckout
	GetSettings = webserver.GetSettings
	GetClaims   = webserver.GetClaims
)

// Init registers all admin routes with the webserver
func Init() {
	registerCategoryRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerCustomerRoutes()
	registerSettingsRoutes()
	registerOprLogRoutes()
	registerDashboardRoutes()
	registerExportRoutes()
}

// addOprLog appends an audit record for a privileged mutation. Failures are
// ignored; auditing must never break the operation itself.
func addOprLog(c echo.Context, action, desc string) {
	name := ""
	if claims := GetClaims(c); claims != nil {
		name = claims.Name
	}
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
