package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type resetPasswordPayload struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

func registerCustomerRoutes() {
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiGET("/customers/:id", getCustomer)
	webserver.ApiPOST("/customers/:id/block", blockCustomer)
	webserver.ApiPOST("/customers/:id/unblock", unblockCustomer)
	webserver.ApiPOST("/customers/:id/reset-password", resetCustomerPassword)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Customer{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ? OR email ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			lq := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", lq, lq)
		}
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		db = db.Where("role = ?", role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	var rows []domain.Customer
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var cust domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cust).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}
	var addresses []domain.CustomerAddress
	GetDB(c).Where("customer_id = ?", id).Find(&addresses)
	var orderCount int64
	GetDB(c).Model(&domain.Order{}).Where("customer_id = ?", id).Count(&orderCount)
	return ok(c, map[string]interface{}{
		"customer":    cust,
		"addresses":   addresses,
		"order_count": orderCount,
	})
}

func setCustomerStatus(c echo.Context, status string) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var cust domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cust).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}
	// an admin cannot lock themselves out
	if claims := GetClaims(c); claims != nil && claims.Uid == cust.ID && status == domain.StatusBlocked {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Cannot block your own account", nil)
	}
	cust.Status = status
	cust.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cust).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer", err.Error())
	}
	addOprLog(c, "customer:"+status, fmt.Sprintf("customer %s (%d) set to %s", cust.Email, cust.ID, status))
	return ok(c, cust)
}

func blockCustomer(c echo.Context) error {
	return setCustomerStatus(c, domain.StatusBlocked)
}

func unblockCustomer(c echo.Context) error {
	return setCustomerStatus(c, domain.StatusActive)
}

func resetCustomerPassword(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var payload resetPasswordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	var cust domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cust).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}
	hash, err := common.HashPassword(payload.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to hash password", err.Error())
	}
	cust.Password = hash
	cust.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cust).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer", err.Error())
	}
	addOprLog(c, "customer:reset-password", fmt.Sprintf("reset password for %s (%d)", cust.Email, cust.ID))
	return ok(c, map[string]interface{}{"id": cust.ID})
}
