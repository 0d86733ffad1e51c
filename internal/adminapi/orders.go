package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/checkout"
	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listAdminOrders)
	webserver.ApiGET("/orders/:id", getAdminOrder)
	webserver.ApiPUT("/orders/:id/status", setOrderStatus)
}

func listAdminOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		if !common.InSlice(status, []string{
			domain.OrderPending, domain.OrderPaid, domain.OrderShipped,
			domain.OrderDelivered, domain.OrderCancelled,
		}) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", nil)
		}
		db = db.Where("status = ?", status)
	}
	if pstatus := strings.TrimSpace(c.QueryParam("payment_status")); pstatus != "" {
		db = db.Where("payment_status = ?", pstatus)
	}
	if cid := c.QueryParam("customer_id"); cid != "" {
		db = db.Where("customer_id = ?", cid)
	}
	if orderNo := strings.TrimSpace(c.QueryParam("order_no")); orderNo != "" {
		db = db.Where("order_no = ?", orderNo)
	}
	// start/end accept any common date format
	if start := strings.TrimSpace(c.QueryParam("start")); start != "" {
		t, err := dateparse.ParseLocal(start)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse start date", err.Error())
		}
		db = db.Where("created_at >= ?", t)
	}
	if end := strings.TrimSpace(c.QueryParam("end")); end != "" {
		t, err := dateparse.ParseLocal(end)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse end date", err.Error())
		}
		db = db.Where("created_at <= ?", t)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	var rows []domain.Order
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getAdminOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var order domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	var items []domain.OrderItem
	GetDB(c).Where("order_id = ?", order.ID).Find(&items)
	var customer domain.Customer
	GetDB(c).Where("id = ?", order.CustomerId).First(&customer)
	var address domain.CustomerAddress
	GetDB(c).Where("id = ?", order.AddressId).First(&address)
	return ok(c, map[string]interface{}{
		"order":    order,
		"items":    items,
		"customer": customer,
		"address":  address,
	})
}

// setOrderStatus advances the fulfilment state machine. Cancelling a pending
// or paid order restores the reserved stock.
func setOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	order, err := GetCheckout(c).SetStatus(c.Request().Context(), id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrBadTransition):
			return fail(c, http.StatusConflict, "INVALID_STATUS",
				fmt.Sprintf("Order cannot move to %s", payload.Status), nil)
		default:
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		}
	}
	addOprLog(c, "order:status", fmt.Sprintf("order %s set to %s", order.OrderNo, order.Status))
	return ok(c, order)
}
