package storeapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/checkout"
	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
)

type checkoutPayload struct {
	AddressId int64 `json:"address_id" validate:"required"`
}

func registerCheckoutRoutes() {
	webserver.AuthPOST("/checkout", placeOrder)
	webserver.AuthGET("/orders", listMyOrders)
	webserver.AuthGET("/orders/:id", getMyOrder)
	webserver.AuthPOST("/orders/:id/cancel", cancelMyOrder)
}

// placeOrder converts the current cart into an order with stock reservation
func placeOrder(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	order, err := GetCheckout(c).Checkout(c.Request().Context(), cid, payload.AddressId)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
		case errors.Is(err, checkout.ErrBadAddress):
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Address not found", nil)
		case errors.Is(err, checkout.ErrStockConflict):
			return fail(c, http.StatusConflict, "STOCK_CONFLICT", "One or more items are out of stock", nil)
		default:
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Checkout failed", err.Error())
		}
	}
	return ok(c, order)
}

func listMyOrders(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{}).Where("customer_id = ?", cid)
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
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

func getMyOrder(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order id", nil)
	}

	var order domain.Order
	if err := GetDB(c).Where("id = ? AND customer_id = ?", id, cid).First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	var items []domain.OrderItem
	GetDB(c).Where("order_id = ?", order.ID).Find(&items)

	return ok(c, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// cancelMyOrder cancels the customer's own order and restores reserved stock
func cancelMyOrder(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order id", nil)
	}

	order, err := GetCheckout(c).Cancel(c.Request().Context(), id, cid)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotOwner):
			return fail(c, http.StatusForbidden, "FORBIDDEN", "Order belongs to another customer", nil)
		case errors.Is(err, checkout.ErrBadTransition):
			return fail(c, http.StatusConflict, "INVALID_STATUS", "Order can no longer be cancelled", nil)
		default:
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		}
	}
	return ok(c, order)
}
