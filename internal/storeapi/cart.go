package storeapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/cart"
	"github.com/nexchakra/showcase/internal/webserver"
)

type cartItemPayload struct {
	ProductId int64 `json:"product_id" validate:"required"`
	VariantId int64 `json:"variant_id"`
	Quantity  int   `json:"quantity" validate:"required"`
}

func registerCartRoutes() {
	webserver.AuthGET("/cart", getCart)
	webserver.AuthPOST("/cart/items", addCartItem)
	webserver.AuthPUT("/cart/items", updateCartItem)
	webserver.AuthDELETE("/cart/items/:product_id", removeCartItem)
	webserver.AuthDELETE("/cart", clearCart)
}

func cartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrProductUnavailable):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not available", nil)
	case errors.Is(err, cart.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "STOCK_CONFLICT", "Not enough stock for requested quantity", nil)
	case errors.Is(err, cart.ErrBadQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid quantity", nil)
	case errors.Is(err, cart.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not in cart", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Cart operation failed", err.Error())
	}
}

// getCart returns the priced cart for the current customer
func getCart(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	session, err := GetCart(c).Get(c.Request().Context(), cid)
	if err != nil {
		return cartError(c, err)
	}
	priced, err := GetCart(c).Price(c.Request().Context(), session)
	if err != nil {
		return cartError(c, err)
	}
	return ok(c, priced)
}

func addCartItem(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	session, err := GetCart(c).AddItem(c.Request().Context(), cid, payload.ProductId, payload.VariantId, payload.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return ok(c, session)
}

func updateCartItem(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	// quantity 0 removes the line, so only product_id is required here
	if payload.ProductId == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required", nil)
	}
	session, err := GetCart(c).UpdateItem(c.Request().Context(), cid, payload.ProductId, payload.VariantId, payload.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return ok(c, session)
}

func removeCartItem(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	pid, err := parseIDParam(c, "product_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product id", nil)
	}
	var variantID int64
	if v := c.QueryParam("variant_id"); v != "" {
		variantID, _ = strconv.ParseInt(v, 10, 64)
	}
	session, err := GetCart(c).RemoveItem(c.Request().Context(), cid, pid, variantID)
	if err != nil {
		return cartError(c, err)
	}
	return ok(c, session)
}

func clearCart(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	if err := GetCart(c).Clear(c.Request().Context(), cid); err != nil {
		return cartError(c, err)
	}
	return ok(c, nil)
}
