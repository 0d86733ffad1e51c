package storeapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type addressPayload struct {
	FullAddress string `json:"full_address" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"is_default"`
}

func registerAddressRoutes() {
	webserver.AuthGET("/addresses", listAddresses)
	webserver.AuthPOST("/addresses", createAddress)
	webserver.AuthPUT("/addresses/:id", updateAddress)
	webserver.AuthDELETE("/addresses/:id", deleteAddress)
}

func listAddresses(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	var rows []domain.CustomerAddress
	if err := GetDB(c).Where("customer_id = ?", cid).Order("is_default DESC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query addresses", err.Error())
	}
	return ok(c, rows)
}

func createAddress(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	var payload addressPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	addr := domain.CustomerAddress{
		ID:          common.UUIDint64(),
		CustomerId:  cid,
		FullAddress: payload.FullAddress,
		City:        payload.City,
		State:       payload.State,
		Pincode:     payload.Pincode,
		Country:     payload.Country,
		IsDefault:   payload.IsDefault,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if addr.IsDefault {
		GetDB(c).Model(&domain.CustomerAddress{}).
			Where("customer_id = ?", cid).Update("is_default", false)
	}
	if err := GetDB(c).Create(&addr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create address", err.Error())
	}
	return ok(c, addr)
}

func updateAddress(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid address id", nil)
	}
	var payload addressPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var addr domain.CustomerAddress
	if err := GetDB(c).Where("id = ? AND customer_id = ?", id, cid).First(&addr).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Address not found", nil)
	}

	addr.FullAddress = payload.FullAddress
	addr.City = payload.City
	addr.State = payload.State
	addr.Pincode = payload.Pincode
	addr.Country = payload.Country
	addr.IsDefault = payload.IsDefault
	addr.UpdatedAt = time.Now()

	if addr.IsDefault {
		GetDB(c).Model(&domain.CustomerAddress{}).
			Where("customer_id = ? AND id <> ?", cid, addr.ID).Update("is_default", false)
	}
	if err := GetDB(c).Save(&addr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update address", err.Error())
	}
	return ok(c, addr)
}

func deleteAddress(c echo.Context) error {
	cid := webserver.CurrentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid address id", nil)
	}
	if err := GetDB(c).Where("id = ? AND customer_id = ?", id, cid).
		Delete(&domain.CustomerAddress{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete address", err.Error())
	}
	return ok(c, nil)
}
