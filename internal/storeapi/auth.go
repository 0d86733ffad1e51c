package storeapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profilePayload struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/register", registerCustomer)
	webserver.PubPOST("/auth/login", login)
	webserver.AuthGET("/me", getProfile)
	webserver.AuthPUT("/me", updateProfile)
}

// registerCustomer creates a customer account; registration never grants admin
func registerCustomer(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var exists int64
	GetDB(c).Model(&domain.Customer{}).Where("email = ?", email).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
	}

	hash, err := common.HashPassword(payload.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process password", nil)
	}

	cust := domain.Customer{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     email,
		Phone:     strings.TrimSpace(payload.Phone),
		Password:  hash,
		Role:      domain.RoleCustomer,
		Status:    domain.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&cust).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}
	return ok(c, cust)
}

// login verifies credentials and issues a JWT
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var cust domain.Customer
	err := GetDB(c).Where("email = ?", email).First(&cust).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !common.CheckPassword(cust.Password, payload.Password)) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query account", err.Error())
	}
	if cust.Status == domain.StatusBlocked {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_BLOCKED", "Account is blocked", nil)
	}

	cfg := GetConfig(c)
	expire := time.Duration(cfg.Web.JwtExpireMin) * time.Minute
	if expire <= 0 {
		expire = time.Hour
	}
	token, err := webserver.IssueToken(cfg.Web.Secret, expire, &cust)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
	}

	GetDB(c).Model(&domain.Customer{}).Where("id = ?", cust.ID).Update("last_login", time.Now())

	return ok(c, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         cust,
	})
}

func getProfile(c echo.Context) error {
	claims := GetClaims(c)
	var cust domain.Customer
	if err := GetDB(c).First(&cust, claims.Uid).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Account not found", nil)
	}
	return ok(c, cust)
}

func updateProfile(c echo.Context) error {
	claims := GetClaims(c)
	var payload profilePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Phone != nil {
		updates["phone"] = strings.TrimSpace(*payload.Phone)
	}
	if err := GetDB(c).Model(&domain.Customer{}).Where("id = ?", claims.Uid).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", err.Error())
	}

	var cust domain.Customer
	GetDB(c).First(&cust, claims.Uid)
	return ok(c, cust)
}
