package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
)

// TokenClaims are the JWT claims issued on login. Subject carries the email
// as in the original storefront; Uid and Role drive authorization.
type TokenClaims struct {
	Uid  int64  `json:"uid,string"`
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for a customer account
func IssueToken(secret string, expire time.Duration, cust *domain.Customer) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		Uid:  cust.ID,
		Name: cust.Name,
		Role: cust.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cust.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies a signed token and returns its claims
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JwtConfig builds the echo-jwt middleware configuration
func JwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token", nil)
		},
	}
}

// GetClaims extracts the verified claims set by the JWT middleware
func GetClaims(c echo.Context) *TokenClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*TokenClaims)
	return claims
}

// CurrentCustomerID returns the authenticated customer ID, 0 when anonymous
func CurrentCustomerID(c echo.Context) int64 {
	if claims := GetClaims(c); claims != nil {
		return claims.Uid
	}
	return 0
}

// AdminOnlyMiddleware rejects tokens without the admin role
func AdminOnlyMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil || claims.Role != domain.RoleAdmin {
				return Fail(c, http.StatusForbidden, "FORBIDDEN", "Admin privilege required", nil)
			}
			return next(c)
		}
	}
}
