package webserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/config"
	"github.com/nexchakra/showcase/internal/cart"
	"github.com/nexchakra/showcase/internal/checkout"
)

type routeEntry struct {
	method  string
	path    string
	handler echo.HandlerFunc
}

var (
	pubRoutes   []routeEntry
	authRoutes  []routeEntry
	adminRoutes []routeEntry
)

// PubGET registers an unauthenticated storefront route under /api/v1
func PubGET(path string, h echo.HandlerFunc) {
	pubRoutes = append(pubRoutes, routeEntry{http.MethodGet, path, h})
}

func PubPOST(path string, h echo.HandlerFunc) {
	pubRoutes = append(pubRoutes, routeEntry{http.MethodPost, path, h})
}

// AuthGET registers a customer route under /api/v1, JWT required
func AuthGET(path string, h echo.HandlerFunc) {
	authRoutes = append(authRoutes, routeEntry{http.MethodGet, path, h})
}

func AuthPOST(path string, h echo.HandlerFunc) {
	authRoutes = append(authRoutes, routeEntry{http.MethodPost, path, h})
}

func AuthPUT(path string, h echo.HandlerFunc) {
	authRoutes = append(authRoutes, routeEntry{http.MethodPut, path, h})
}

func AuthDELETE(path string, h echo.HandlerFunc) {
	authRoutes = append(authRoutes, routeEntry{http.MethodDelete, path, h})
}

// ApiGET registers an admin route under /api/v1/admin, JWT + admin role required
func ApiGET(path string, h echo.HandlerFunc) {
	adminRoutes = append(adminRoutes, routeEntry{http.MethodGet, path, h})
}

func ApiPOST(path string, h echo.HandlerFunc) {
	adminRoutes = append(adminRoutes, routeEntry{http.MethodPost, path, h})
}

func ApiPUT(path string, h echo.HandlerFunc) {
	adminRoutes = append(adminRoutes, routeEntry{http.MethodPut, path, h})
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	adminRoutes = append(adminRoutes, routeEntry{http.MethodDelete, path, h})
}

// Deps is everything request handlers pull out of the echo context
type Deps struct {
	Config   *config.AppConfig
	DB       *gorm.DB
	Cart     *cart.Service
	Checkout *checkout.Service
	Settings SettingsProvider
}

// SettingsProvider provides typed runtime settings from sys_config
type SettingsProvider interface {
	GetString(category, name string) string
	GetInt(category, name string) int
	GetBool(category, name string) bool
}

const depsContextKey = "nexchakra_deps"

// WebServer wraps the echo engine and route registration
type WebServer struct {
	root *echo.Echo
	deps *Deps
}

// NewWebServer builds the echo engine with middlewares and all registered routes
func NewWebServer(deps *Deps) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsoniterSerializer{}
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(depsContextKey, deps)
			return next(c)
		}
	})
	e.Use(ZapLoggerMiddleware())

	s := &WebServer{root: e, deps: deps}
	s.mountRoutes()
	return s
}

func (s *WebServer) mountRoutes() {
	jwtmw := echojwt.WithConfig(JwtConfig(s.deps.Config.Web.Secret))

	pub := s.root.Group("/api/v1")
	for _, r := range pubRoutes {
		pub.Add(r.method, r.path, r.handler)
	}

	auth := s.root.Group("/api/v1", jwtmw)
	for _, r := range authRoutes {
		auth.Add(r.method, r.path, r.handler)
	}

	admin := s.root.Group("/api/v1/admin", jwtmw, AdminOnlyMiddleware())
	for _, r := range adminRoutes {
		admin.Add(r.method, r.path, r.handler)
	}
}

// Echo exposes the underlying engine for extra mounts (websocket hub, health)
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Start runs the HTTP listener until the server is shut down
func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.deps.Config.Web.Host, s.deps.Config.Web.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))
	err := s.root.Start(addr)
	if err != nil && !strings.Contains(err.Error(), "Server closed") {
		return err
	}
	return nil
}

// ZapLoggerMiddleware logs each request through the global zap logger
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				zap.L().Warn("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Error(v.Error))
				return nil
			}
			zap.L().Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	})
}

func getDeps(c echo.Context) *Deps {
	deps, _ := c.Get(depsContextKey).(*Deps)
	return deps
}

// GetDB returns the request-scoped gorm handle
func GetDB(c echo.Context) *gorm.DB {
	return getDeps(c).DB
}

// GetConfig returns the application configuration
func GetConfig(c echo.Context) *config.AppConfig {
	return getDeps(c).Config
}

// GetCart returns the cart service from the request context
func GetCart(c echo.Context) *cart.Service {
	return getDeps(c).Cart
}

// GetCheckout returns the checkout service from the request context
func GetCheckout(c echo.Context) *checkout.Service {
	return getDeps(c).Checkout
}

// GetSettings returns the runtime settings provider
func GetSettings(c echo.Context) SettingsProvider {
	return getDeps(c).Settings
}

type jsoniterSerializer struct{}

func (jsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsonAPI.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsonAPI.NewDecoder(c.Request().Body).Decode(i)
	if err == io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, "empty request body")
	}
	return err
}
