// Package storeapi exposes the public storefront API: catalog browsing,
// account management, cart and checkout.
package storeapi

import (
	"github.com/nexchakra/showcase/internal/webserver"
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
	GetCart     = webserver.GetCart
	GetCheckout = webserver.GetCheckout
	GetClaims   = webserver.GetClaims
)

// Init registers all storefront routes with the webserver
func Init() {
	registerAuthRoutes()
	registerCatalogRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
	registerAddressRoutes()
}
