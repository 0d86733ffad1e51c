package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
)

type orderCSVRow struct {
	OrderNo       string `csv:"order_no"`
	CustomerEmail string `csv:"customer_email"`
	Status        string `csv:"status"`
	PaymentStatus string `csv:"payment_status"`
	TotalAmount   string `csv:"total_amount"`
	CreatedAt     string `csv:"created_at"`
}

type productCSVRow struct {
	Sku      string `csv:"sku"`
	Title    string `csv:"title"`
	Slug     string `csv:"slug"`
	Price    string `csv:"price"`
	Stock    int    `csv:"stock"`
	IsActive bool   `csv:"is_active"`
}

func registerExportRoutes() {
	webserver.ApiGET("/export/orders", exportOrders)
	webserver.ApiGET("/export/products", exportProducts)
}

func csvAttachment(c echo.Context, filename string, rows interface{}) error {
	out, err := gocsv.MarshalString(rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to encode CSV", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(out))
}

func exportOrders(c echo.Context) error {
	var orders []domain.Order
	if err := GetDB(c).Order("created_at DESC").Limit(10000).Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	emails := map[int64]string{}
	var customers []domain.Customer
	GetDB(c).Select("id", "email").Find(&customers)
	for _, cust := range customers {
		emails[cust.ID] = cust.Email
	}

	rows := make([]orderCSVRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderCSVRow{
			OrderNo:       o.OrderNo,
			CustomerEmail: emails[o.CustomerId],
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			TotalAmount:   o.TotalAmount.StringFixed(2),
			CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		})
	}
	addOprLog(c, "export:orders", fmt.Sprintf("exported %d orders", len(rows)))
	return csvAttachment(c, "orders.csv", &rows)
}

func exportProducts(c echo.Context) error {
	var products []domain.Product
	if err := GetDB(c).Order("id ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	rows := make([]productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCSVRow{
			Sku:      p.Sku,
			Title:    p.Title,
			Slug:     p.Slug,
			Price:    p.SellingPrice().StringFixed(2),
			Stock:    p.Stock,
			IsActive: p.IsActive,
		})
	}
	addOprLog(c, "export:products", fmt.Sprintf("exported %d products", len(rows)))
	return csvAttachment(c, "products.csv", &rows)
}
